// Package imaging implements the per-page watermark removal primitives:
// color classification, binary mask construction, morphological mask
// refinement, and pixel recoloring.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Images carry 8 bits per channel;
// deeper inputs are scaled down on read.
//
// # Pipeline
//
// The stages compose in a fixed order:
//
//  1. BuildMask classifies every pixel against a ColorModel, producing a
//     Mask of watermark candidates.
//  2. Refine cleans the mask with morphological opening, closing, and
//     dilation, guarded against runaway coverage.
//  3. Recolor rewrites masked pixels with a locally-estimated background
//     color, leaving unmasked pixels untouched.
//
// # Immutability
//
// Every stage returns a new value and leaves its inputs unmodified: images
// are cloned before writing, masks are allocated fresh. This makes the
// stages safe to run concurrently on different pages with a shared
// ColorModel.
//
// # Classification
//
// ColorModel combines a Chebyshev (L∞) distance check in RGB space with an
// auxiliary low-saturation brightness-band check in HSV space. The RGB check
// captures the watermark's core color; the HSV check captures
// semi-transparent watermark pixels that have blended toward the page
// background. See ColorModel for the exact rules.
//
// # Error Handling
//
// The operations in this package are total over their inputs and return no
// errors; invalid coordinates read as background and out-of-range writes are
// dropped. Failures can only come from the I/O collaborators around this
// package.
package imaging
