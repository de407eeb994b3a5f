// Package pdf provides the external PDF collaborators of the pipeline:
// rasterization of pages to images via the poppler utilities, and
// reassembly of cleaned page images into a new PDF via gofpdf.
//
// The rasterizer distinguishes encrypted documents (ErrEncrypted) from
// generic I/O failures so callers can report them differently. The
// assembler preserves page order and derives each output page's size from
// its image dimensions at the render DPI, keeping page geometry stable
// across a rasterize/reassemble round trip.
package pdf
