package imaging

import "github.com/anthonynsimon/bild/parallel"

// RefineConfig controls mask refinement. The structuring element sizes are
// the second tuning knob after the color tolerance: larger kernels remove
// more speckle noise and close bigger gaps, at the cost of detail.
type RefineConfig struct {
	// OpenKernel is the square structuring element size for the opening
	// pass (speckle removal). Must be odd.
	OpenKernel int

	// CloseKernel is the structuring element size for the closing pass
	// (gap filling) and for the trailing dilation passes. Must be odd.
	CloseKernel int

	// DilatePasses is the number of extra dilation iterations applied after
	// closing, to capture anti-aliased fringe pixels around watermark
	// strokes that fall outside the color tolerance.
	DilatePasses int

	// MaxCoverage is the over-mask guard threshold. If the refined mask
	// covers more than this fraction of the page, the detection is suspect
	// (likely a near-background color) and refinement falls back to the raw
	// mask, or to an empty mask if the raw mask is over the threshold too.
	MaxCoverage float64
}

// DefaultRefineConfig returns the refinement defaults: 3x3 opening, 5x5
// closing, two dilation passes, 60% coverage guard.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		OpenKernel:   3,
		CloseKernel:  5,
		DilatePasses: 2,
		MaxCoverage:  0.60,
	}
}

// Refine cleans up a raw watermark mask with morphological operations, in
// fixed order:
//
//  1. Opening (erosion then dilation) removes isolated false-positive
//     speckles.
//  2. Closing (dilation then erosion) fills small gaps inside watermark
//     regions, such as anti-aliased glyph edges that fail the strict color
//     match.
//  3. DilatePasses extra dilations expand the mask slightly beyond the
//     detected boundary.
//
// The returned bool reports whether the over-mask guard tripped. When it
// does, the returned mask is the raw input mask (cloned) if that is within
// the coverage bound, otherwise an empty mask: destroying page content is
// worse than leaving a watermark in place. In all cases the output mask's
// coverage stays at or below MaxCoverage.
//
// The input mask is not modified.
func Refine(raw *Mask, cfg RefineConfig) (*Mask, bool) {
	m := dilate(erode(raw, cfg.OpenKernel), cfg.OpenKernel)
	m = erode(dilate(m, cfg.CloseKernel), cfg.CloseKernel)
	for i := 0; i < cfg.DilatePasses; i++ {
		m = dilate(m, cfg.CloseKernel)
	}

	if m.Coverage() <= cfg.MaxCoverage {
		return m, false
	}
	if raw.Coverage() <= cfg.MaxCoverage {
		return raw.Clone(), true
	}
	return NewMask(raw.W, raw.H), true
}

// Erode shrinks mask regions: a pixel stays set only if every pixel in the
// kernel-sized neighborhood around it is set. Border neighborhoods are
// clamped to the mask edge.
func Erode(m *Mask, kernel int) *Mask {
	return erode(m, kernel)
}

// Dilate grows mask regions: a pixel becomes set if any pixel in the
// kernel-sized neighborhood around it is set.
func Dilate(m *Mask, kernel int) *Mask {
	return dilate(m, kernel)
}

func erode(m *Mask, kernel int) *Mask {
	r := kernel / 2
	out := NewMask(m.W, m.H)
	parallel.Line(m.H, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.W; x++ {
				all := true
				for ky := -r; ky <= r && all; ky++ {
					for kx := -r; kx <= r && all; kx++ {
						py := clampInt(y+ky, 0, m.H-1)
						px := clampInt(x+kx, 0, m.W-1)
						if !m.bits[py*m.W+px] {
							all = false
						}
					}
				}
				out.bits[y*m.W+x] = all
			}
		}
	})
	return out
}

func dilate(m *Mask, kernel int) *Mask {
	r := kernel / 2
	out := NewMask(m.W, m.H)
	parallel.Line(m.H, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.W; x++ {
				any := false
				for ky := -r; ky <= r && !any; ky++ {
					for kx := -r; kx <= r && !any; kx++ {
						py := clampInt(y+ky, 0, m.H-1)
						px := clampInt(x+kx, 0, m.W-1)
						if m.bits[py*m.W+px] {
							any = true
						}
					}
				}
				out.bits[y*m.W+x] = any
			}
		}
	})
	return out
}

// clampInt constrains an integer value to the range [min, max].
// Used for boundary handling in neighborhood operations.
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
