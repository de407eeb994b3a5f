package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// RecolorConfig controls how masked pixels are rewritten.
type RecolorConfig struct {
	// Window is the side length of the square neighborhood searched for
	// unmasked pixels when estimating the local background color. Must be
	// odd. A larger window survives bigger watermark strokes but blurs the
	// estimate over textured backgrounds.
	Window int

	// Fallback is the replacement color used when the neighborhood contains
	// no unmasked pixel, typically deep inside a large watermark region.
	Fallback RGBColor
}

// DefaultRecolorConfig returns the recoloring defaults: a 15-pixel window
// with a flat white fallback.
func DefaultRecolorConfig() RecolorConfig {
	return RecolorConfig{
		Window:   15,
		Fallback: RGBColor{R: 255, G: 255, B: 255},
	}
}

// Recolor produces a cleaned copy of img in which every masked pixel is
// replaced by an estimate of the local background color, and every unmasked
// pixel passes through unchanged.
//
// Replacement rather than alpha blending is deliberate: the rebuilt PDF is
// raster and preserves no alpha semantics. The background estimate is the
// per-channel mean of the unmasked pixels inside the configured window,
// which avoids a visible flat-white patch over colored or textured
// backgrounds; the fallback color covers windows with no unmasked pixel.
//
// The input image is never modified.
func Recolor(img image.Image, mask *Mask, cfg RecolorConfig) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	r := cfg.Window / 2

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				if !mask.At(x, y) {
					continue
				}
				bg, ok := localBackground(img, mask, x, y, r)
				if !ok {
					bg = cfg.Fallback
				}
				i := out.PixOffset(x, y)
				out.Pix[i+0] = bg.R
				out.Pix[i+1] = bg.G
				out.Pix[i+2] = bg.B
				out.Pix[i+3] = 255
			}
		}
	})

	return out
}

// localBackground averages the unmasked pixels in the (2r+1)-sized window
// around (x, y). Returns false when the window holds no unmasked pixel.
func localBackground(img image.Image, mask *Mask, x, y, r int) (RGBColor, bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var sumR, sumG, sumB, n uint64
	for ky := -r; ky <= r; ky++ {
		py := y + ky
		if py < 0 || py >= h {
			continue
		}
		for kx := -r; kx <= r; kx++ {
			px := x + kx
			if px < 0 || px >= w || mask.At(px, py) {
				continue
			}
			p := PixelAt(img, px+bounds.Min.X, py+bounds.Min.Y)
			sumR += uint64(p.R)
			sumG += uint64(p.G)
			sumB += uint64(p.B)
			n++
		}
	}
	if n == 0 {
		return RGBColor{}, false
	}
	return RGBColor{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}, true
}
