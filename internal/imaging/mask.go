package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// Mask is a per-pixel boolean classification over an image: true means the
// pixel at that position was classified as watermark.
//
// A Mask always has the same dimensions as the image it was built from.
// Coordinates are 0-based with origin at top-left. Out-of-bounds reads via
// At return false, matching the convention that everything outside the page
// is background.
type Mask struct {
	W, H int
	bits []bool
}

// NewMask creates an all-false mask of the given dimensions.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, bits: make([]bool, w*h)}
}

// At reports whether (x, y) is classified as watermark.
// Coordinates outside the mask return false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.bits[y*m.W+x]
}

// Set assigns the classification at (x, y). Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return
	}
	m.bits[y*m.W+x] = v
}

// Count returns the number of watermark pixels in the mask.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Coverage returns the fraction of pixels classified as watermark, in [0, 1].
func (m *Mask) Coverage() float64 {
	if len(m.bits) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.bits))
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.W, m.H)
	copy(c.bits, m.bits)
	return c
}

// BuildMask classifies every pixel of img against the color model and returns
// the resulting mask.
//
// This is a pure function: the image is not modified and the result depends
// only on the inputs. Rows are processed in parallel.
func BuildMask(img image.Image, model ColorModel) *Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := NewMask(w, h)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				p := PixelAt(img, x+bounds.Min.X, y+bounds.Min.Y)
				mask.bits[y*w+x] = model.Matches(p)
			}
		}
	})

	return mask
}
