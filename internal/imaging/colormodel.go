package imaging

import (
	"fmt"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Default thresholds for the HSV auxiliary watermark check.
//
// A pixel whose saturation is at most DefaultMaxSaturation and whose
// brightness lies within DefaultValueBand of the target color's brightness
// is treated as watermark-like even when the RGB distance check fails. This
// captures semi-transparent watermark pixels that have blended with a white
// background: blending shifts lightness much more than hue.
const (
	DefaultTolerance     = 30
	DefaultMaxSaturation = 0.25
	DefaultValueBand     = 0.15
)

// whiteFloor is the channel value above which a pixel counts as background
// white for the HSV auxiliary check. Near-white pixels are page background,
// not watermark; without this exclusion a bright watermark color would drag
// the entire background into the mask through the brightness band.
const whiteFloor = 250

// ColorModel describes a target watermark color and the tolerance used to
// decide whether a pixel belongs to the watermark.
//
// Classification combines two complementary checks:
//
//  1. RGB check: the maximum absolute per-channel difference between the
//     pixel and Center is at most Tolerance (Chebyshev/L∞ metric). Watermark
//     colors are near-uniform across channels, and L∞ avoids under-triggering
//     on single-channel drift.
//
//  2. HSV check: the pixel has low saturation and a brightness within a band
//     around Center's brightness, and is not near-pure white.
//
// A pixel is classified as watermark when either check fires.
//
// ColorModel values are immutable once constructed. Tolerance is the primary
// tuning knob exposed to end users.
type ColorModel struct {
	Center    RGBColor
	Tolerance uint8

	// MaxSaturation and ValueBand parameterize the HSV auxiliary check.
	// NewColorModel fills them with the package defaults.
	MaxSaturation float64
	ValueBand     float64

	// centerValue is Center's HSV value component, precomputed.
	centerValue float64
}

// NewColorModel builds a ColorModel around the given center color with the
// default HSV check parameters.
func NewColorModel(center RGBColor, tolerance uint8) ColorModel {
	_, _, v := colorful.Color{
		R: float64(center.R) / 255.0,
		G: float64(center.G) / 255.0,
		B: float64(center.B) / 255.0,
	}.Hsv()

	return ColorModel{
		Center:        center,
		Tolerance:     tolerance,
		MaxSaturation: DefaultMaxSaturation,
		ValueBand:     DefaultValueBand,
		centerValue:   v,
	}
}

// Distance returns the Chebyshev (L∞) distance between p and the model's
// center color: the maximum absolute per-channel difference.
func (m ColorModel) Distance(p RGBColor) int {
	d := absDiff(p.R, m.Center.R)
	if g := absDiff(p.G, m.Center.G); g > d {
		d = g
	}
	if b := absDiff(p.B, m.Center.B); b > d {
		d = b
	}
	return d
}

// Matches reports whether p is classified as a watermark pixel.
func (m ColorModel) Matches(p RGBColor) bool {
	if m.Distance(p) <= int(m.Tolerance) {
		return true
	}
	return m.matchesHSV(p)
}

// matchesHSV implements the auxiliary low-saturation brightness-band check.
func (m ColorModel) matchesHSV(p RGBColor) bool {
	if p.R >= whiteFloor && p.G >= whiteFloor && p.B >= whiteFloor {
		return false
	}
	_, s, v := colorful.Color{
		R: float64(p.R) / 255.0,
		G: float64(p.G) / 255.0,
		B: float64(p.B) / 255.0,
	}.Hsv()

	if s > m.MaxSaturation {
		return false
	}
	dv := v - m.centerValue
	if dv < 0 {
		dv = -dv
	}
	return dv <= m.ValueBand
}

// PixelAt reads the pixel at (x, y) as an 8-bit RGBColor.
func PixelAt(img image.Image, x, y int) RGBColor {
	r, g, b, _ := img.At(x, y).RGBA()
	// Convert from 16-bit to 8-bit
	return RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
