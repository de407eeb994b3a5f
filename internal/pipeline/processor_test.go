package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/pdfwash/pdfwash/internal/imaging"
)

// page builds a white page with a watermark rectangle and a black text pixel.
func page(w, h int, mark image.Rectangle, markColor color.NRGBA, textAt image.Point) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	for y := mark.Min.Y; y < mark.Max.Y; y++ {
		for x := mark.Min.X; x < mark.Max.X; x++ {
			img.Set(x, y, markColor)
		}
	}
	img.Set(textAt.X, textAt.Y, color.NRGBA{0, 0, 0, 255})
	return img
}

func chebyshev(a, b imaging.RGBColor) int {
	m := imaging.NewColorModel(b, 0)
	return m.Distance(a)
}

func TestProcess_RemovesColoredWatermark(t *testing.T) {
	// Light-blue watermark strokes on a white page, black text elsewhere.
	mark := image.Rect(10, 10, 90, 20)
	img := page(100, 100, mark, color.NRGBA{180, 200, 240, 255}, image.Pt(50, 80))

	model := imaging.NewColorModel(imaging.RGBColor{R: 180, G: 200, B: 240}, 30)
	result := Process(img, &model, DefaultOptions())

	if result.Stats.GuardTripped {
		t.Fatal("guard should not trip on a 8% watermark")
	}
	if result.Stats.RawCoverage <= 0 {
		t.Fatal("raw mask should cover the watermark region")
	}

	white := imaging.RGBColor{R: 255, G: 255, B: 255}
	for y := mark.Min.Y; y < mark.Max.Y; y++ {
		for x := mark.Min.X; x < mark.Max.X; x++ {
			p := imaging.PixelAt(result.Cleaned, x, y)
			if chebyshev(p, white) > 10 {
				t.Fatalf("watermark pixel (%d,%d) not cleaned: %v", x, y, p)
			}
		}
	}
	if got := imaging.PixelAt(result.Cleaned, 50, 80); got != (imaging.RGBColor{R: 0, G: 0, B: 0}) {
		t.Errorf("text pixel changed: got %v", got)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	// Running the cleaned output back through the pipeline with the same
	// model must find (near) nothing left to remove.
	mark := image.Rect(10, 10, 90, 20)
	img := page(100, 100, mark, color.NRGBA{180, 200, 240, 255}, image.Pt(50, 80))

	model := imaging.NewColorModel(imaging.RGBColor{R: 180, G: 200, B: 240}, 30)
	opts := DefaultOptions()

	first := Process(img, &model, opts)
	second := Process(first.Cleaned, &model, opts)

	if second.Stats.RefinedCoverage > 0.01 {
		t.Errorf("second pass refined coverage %g, want near zero", second.Stats.RefinedCoverage)
	}
}

func TestProcess_GuardProtectsNearBackgroundColor(t *testing.T) {
	// A (249,249,249) watermark on a white page with tolerance 10: white
	// itself falls inside the tolerance, so
	// the raw mask saturates and the over-mask guard must refuse to wipe
	// the page. The watermark region is already within tolerance of white,
	// so the unmodified output still satisfies the cleanliness bound.
	mark := image.Rect(0, 0, 100, 15)
	img := page(100, 100, mark, color.NRGBA{249, 249, 249, 255}, image.Pt(50, 80))

	model := imaging.NewColorModel(imaging.RGBColor{R: 249, G: 249, B: 249}, 10)
	result := Process(img, &model, DefaultOptions())

	if !result.Stats.GuardTripped {
		t.Error("guard should trip when the tolerance swallows the background")
	}

	white := imaging.RGBColor{R: 255, G: 255, B: 255}
	for y := mark.Min.Y; y < mark.Max.Y; y++ {
		for x := mark.Min.X; x < mark.Max.X; x++ {
			if chebyshev(imaging.PixelAt(result.Cleaned, x, y), white) > 10 {
				t.Fatalf("watermark region pixel (%d,%d) too far from white", x, y)
			}
		}
	}
	if got := imaging.PixelAt(result.Cleaned, 50, 80); got != (imaging.RGBColor{R: 0, G: 0, B: 0}) {
		t.Errorf("text pixel changed: got %v", got)
	}
}

func TestProcess_NoMatchIsByteIdentical(t *testing.T) {
	// Nothing on the page matches the model: the input image itself comes
	// back, not a recolored copy.
	img := page(50, 50, image.Rectangle{}, color.NRGBA{}, image.Pt(25, 25))

	model := imaging.NewColorModel(imaging.RGBColor{R: 100, G: 40, B: 40}, 20)
	result := Process(img, &model, DefaultOptions())

	if result.Cleaned != image.Image(img) {
		t.Error("a no-match page should pass through as the identical image")
	}
	if result.Stats.RefinedCoverage != 0 {
		t.Errorf("refined coverage: got %g, want 0", result.Stats.RefinedCoverage)
	}
}

func TestProcess_NilModelPassesThrough(t *testing.T) {
	img := page(50, 50, image.Rect(0, 0, 10, 10), color.NRGBA{180, 200, 240, 255}, image.Pt(25, 25))

	result := Process(img, nil, DefaultOptions())

	if result.Cleaned != image.Image(img) {
		t.Error("nil model (no watermark detected) must be a no-op")
	}
	if result.Stats.RawCoverage != 0 {
		t.Errorf("stats should be empty for a pass-through, got %+v", result.Stats)
	}
}
