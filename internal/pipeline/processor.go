package pipeline

import (
	"image"

	"github.com/pdfwash/pdfwash/internal/imaging"
)

// Options bundles the tuning knobs for per-page watermark removal.
type Options struct {
	Refine  imaging.RefineConfig
	Recolor imaging.RecolorConfig
}

// DefaultOptions returns the package defaults for mask refinement and
// recoloring.
func DefaultOptions() Options {
	return Options{
		Refine:  imaging.DefaultRefineConfig(),
		Recolor: imaging.DefaultRecolorConfig(),
	}
}

// MaskStats records watermark-pixel coverage for a processed page. It is
// diagnostic output only; control decisions never depend on it in manual
// mode.
type MaskStats struct {
	// RawCoverage is the coverage fraction of the mask straight out of the
	// color match, before refinement.
	RawCoverage float64

	// RefinedCoverage is the coverage fraction of the final mask consumed
	// by the recolorer.
	RefinedCoverage float64

	// GuardTripped reports whether the over-mask safety valve replaced the
	// refined mask (see imaging.Refine).
	GuardTripped bool
}

// PageResult is the outcome of processing one page.
type PageResult struct {
	Cleaned image.Image
	Stats   MaskStats
}

// Process runs the full watermark-removal pipeline on one page image:
// mask build, morphological refinement, recoloring.
//
// A nil model means no watermark color is known for this page (auto
// detection found nothing); the page passes through unchanged. Process is
// stateless across pages and a pure function of its inputs: any
// document-level auto-detected color must be threaded in by the caller, not
// recomputed here.
//
// When no pixel survives refinement the input image is returned as-is, so a
// page with nothing matching the color model is byte-identical to its input.
func Process(img image.Image, model *imaging.ColorModel, opts Options) PageResult {
	if model == nil {
		return PageResult{Cleaned: img}
	}

	raw := imaging.BuildMask(img, *model)
	refined, guard := imaging.Refine(raw, opts.Refine)

	stats := MaskStats{
		RawCoverage:     raw.Coverage(),
		RefinedCoverage: refined.Coverage(),
		GuardTripped:    guard,
	}

	if refined.Count() == 0 {
		return PageResult{Cleaned: img, Stats: stats}
	}

	return PageResult{
		Cleaned: imaging.Recolor(img, refined, opts.Recolor),
		Stats:   stats,
	}
}
