package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/pdfwash/pdfwash/internal/detection"
	pwimaging "github.com/pdfwash/pdfwash/internal/imaging"
)

// ErrNoPDFs is returned by Run when the working directory contains no PDF
// files.
var ErrNoPDFs = errors.New("no PDF files found")

// Rasterizer renders single pages of a PDF document to images.
//
// Implementations must distinguish an unreadable or encrypted PDF from a
// generic I/O failure (see the pdf package's ErrEncrypted).
type Rasterizer interface {
	// PageCount reports the number of pages in the document.
	PageCount(ctx context.Context, path string) (int, error)

	// Render rasterizes the 0-based page at the given DPI.
	Render(ctx context.Context, path string, page int, dpi int) (image.Image, error)
}

// Assembler builds a PDF from an ordered sequence of page images. Page order
// and per-page image dimensions must be preserved in the output.
type Assembler interface {
	Build(path string, pages []image.Image, dpi int) error
}

// Runner drives the batch: it enumerates PDFs in a working directory and,
// for each document, rasterizes pages, removes the watermark per page, and
// reassembles the cleaned document.
//
// A failing document is logged and skipped; the rest of the batch continues.
type Runner struct {
	Raster   Rasterizer
	Assemble Assembler
	Log      zerolog.Logger

	// Model is the watermark color for manual mode. In auto mode it is nil
	// and a document-level color is detected from sampled pages.
	Model *pwimaging.ColorModel
	Auto  bool

	DPI     int
	Workers int
	Policy  ErrorPolicy
	Opts    Options

	// Debug enables intermediate image dumps of extracted and cleaned
	// pages.
	Debug bool

	OutputDir    string
	ExtractedDir string
	CleanedDir   string
}

// Run processes every PDF file in dir. It returns ErrNoPDFs when the
// directory holds none, an error when the directory is unreadable, and an
// aggregate error when one or more documents failed. Successful documents
// keep their output regardless of other failures.
func (r *Runner) Run(ctx context.Context, dir string) error {
	pdfs, err := listPDFs(dir)
	if err != nil {
		return fmt.Errorf("reading working directory %s: %w", dir, err)
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPDFs, dir)
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	failed := 0
	for _, path := range pdfs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log := r.Log.With().Str("document", filepath.Base(path)).Logger()
		log.Info().Msg("processing document")

		if err := r.ProcessDocument(ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error().Err(err).Msg("document failed")
			failed++
			continue
		}
		log.Info().Str("output", filepath.Join(r.OutputDir, filepath.Base(path))).Msg("document done")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(pdfs))
	}
	return nil
}

// ProcessDocument cleans a single PDF and writes the result to the output
// directory under the original filename.
func (r *Runner) ProcessDocument(ctx context.Context, path string) error {
	log := r.Log.With().Str("document", filepath.Base(path)).Logger()

	pages, err := r.Raster.PageCount(ctx, path)
	if err != nil {
		return err
	}
	if pages == 0 {
		return fmt.Errorf("%s: document has no pages", path)
	}

	if r.Debug {
		for _, d := range []string{r.ExtractedDir, r.CleanedDir} {
			if err := os.RemoveAll(d); err != nil {
				return fmt.Errorf("clearing debug directory %s: %w", d, err)
			}
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("creating debug directory %s: %w", d, err)
			}
		}
	}

	// Pages rendered for detection are kept for the processing pass.
	rendered := make(map[int]image.Image)

	model := r.Model
	if r.Auto {
		sampled := make([]image.Image, 0, 3)
		for _, p := range samplePages(pages) {
			img, err := r.Raster.Render(ctx, path, p, r.DPI)
			if err != nil {
				log.Warn().Err(err).Int("page", p+1).Msg("sample page failed to render")
				continue
			}
			rendered[p] = img
			sampled = append(sampled, img)
		}
		if len(sampled) == 0 {
			return fmt.Errorf("%s: no page could be rendered for color detection", path)
		}
		if m, ok := detection.DetectAcross(sampled); ok {
			model = &m
			log.Info().Str("color", m.Center.Hex()).Uint8("tolerance", m.Tolerance).
				Msg("watermark color detected")
		} else {
			model = nil
			log.Info().Msg("no watermark color detected; pages pass through unchanged")
		}
	}

	var mu sync.Mutex
	job := func(ctx context.Context, page int) (image.Image, error) {
		mu.Lock()
		img, ok := rendered[page]
		if ok {
			delete(rendered, page)
		}
		mu.Unlock()

		if !ok {
			var err error
			img, err = r.Raster.Render(ctx, path, page, r.DPI)
			if err != nil {
				return nil, err
			}
		}

		if r.Debug {
			if err := r.dumpPage(r.ExtractedDir, page, img); err != nil {
				log.Warn().Err(err).Int("page", page+1).Msg("debug dump failed")
			}
		}

		result := Process(img, model, r.Opts)
		log.Debug().Int("page", page+1).
			Float64("raw_coverage", result.Stats.RawCoverage).
			Float64("refined_coverage", result.Stats.RefinedCoverage).
			Bool("guard", result.Stats.GuardTripped).
			Msg("page processed")

		if r.Debug {
			if err := r.dumpPage(r.CleanedDir, page, result.Cleaned); err != nil {
				log.Warn().Err(err).Int("page", page+1).Msg("debug dump failed")
			}
		}
		return result.Cleaned, nil
	}

	fallback := func(page int) image.Image { return blankPage(r.DPI) }
	onSkip := func(page int, err error) {
		log.Warn().Err(err).Int("page", page+1).Msg("page failed; keeping substitute")
	}

	images, err := mapPages(ctx, pages, r.Workers, r.Policy, job, fallback, onSkip)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := filepath.Join(r.OutputDir, filepath.Base(path))
	if err := r.Assemble.Build(out, images, r.DPI); err != nil {
		return fmt.Errorf("%s: assembling output: %w", path, err)
	}
	return nil
}

func (r *Runner) dumpPage(dir string, page int, img image.Image) error {
	name := filepath.Join(dir, fmt.Sprintf("page_%03d.png", page+1))
	return imaging.Save(img, name)
}

// samplePages picks up to three spread-out page indices used for
// document-level color detection.
func samplePages(pages int) []int {
	idx := []int{0, pages / 2, pages - 1}
	out := idx[:0]
	seen := make(map[int]bool)
	for _, i := range idx {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// blankPage is the substitute for a page that could not even be rasterized
// under the keep-original policy: a white US Letter page at the run's DPI.
func blankPage(dpi int) image.Image {
	w := int(8.5 * float64(dpi))
	h := 11 * dpi
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	return pdfs, nil
}
