package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"
)

// Assembler builds a PDF document from an ordered sequence of page images.
// Each image becomes one page sized to the image's pixel dimensions at the
// render DPI, so a round trip through the rasterizer preserves page sizes.
type Assembler struct{}

// Build writes the images to a new PDF at path, one page per image in input
// order.
func (Assembler) Build(path string, pages []image.Image, dpi int) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to assemble into %s", path)
	}

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)

	for i, img := range pages {
		b := img.Bounds()
		w := pxToPt(b.Dx(), dpi)
		h := pxToPt(b.Dy(), dpi)
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(name, opt, &buf)
		doc.ImageOptions(name, 0, 0, w, h, false, opt, 0, "")
	}

	if doc.Err() {
		return fmt.Errorf("building %s: %v", path, doc.Error())
	}
	return doc.OutputFileAndClose(path)
}

// pxToPt converts a pixel length into a pt length (72 pts per inch) at the
// given render DPI.
func pxToPt(px, dpi int) float64 {
	return float64(px) * 72.0 / float64(dpi)
}
