package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEncrypted marks a PDF that cannot be processed because it is encrypted
// or password protected. Callers use errors.Is to distinguish it from
// generic I/O failures.
var ErrEncrypted = errors.New("pdf is encrypted")

// PopplerRasterizer renders PDF pages by shelling out to the poppler
// utilities: pdfinfo for document metadata and pdftoppm for rasterization.
// Both must be on PATH (or set explicitly).
//
// The zero value is not usable; call NewPopplerRasterizer.
type PopplerRasterizer struct {
	PdfinfoBin  string
	PdftoppmBin string
}

// NewPopplerRasterizer returns a rasterizer using the poppler binaries from
// PATH.
func NewPopplerRasterizer() *PopplerRasterizer {
	return &PopplerRasterizer{
		PdfinfoBin:  "pdfinfo",
		PdftoppmBin: "pdftoppm",
	}
}

// PageCount reports the number of pages in the document at path. It returns
// ErrEncrypted (wrapped) when pdfinfo reports the document as encrypted.
func (p *PopplerRasterizer) PageCount(ctx context.Context, path string) (int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.PdfinfoBin, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if isEncryptedMessage(stderr.String()) {
			return 0, fmt.Errorf("%s: %w", path, ErrEncrypted)
		}
		return 0, fmt.Errorf("pdfinfo on %s: %v: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	pages := 0
	for _, line := range strings.Split(stdout.String(), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Encrypted":
			if strings.HasPrefix(value, "yes") {
				return 0, fmt.Errorf("%s: %w", path, ErrEncrypted)
			}
		case "Pages":
			n, err := strconv.Atoi(value)
			if err != nil {
				return 0, fmt.Errorf("pdfinfo on %s: bad page count %q", path, value)
			}
			pages = n
		}
	}
	if pages == 0 {
		return 0, fmt.Errorf("pdfinfo on %s: no page count reported", path)
	}
	return pages, nil
}

// Render rasterizes the 0-based page of the document at the given DPI and
// returns it as an image.
func (p *PopplerRasterizer) Render(ctx context.Context, path string, page int, dpi int) (image.Image, error) {
	tmp, err := os.MkdirTemp("", "pdfwash-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	n := strconv.Itoa(page + 1) // pdftoppm pages are 1-based
	prefix := filepath.Join(tmp, "page")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.PdftoppmBin,
		"-f", n, "-l", n, "-r", strconv.Itoa(dpi), "-png", path, prefix)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if isEncryptedMessage(stderr.String()) {
			return nil, fmt.Errorf("%s page %d: %w", path, page+1, ErrEncrypted)
		}
		return nil, fmt.Errorf("pdftoppm on %s page %d: %v: %s",
			path, page+1, err, strings.TrimSpace(stderr.String()))
	}

	// pdftoppm pads the page number in the output name depending on the
	// document's page count, so glob rather than reconstruct it.
	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm on %s page %d produced no image", path, page+1)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("opening rendered page: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered page %d of %s: %w", page+1, path, err)
	}
	return img, nil
}

func isEncryptedMessage(stderr string) bool {
	s := strings.ToLower(stderr)
	// poppler variously says "encrypted", "Encryption Info" and similar, so
	// match the stem.
	return strings.Contains(s, "encrypt") || strings.Contains(s, "incorrect password")
}
