package pdf

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testPage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

func TestPxToPt(t *testing.T) {
	tests := []struct {
		px, dpi int
		want    float64
	}{
		{300, 300, 72},   // one inch
		{600, 300, 144},  // two inches
		{72, 72, 72},     // native resolution
		{150, 300, 36},   // half an inch
	}
	for _, tt := range tests {
		if got := pxToPt(tt.px, tt.dpi); got != tt.want {
			t.Errorf("pxToPt(%d, %d): got %g, want %g", tt.px, tt.dpi, got, tt.want)
		}
	}
}

func TestAssembler_Build(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.pdf")

	pages := []image.Image{testPage(100, 150), testPage(80, 80)}
	if err := (Assembler{}).Build(out, pages, 72); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Error("output does not start with a PDF header")
	}
}

func TestAssembler_NoPages(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.pdf")

	if err := (Assembler{}).Build(out, nil, 300); err == nil {
		t.Error("building a PDF from zero pages must fail")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output file should be written on failure")
	}
}

func TestIsEncryptedMessage(t *testing.T) {
	tests := []struct {
		stderr string
		want   bool
	}{
		{"Command Line Error: Incorrect password", true},
		{"Error: Weird Encryption Info", true},
		{"Error: Document is encrypted", true},
		{"Syntax Error: Couldn't find trailer dictionary", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isEncryptedMessage(tt.stderr); got != tt.want {
			t.Errorf("isEncryptedMessage(%q): got %v, want %v", tt.stderr, got, tt.want)
		}
	}
}
