// Package config holds the run configuration for pdfwash: CLI flag defaults,
// optional YAML config file loading, and validation. Flags win over file
// values, which win over the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pdfwash/pdfwash/internal/imaging"
	"github.com/pdfwash/pdfwash/internal/pipeline"
)

// Config is the full set of tunables for a run. All values are plain data so
// a run is reproducible from its configuration alone; nothing here is
// mutated during processing.
type Config struct {
	// Manual-mode watermark color. Ignored when Auto is set.
	Red   int `yaml:"red"`
	Green int `yaml:"green"`
	Blue  int `yaml:"blue"`

	// Auto enables automatic watermark color detection per document.
	Auto bool `yaml:"auto"`

	// Tolerance is the maximum per-channel color deviation for a pixel to
	// be classified as watermark. The primary tuning knob.
	Tolerance int `yaml:"tolerance"`

	DPI int `yaml:"dpi"`

	// Morphology knobs.
	OpenKernel   int     `yaml:"open_kernel"`
	CloseKernel  int     `yaml:"close_kernel"`
	DilatePasses int     `yaml:"dilate_passes"`
	MaxCoverage  float64 `yaml:"max_coverage"`

	// Window is the neighborhood size for local background estimation.
	Window int `yaml:"window"`

	// Workers bounds page-level parallelism (and with it peak memory).
	Workers int `yaml:"workers"`

	// OnError is the per-page failure policy: "abort" or "keep-original".
	OnError string `yaml:"on_error"`

	Dir          string `yaml:"dir"`
	OutputDir    string `yaml:"output_dir"`
	ExtractedDir string `yaml:"extracted_dir"`
	CleanedDir   string `yaml:"cleaned_dir"`

	Debug bool `yaml:"debug"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Red:          -1,
		Green:        -1,
		Blue:         -1,
		Tolerance:    imaging.DefaultTolerance,
		DPI:          300,
		OpenKernel:   3,
		CloseKernel:  5,
		DilatePasses: 2,
		MaxCoverage:  0.60,
		Window:       15,
		Workers:      4,
		OnError:      "keep-original",
		Dir:          ".",
		OutputDir:    "output",
		ExtractedDir: "images_extracted",
		CleanedDir:   "images_cleaned",
	}
}

// Load reads a YAML config file over the defaults. A missing file is an
// error; pass an empty path to skip file loading entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	if !c.Auto {
		for _, v := range []struct {
			name string
			val  int
		}{{"red", c.Red}, {"green", c.Green}, {"blue", c.Blue}} {
			if v.val < 0 || v.val > 255 {
				return fmt.Errorf("%s must be in 0-255 (got %d); or use -auto", v.name, v.val)
			}
		}
	}
	if c.Tolerance < 0 || c.Tolerance > 255 {
		return fmt.Errorf("tolerance must be in 0-255 (got %d)", c.Tolerance)
	}
	if c.DPI < 36 || c.DPI > 1200 {
		return fmt.Errorf("dpi must be in 36-1200 (got %d)", c.DPI)
	}
	for _, k := range []struct {
		name string
		val  int
	}{{"open_kernel", c.OpenKernel}, {"close_kernel", c.CloseKernel}, {"window", c.Window}} {
		if k.val < 1 || k.val%2 == 0 {
			return fmt.Errorf("%s must be odd and positive (got %d)", k.name, k.val)
		}
	}
	if c.DilatePasses < 0 {
		return fmt.Errorf("dilate_passes must not be negative (got %d)", c.DilatePasses)
	}
	if c.MaxCoverage <= 0 || c.MaxCoverage > 1 {
		return fmt.Errorf("max_coverage must be in (0, 1] (got %g)", c.MaxCoverage)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if _, err := pipeline.ParseErrorPolicy(c.OnError); err != nil {
		return err
	}
	return nil
}

// Model returns the manual-mode color model, or nil in auto mode.
func (c Config) Model() *imaging.ColorModel {
	if c.Auto {
		return nil
	}
	m := imaging.NewColorModel(imaging.RGBColor{
		R: uint8(c.Red),
		G: uint8(c.Green),
		B: uint8(c.Blue),
	}, uint8(c.Tolerance))
	return &m
}

// Options maps the configuration onto the page processor's option set.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Refine: imaging.RefineConfig{
			OpenKernel:   c.OpenKernel,
			CloseKernel:  c.CloseKernel,
			DilatePasses: c.DilatePasses,
			MaxCoverage:  c.MaxCoverage,
		},
		Recolor: imaging.RecolorConfig{
			Window:   c.Window,
			Fallback: imaging.RGBColor{R: 255, G: 255, B: 255},
		},
	}
}
