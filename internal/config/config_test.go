package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func manualConfig() Config {
	cfg := Default()
	cfg.Red, cfg.Green, cfg.Blue = 249, 249, 249
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"manual mode with rgb", func(c *Config) {}, ""},
		{"auto mode without rgb", func(c *Config) { c.Auto = true; c.Red = -1 }, ""},
		{"missing red in manual mode", func(c *Config) { c.Red = -1 }, "red"},
		{"green out of range", func(c *Config) { c.Green = 300 }, "green"},
		{"tolerance out of range", func(c *Config) { c.Tolerance = 256 }, "tolerance"},
		{"dpi too low", func(c *Config) { c.DPI = 10 }, "dpi"},
		{"even kernel", func(c *Config) { c.CloseKernel = 4 }, "close_kernel"},
		{"even window", func(c *Config) { c.Window = 14 }, "window"},
		{"negative dilate passes", func(c *Config) { c.DilatePasses = -1 }, "dilate_passes"},
		{"coverage over one", func(c *Config) { c.MaxCoverage = 1.5 }, "max_coverage"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad policy", func(c *Config) { c.OnError = "panic" }, "error policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := manualConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfwash.yaml")
	data := "tolerance: 45\ndpi: 150\nauto: true\non_error: abort\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tolerance != 45 || cfg.DPI != 150 || !cfg.Auto || cfg.OnError != "abort" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Workers != Default().Workers || cfg.OutputDir != "output" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Error("empty path should return pure defaults")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("a missing config file must be reported")
	}
}

func TestModel(t *testing.T) {
	cfg := manualConfig()
	m := cfg.Model()
	if m == nil {
		t.Fatal("manual mode must produce a model")
	}
	if m.Center.R != 249 || m.Tolerance != uint8(cfg.Tolerance) {
		t.Errorf("model mismatch: %+v", m)
	}

	cfg.Auto = true
	if cfg.Model() != nil {
		t.Error("auto mode must not carry a manual model")
	}
}
