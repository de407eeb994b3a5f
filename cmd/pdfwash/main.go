// Command pdfwash removes visible colored watermarks from PDF documents by
// rasterizing each page, suppressing watermark-colored pixels, and rebuilding
// the document from the cleaned page images.
//
// Manual mode takes the watermark color on the command line:
//
//	pdfwash -r 249 -g 249 -b 249
//
// Auto mode infers a per-document color from the page pixel statistics:
//
//	pdfwash -auto
//
// Every PDF in the working directory is processed; cleaned documents are
// written to ./output/ under their original filenames. With -debug the
// extracted and cleaned page images are also written to ./images_extracted/
// and ./images_cleaned/.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/pdfwash/pdfwash/internal/config"
	"github.com/pdfwash/pdfwash/internal/pdf"
	"github.com/pdfwash/pdfwash/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	def := config.Default()

	red := flag.Int("r", def.Red, "watermark red component (0-255, manual mode)")
	green := flag.Int("g", def.Green, "watermark green component (0-255, manual mode)")
	blue := flag.Int("b", def.Blue, "watermark blue component (0-255, manual mode)")
	auto := flag.Bool("auto", def.Auto, "detect the watermark color automatically per document")
	tolerance := flag.Int("tolerance", def.Tolerance, "max per-channel color deviation for watermark pixels")
	dpi := flag.Int("dpi", def.DPI, "render resolution for page rasterization")
	workers := flag.Int("workers", def.Workers, "max pages processed concurrently")
	onError := flag.String("on-error", def.OnError, "per-page failure policy: abort or keep-original")
	dir := flag.String("dir", def.Dir, "working directory scanned for PDF files")
	configPath := flag.String("config", "", "optional YAML config file")
	debug := flag.Bool("debug", def.Debug, "verbose logging and intermediate image dumps")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		fmt.Printf("pdfwash %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	// Flags set on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "r":
			cfg.Red = *red
		case "g":
			cfg.Green = *green
		case "b":
			cfg.Blue = *blue
		case "auto":
			cfg.Auto = *auto
		case "tolerance":
			cfg.Tolerance = *tolerance
		case "dpi":
			cfg.DPI = *dpi
		case "workers":
			cfg.Workers = *workers
		case "on-error":
			cfg.OnError = *onError
		case "dir":
			cfg.Dir = *dir
		case "debug":
			cfg.Debug = *debug
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	policy, _ := pipeline.ParseErrorPolicy(cfg.OnError)
	runner := &pipeline.Runner{
		Raster:       pdf.NewPopplerRasterizer(),
		Assemble:     pdf.Assembler{},
		Log:          log,
		Model:        cfg.Model(),
		Auto:         cfg.Auto,
		DPI:          cfg.DPI,
		Workers:      cfg.Workers,
		Policy:       policy,
		Opts:         cfg.Options(),
		Debug:        cfg.Debug,
		OutputDir:    cfg.OutputDir,
		ExtractedDir: cfg.ExtractedDir,
		CleanedDir:   cfg.CleanedDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, cfg.Dir); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
