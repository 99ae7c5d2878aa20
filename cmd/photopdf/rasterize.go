package main

import (
	"context"
	"fmt"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/config"
	"github.com/alnah/photopdf/internal/hints"
)

// runRasterizeCmd renders every page of the given PDFs into image files.
func runRasterizeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRasterizeFlags(args)
	if err != nil {
		return parseError(err)
	}

	// Checked before config validation so the hint is attached.
	if flags.dpi != 0 && flags.dpi < photopdf.MinRasterDPI {
		return fmt.Errorf("%w: %g%s", photopdf.ErrInvalidDPI, flags.dpi, hints.ForRasterDPI(photopdf.MinRasterDPI))
	}

	cfg, err := loadCommandConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeRasterizeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	pdfs, err := discoverPDFs(positional)
	if err != nil {
		return err
	}

	job, err := buildRasterJob(pdfs, flags.output, cfg)
	if err != nil {
		return err
	}

	release, err := lockTarget(job.OutputDir, true)
	if err != nil {
		return err
	}
	defer release()

	quiet, verbose := flags.common.quiet, flags.common.verbose
	engine := env.NewEngine(engineOptions{
		directJPEG: true,
		logger:     newLogger(env.Stderr, quiet, verbose),
		now:        env.Now,
	})

	bar := newProgressReporter(env.Stderr, "rendering", !quiet && !verbose)
	res, err := runJob(func(w *photopdf.Worker) (*photopdf.Run, error) {
		return w.StartRasterize(ctx, *job, bar.Update)
	}, engine)
	bar.Finish()
	if err != nil {
		return err
	}

	printResult(env, res, reportOptions{quiet: quiet, verbose: verbose})
	return resultError(res)
}

// mergeRasterizeFlags merges CLI flags into config. CLI values override config values.
func mergeRasterizeFlags(flags *rasterizeFlags, cfg *config.Config) {
	if flags.dpi != 0 {
		cfg.Rasterize.DPI = flags.dpi
	}
	if flags.format != "" {
		cfg.Rasterize.Format = flags.format
	}
	if flags.quality != 0 {
		cfg.Rasterize.Quality = flags.quality
	}
}

// buildRasterJob turns the merged config into a validated job.
func buildRasterJob(pdfs []string, output string, cfg *config.Config) (*photopdf.RasterJob, error) {
	dpi := cfg.Rasterize.DPI
	if dpi == 0 {
		dpi = photopdf.DefaultRasterDPI
	}
	format, err := photopdf.ParseRasterFormat(cfg.Rasterize.Format)
	if err != nil {
		return nil, err
	}

	job := &photopdf.RasterJob{
		PDFs:      pdfs,
		OutputDir: resolveRasterDir(pdfs, output, cfg.Output.DefaultDir),
		DPI:       dpi,
		Format:    format,
		Quality:   cfg.Rasterize.Quality,
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}
