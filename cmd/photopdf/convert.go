package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/config"
	"github.com/alnah/photopdf/internal/hints"
)

// ErrUsage wraps flag parsing failures.
var ErrUsage = errors.New("invalid usage")

// dirPermissions is used for output directories: rwxr-x---.
const dirPermissions = 0o750

// runConvertCmd converts images into one PDF or one PDF per photo.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return parseError(err)
	}

	cfg, err := loadCommandConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeConvertFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	images, err := discoverImages(positional)
	if err != nil {
		return err
	}

	job, err := buildJob(images, flags.output, cfg)
	if err != nil {
		return err
	}

	release, err := lockTarget(job.Target, job.Output == photopdf.OutputPerImage)
	if err != nil {
		return err
	}
	defer release()

	quiet, verbose := flags.common.quiet, flags.common.verbose
	direct := config.Bool(cfg.Convert.DirectJPEG, true)
	engine := env.NewEngine(engineOptions{
		directJPEG: direct,
		logger:     newLogger(env.Stderr, quiet, verbose),
		now:        env.Now,
	})

	bar := newProgressReporter(env.Stderr, "converting", !quiet && !verbose)
	res, err := runJob(func(w *photopdf.Worker) (*photopdf.Run, error) {
		return w.StartCompose(ctx, *job, bar.Update)
	}, engine)
	bar.Finish()
	if err != nil {
		return err
	}

	printResult(env, res, reportOptions{
		quiet:        quiet,
		verbose:      verbose,
		degradedHint: hints.ForDegraded(!direct),
	})
	return resultError(res)
}

// runJob starts a job on a fresh worker and waits for it.
func runJob(start func(*photopdf.Worker) (*photopdf.Run, error), engine *photopdf.Engine) (*photopdf.Result, error) {
	run, err := start(photopdf.NewWorker(engine))
	if err != nil {
		return nil, err
	}
	return run.Wait()
}

// mergeConvertFlags merges CLI flags into config. CLI values override config values.
func mergeConvertFlags(flags *convertFlags, cfg *config.Config) {
	if flags.sizing.policy != "" {
		cfg.Convert.Sizing = flags.sizing.policy
	}
	if flags.sizing.dpi != 0 {
		cfg.Convert.DPI = flags.sizing.dpi
	}
	if flags.sizing.marginSet {
		cfg.Convert.Margin = flags.sizing.margin
	}
	if flags.embed.mode != "" {
		cfg.Convert.Embed = flags.embed.mode
	}
	if flags.embed.quality != 0 {
		cfg.Convert.Quality = flags.embed.quality
	}
	if flags.embed.noRotate {
		off := false
		cfg.Convert.AutoRotate = &off
	}
	if flags.embed.noDirectJPEG {
		off := false
		cfg.Convert.DirectJPEG = &off
	}
	if flags.perPhoto {
		cfg.Output.PerPhoto = true
	}
	if flags.metadata.title != "" {
		cfg.Metadata.Title = flags.metadata.title
	}
	if flags.metadata.author != "" {
		cfg.Metadata.Author = flags.metadata.author
	}
}

// buildJob turns the merged config into a validated job.
// An unset DPI means 300 for both DPI policies.
func buildJob(images []string, output string, cfg *config.Config) (*photopdf.Job, error) {
	dpi := cfg.Convert.DPI
	if dpi == 0 {
		dpi = photopdf.DefaultFallbackDPI
	}
	sizing, err := photopdf.ParseSizing(cfg.Convert.Sizing, dpi)
	if err != nil {
		return nil, err
	}
	embedding, err := photopdf.ParseEmbedding(cfg.Convert.Embed, cfg.Convert.Quality)
	if err != nil {
		return nil, err
	}

	mode := photopdf.OutputSingle
	if cfg.Output.PerPhoto {
		mode = photopdf.OutputPerImage
	}

	var meta *photopdf.Metadata
	if cfg.Metadata.Title != "" || cfg.Metadata.Author != "" {
		meta = &photopdf.Metadata{Title: cfg.Metadata.Title, Author: cfg.Metadata.Author}
	}

	job := &photopdf.Job{
		Images:            images,
		Sizing:            sizing,
		Embedding:         embedding,
		Margin:            cfg.Convert.Margin,
		Output:            mode,
		Target:            resolveConvertTarget(images, output, cfg.Output.DefaultDir, cfg.Output.PerPhoto),
		Metadata:          meta,
		IgnoreOrientation: !config.Bool(cfg.Convert.AutoRotate, true),
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// parseError maps a flag parsing failure to a command error.
// --help is not a failure: usage was already printed.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
