package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	hymnpdf "github.com/alnah/go-hymnpdf"
	"github.com/alnah/go-hymnpdf/internal/assets"
	"github.com/alnah/go-hymnpdf/internal/config"
)

// runGenerateCmd runs the hymns or collections command and returns an exit code.
func runGenerateCmd(mode hymnpdf.Mode, args []string, env *Environment) int {
	flags, positional, err := parseGenerateFlags(mode.String(), args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printGenerateUsage(env.Stderr, mode.String())
		return ExitUsage
	}
	if len(positional) > 1 {
		fmt.Fprintf(env.Stderr, "error: %v: expected at most one filter, got %d arguments\n", ErrUsage, len(positional))
		return ExitUsage
	}

	job := hymnpdf.Job{Mode: mode, Filter: hymnpdf.FilterAll, Force: flags.force, Limit: flags.limit}
	if len(positional) == 1 {
		job.Filter = positional[0]
	}

	cfg, err := loadSettings(flags.common, flags.source, env)
	if err == nil {
		err = applyGenerateFlags(flags, cfg)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg, flags.common.config))
		return exitCodeFor(err)
	}

	logger := newLogger(flags.common, env.Stderr)
	defer func() { _ = logger.Sync() }()

	ctx, stop := notifyContext(context.Background())
	defer stop()

	stats, err := generate(ctx, job, cfg, env, logger)
	if stats != nil && (err == nil || stats.Total() > 0) && !flags.common.quiet {
		fmt.Fprint(env.Stdout, stats.Summary())
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg, flags.common.config))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// generate checks the content source, wires the pipeline and runs job.
// Stats are nil when the run never started.
func generate(ctx context.Context, job hymnpdf.Job, cfg *config.Config, env *Environment, logger *zap.Logger) (*hymnpdf.RunStats, error) {
	// The content site must answer before anything touches the output directory.
	if err := hymnpdf.CheckSource(ctx, env.HTTPClient, cfg.Source.BaseURL, cfg.Source.LivenessTimeout); err != nil {
		return nil, err
	}
	logger.Debug("content source reachable", zap.String("url", cfg.Source.BaseURL))

	loader, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	markup, err := hymnpdf.NewMarkup(loader)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	store := hymnpdf.NewStore(cfg.Data.Dir, logger)
	builder := hymnpdf.NewBuilder(builderConfig(cfg, env.Now), logger)

	renderer := env.NewRenderer(renderOptions(cfg), markup, logger)
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("closing browser", zap.Error(err))
		}
	}()

	orch := hymnpdf.NewOrchestrator(store, store, builder, renderer, orchestratorConfig(cfg, env.Now), logger)
	stats, err := orch.Run(ctx, job)
	return &stats, err
}
