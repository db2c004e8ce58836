package main

import (
	"fmt"
	"strings"
	"time"

	hymnpdf "github.com/alnah/go-hymnpdf"
	"github.com/alnah/go-hymnpdf/internal/config"
)

// loadSettings resolves the configuration for a command from the config
// file, the environment and the command's source flags, then validates it.
func loadSettings(common commonFlags, source sourceFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)

	if source.baseURL != "" {
		cfg.Source.BaseURL = source.baseURL
	}
	if source.dataDir != "" {
		cfg.Data.Dir = source.dataDir
	}
	return cfg, nil
}

// applyGenerateFlags merges generation flags into cfg and validates it.
func applyGenerateFlags(f *generateFlags, cfg *config.Config) error {
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use e.g. 60s, 2m)", ErrInvalidTimeout, f.timeout)
		}
		cfg.Render.NavigationTimeout = d
	}
	if f.limit < 0 {
		return fmt.Errorf("%w: --limit must be >= 0, got %d", ErrUsage, f.limit)
	}
	return cfg.Validate()
}

// renderOptions maps the render section onto the renderer options.
// Config is already defaulted, so a zero settle there means no delay.
func renderOptions(cfg *config.Config) hymnpdf.RenderOptions {
	return hymnpdf.RenderOptions{
		NavigationTimeout: cfg.Render.NavigationTimeout,
		MarkerTimeout:     cfg.Render.MarkerTimeout,
		HymnSettle:        explicitSettle(cfg.Render.HymnSettle),
		CollectionSettle:  explicitSettle(cfg.Render.CollectionSettle),
	}
}

func explicitSettle(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// builderConfig maps the document section onto the builder configuration.
func builderConfig(cfg *config.Config, now func() time.Time) hymnpdf.BuilderConfig {
	return hymnpdf.BuilderConfig{
		BaseURL:   cfg.Source.BaseURL,
		SiteLabel: cfg.Document.SiteLabel,
		Sampling: &hymnpdf.SamplingPolicy{
			FullThreshold: cfg.Document.Sampling.FullThreshold,
			SampleSize:    cfg.Document.Sampling.SampleSize,
		},
		ContentsLimit: cfg.Document.ContentsLimit,
		ContentMarker: cfg.Document.ContentMarker,
		HideSelectors: cfg.Document.HideSelectors,
		DateFormat:    cfg.Document.DateFormat,
		Page:          &hymnpdf.PageSettings{Size: strings.ToLower(cfg.Page.Size), Margin: cfg.Page.Margin},
		InlineHymns:   cfg.Render.InlineHymns,
		Now:           now,
	}
}

// orchestratorConfig maps the output and render sections onto the batch loop.
func orchestratorConfig(cfg *config.Config, now func() time.Time) hymnpdf.OrchestratorConfig {
	return hymnpdf.OrchestratorConfig{
		OutputDir:         cfg.Output.Dir,
		CollectionsSubdir: cfg.Output.CollectionsSubdir,
		URLPrefix:         cfg.Output.URLPrefix,
		HymnPacing:        cfg.Render.HymnPacing,
		CollectionPacing:  cfg.Render.CollectionPacing,
		Retries:           cfg.Render.Retries,
		RetryBackoff:      cfg.Render.RetryBackoff,
		LoadDetails:       cfg.Render.InlineHymns,
		Now:               now,
	}
}
