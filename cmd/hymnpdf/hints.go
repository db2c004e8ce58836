package main

import (
	"context"
	"errors"

	hymnpdf "github.com/alnah/go-hymnpdf"
	"github.com/alnah/go-hymnpdf/internal/config"
	"github.com/alnah/go-hymnpdf/internal/hints"
)

// hintFor returns an actionable hint for err, or "". cfg may be nil when
// configuration failed to load.
func hintFor(err error, cfg *config.Config, configName string) string {
	var noMatch *hymnpdf.NoMatchError
	switch {
	case errors.As(err, &noMatch):
		return hints.ForNoMatch(noMatch.Available)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(configName))
	case cfg == nil:
		return ""
	case errors.Is(err, hymnpdf.ErrSourceUnreachable):
		return hints.ForSourceUnreachable(cfg.Source.BaseURL)
	case errors.Is(err, hymnpdf.ErrCatalogUnavailable):
		return hints.ForCatalog(cfg.Data.Dir)
	case errors.Is(err, hymnpdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, hymnpdf.ErrWriteArtifact), errors.Is(err, hymnpdf.ErrManifestWrite):
		return hints.ForOutputDirectory()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}
