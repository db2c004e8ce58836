package main

import (
	"errors"

	flag "github.com/spf13/pflag"

	hymnpdf "github.com/alnah/go-hymnpdf"
	"github.com/alnah/go-hymnpdf/internal/assets"
	"github.com/alnah/go-hymnpdf/internal/config"
)

// Exit codes for the hymnpdf CLI.
// A run with failed items still exits 0: failures are in the summary.
const (
	ExitSuccess = 0 // Run completed
	ExitFatal   = 1 // Source unreachable, catalog unreadable, no match, canceled, browser unusable
	ExitUsage   = 2 // Invalid flags, arguments or config
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, hymnpdf.ErrInvalidPageSize) ||
		errors.Is(err, hymnpdf.ErrInvalidMargin) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) {
		return ExitUsage
	}

	return ExitFatal
}
