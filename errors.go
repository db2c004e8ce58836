package hymnpdf

import "errors"

// Sentinel errors for pipeline operations.
var (
	// Run-aborting conditions.
	ErrSourceUnreachable  = errors.New("content source unreachable")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNoMatch            = errors.New("no collections match filter")
	ErrCanceled           = errors.New("run canceled")

	// Soft, recorded conditions.
	ErrCollectionUnavailable = errors.New("collection hymn list unavailable")
	ErrHymnUnavailable       = errors.New("hymn detail unavailable")

	// Rendering failures.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEmptyDocument  = errors.New("document has no source URL and no content")
	ErrWriteArtifact  = errors.New("failed to write artifact")

	// Index writer.
	ErrManifestWrite = errors.New("failed to write manifest")
	ErrManifestRead  = errors.New("failed to read manifest")

	// Page settings validation errors.
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidMargin   = errors.New("invalid margin")
)
