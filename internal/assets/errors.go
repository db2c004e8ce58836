package assets

import "errors"

var (
	// ErrStyleNotFound is returned when no loader has the named stylesheet.
	// The resolver falls back to the embedded copy on this error.
	ErrStyleNotFound = errors.New("stylesheet not found")
	// ErrTemplateNotFound is the template counterpart of ErrStyleNotFound.
	ErrTemplateNotFound = errors.New("page template not found")

	ErrInvalidAssetName = errors.New("invalid stylesheet or template name")
	ErrInvalidBasePath  = errors.New("invalid assets directory")
	ErrAssetRead        = errors.New("reading asset override")

	// ErrOutsideAssetDir means an override resolved (usually via a symlink)
	// to a file outside the assets directory.
	ErrOutsideAssetDir = errors.New("asset override outside assets directory")
)
