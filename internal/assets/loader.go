package assets

// AssetLoader defines the contract for loading CSS styles and HTML templates.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}

// Built-in asset names.
const (
	StyleHymn          = "hymn"       // print rules for live hymn pages
	StyleCollection    = "collection" // layout of assembled collection documents
	TemplateCollection = "collection" // body of assembled collection documents
	TemplateHeader     = "header"     // PDF page header
	TemplateFooter     = "footer"     // PDF page footer
)
