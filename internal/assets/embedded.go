package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html
var builtin embed.FS

// EmbeddedLoader serves the stylesheets and templates shipped in the binary.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return readBuiltin("styles", name, ".css", ErrStyleNotFound)
}

func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return readBuiltin("templates", name, ".html", ErrTemplateNotFound)
}

// readBuiltin maps any read failure to notFound: the embedded tree is fixed
// at build time, so a failed read can only mean an unknown name.
func readBuiltin(dir, name, ext string, notFound error) (string, error) {
	if err := checkAssetName(name); err != nil {
		return "", err
	}
	// embed.FS paths always use forward slashes.
	b, err := builtin.ReadFile(dir + "/" + name + ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(b), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
