package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrNoteConversion indicates a Markdown note could not be converted.
var ErrNoteConversion = errors.New("note conversion failed")

// NoteConverter renders short Markdown notes (collection descriptions,
// editorial remarks) to HTML fragments.
type NoteConverter struct {
	md goldmark.Markdown
}

// NewNoteConverter creates a NoteConverter with GFM and typographic quotes.
// Raw HTML in notes is not passed through.
func NewNoteConverter() *NoteConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &NoteConverter{md: md}
}

// Render converts markdown to an HTML fragment.
func (c *NoteConverter) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoteConversion, err)
	}
	return buf.String(), nil
}
