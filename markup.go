package hymnpdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-hymnpdf/internal/assets"
	"github.com/alnah/go-hymnpdf/internal/pipeline"
)

// Markup serializes Documents into the HTML, CSS and page templates handed
// to the browser. Every method is a pure function of the document and the
// loaded assets.
type Markup struct {
	loader assets.AssetLoader
	body   *template.Template
	header *template.Template
	footer *template.Template
}

var markupFuncs = template.FuncMap{
	"join": strings.Join,
	// Notes are rendered by goldmark with raw HTML disabled.
	"safeHTML": func(s string) template.HTML { return template.HTML(s) }, // #nosec G203
}

// NewMarkup parses the document templates from loader.
// A nil loader uses the embedded assets.
func NewMarkup(loader assets.AssetLoader) (*Markup, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}

	m := &Markup{loader: loader}
	var err error
	if m.body, err = parseAsset(loader, assets.TemplateCollection); err != nil {
		return nil, err
	}
	if m.header, err = parseAsset(loader, assets.TemplateHeader); err != nil {
		return nil, err
	}
	if m.footer, err = parseAsset(loader, assets.TemplateFooter); err != nil {
		return nil, err
	}
	return m, nil
}

func parseAsset(loader assets.AssetLoader, name string) (*template.Template, error) {
	src, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s template: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(markupFuncs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return tmpl, nil
}

// HTML serializes an assembled document into a complete HTML page.
func (m *Markup) HTML(doc *Document) (string, error) {
	if doc == nil || (doc.TitlePage == nil && len(doc.Hymns) == 0) {
		return "", ErrEmptyDocument
	}
	return execute(m.body, doc)
}

// Stylesheet returns the document's base style followed by its print rules.
func (m *Markup) Stylesheet(doc *Document) (string, error) {
	base, err := m.loader.LoadStyle(doc.Rules.Style)
	if err != nil {
		return "", fmt.Errorf("loading style: %w", err)
	}

	page := doc.Rules.Page
	return pipeline.BuildPrintCSS(base, pipeline.PrintRules{
		HideSelectors:      doc.Rules.HideSelectors,
		BreakBetweenHymns:  doc.Rules.BreakBetweenHymns,
		BreakAfterContents: doc.Rules.BreakAfterContents,
		PageSize:           strings.ToLower(page.Size),
		MarginInches:       page.Margin,
	}), nil
}

// HeaderFooter renders the page header and footer templates.
func (m *Markup) HeaderFooter(doc *Document) (header, footer string, err error) {
	if header, err = execute(m.header, doc.Rules); err != nil {
		return "", "", err
	}
	if footer, err = execute(m.footer, doc.Rules); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(header), strings.TrimSpace(footer), nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
