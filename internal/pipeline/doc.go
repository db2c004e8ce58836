// Package pipeline holds the content transformations applied between a
// document tree and the browser:
//   - Markdown note conversion via Goldmark
//   - print stylesheet composition (hidden chrome, page breaks, @page rules)
//
// Browser work (navigation, injection, PDF export) stays in the root
// hymnpdf package. This package has no browser dependency and is tested
// with plain strings.
package pipeline
