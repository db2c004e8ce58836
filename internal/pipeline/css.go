package pipeline

import (
	"fmt"
	"strings"
)

// PrintRules are the print-time rules layered on top of a base stylesheet.
type PrintRules struct {
	HideSelectors      []string
	BreakBetweenHymns  bool
	BreakAfterContents bool
	PageSize           string  // CSS page size keyword, e.g. "letter", "a4"
	MarginInches       float64 // 0 leaves @page margins to the stylesheet
}

// printColorRule keeps background colours when printing.
const printColorRule = `@media print {
  * { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
}
`

// BuildPrintCSS appends print rules to base and sanitizes the result for
// use inside a <style> block.
func BuildPrintCSS(base string, r PrintRules) string {
	var b strings.Builder
	b.WriteString(base)
	if base != "" && !strings.HasSuffix(base, "\n") {
		b.WriteByte('\n')
	}

	if len(r.HideSelectors) > 0 {
		b.WriteString(strings.Join(r.HideSelectors, ",\n"))
		b.WriteString(" {\n  display: none !important;\n}\n")
	}

	if r.BreakBetweenHymns {
		b.WriteString(".hymn-section.break-before { break-before: page; page-break-before: always; }\n")
		b.WriteString(".hymn-section:first-child { break-before: auto; }\n")
	}
	if r.BreakAfterContents {
		b.WriteString(".toc { break-after: page; page-break-after: always; }\n")
	}

	if r.PageSize != "" || r.MarginInches > 0 {
		b.WriteString("@page {")
		if r.PageSize != "" {
			fmt.Fprintf(&b, " size: %s;", r.PageSize)
		}
		if r.MarginInches > 0 {
			fmt.Fprintf(&b, " margin: %.2fin;", r.MarginInches)
		}
		b.WriteString(" }\n")
	}

	b.WriteString(printColorRule)
	return SanitizeCSS(b.String())
}

// SanitizeCSS escapes "</" so the content cannot close its <style> block.
func SanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
