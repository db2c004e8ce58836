package hymnpdf

import (
	"fmt"
	"regexp"
	"strings"
)

// CollectionRef describes one hymnal in the reference catalog.
// Loaded once per run and never mutated.
type CollectionRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Year         int    `json:"year"`
	Language     string `json:"language"`
	LanguageName string `json:"language_name"`
	TotalSongs   int    `json:"total_songs"`
	Slug         string `json:"url_slug"`
	Compiler     string `json:"compiler,omitempty"`
	SiteName     string `json:"site_name,omitempty"`
	Note         string `json:"note,omitempty"` // Markdown
}

// DisplayName returns the site name when set, otherwise the catalog name.
func (c CollectionRef) DisplayName() string {
	if c.SiteName != "" {
		return c.SiteName
	}
	return c.Name
}

// LanguageLabel prefers the human-readable language name over the code.
func (c CollectionRef) LanguageLabel() string {
	if c.LanguageName != "" {
		return c.LanguageName
	}
	return c.Language
}

// HymnSummary is the entry a collection's hymn list carries for each hymn.
type HymnSummary struct {
	ID       string `json:"hymn_id"`
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Composer string `json:"composer,omitempty"`
	Tune     string `json:"tune,omitempty"`
	Meter    string `json:"meter,omitempty"`
}

// Verse is one numbered block of hymn text.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Chorus is the refrain sung after verses.
type Chorus struct {
	Text string `json:"text"`
}

// HymnMetadata holds optional descriptive data about a hymn.
type HymnMetadata struct {
	Year                int      `json:"year,omitempty"`
	Copyright           string   `json:"copyright,omitempty"`
	Themes              []string `json:"themes,omitempty"`
	ScriptureReferences []string `json:"scripture_references,omitempty"`
	Translator          string   `json:"translator,omitempty"`
	OriginalLanguage    string   `json:"original_language,omitempty"`
}

// HymnDetail is the full per-hymn record. It may be missing for any hymn.
type HymnDetail struct {
	ID       string        `json:"id"`
	Number   int           `json:"number"`
	Title    string        `json:"title"`
	Author   string        `json:"author,omitempty"`
	Composer string        `json:"composer,omitempty"`
	Tune     string        `json:"tune,omitempty"`
	Meter    string        `json:"meter,omitempty"`
	Verses   []Verse       `json:"verses,omitempty"`
	Chorus   *Chorus       `json:"chorus,omitempty"`
	Stanzas  []Verse       `json:"stanzas,omitempty"`
	Lyrics   string        `json:"lyrics,omitempty"`
	Metadata *HymnMetadata `json:"metadata,omitempty"`
}

// HymnRecord is an assembled hymn: the summary from the collection list,
// enriched with its detail when one could be loaded.
// Number and Title always come from the summary.
type HymnRecord struct {
	HymnSummary
	Detail   *HymnDetail
	Degraded bool // detail missing, summary data only
}

// AuthorName returns the summary author, falling back to the detail's.
func (h HymnRecord) AuthorName() string {
	return h.field(h.Author, func(d *HymnDetail) string { return d.Author })
}

// field returns the summary value, or the detail value when the summary is empty.
func (h HymnRecord) field(summary string, detail func(*HymnDetail) string) string {
	if summary != "" || h.Detail == nil {
		return summary
	}
	return detail(h.Detail)
}

// ComposerName returns the composer, preferring summary data.
func (h HymnRecord) ComposerName() string {
	return h.field(h.Composer, func(d *HymnDetail) string { return d.Composer })
}

// TuneName returns the tune name, preferring summary data.
func (h HymnRecord) TuneName() string {
	return h.field(h.Tune, func(d *HymnDetail) string { return d.Tune })
}

// MeterName returns the meter, preferring summary data.
func (h HymnRecord) MeterName() string {
	return h.field(h.Meter, func(d *HymnDetail) string { return d.Meter })
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 2.0
	DefaultMargin = 0.75
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size   string  // "letter", "a4", "legal"
	Margin float64 // inches, applied to all sides
}

// DefaultPageSettings returns US Letter with 0.75in margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{Size: PageSizeLetter, Margin: DefaultMargin}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	switch strings.ToLower(p.Size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// dimensions returns paper width and height in inches.
func (p *PageSettings) dimensions() (width, height float64) {
	switch strings.ToLower(p.Size) {
	case PageSizeA4:
		return 8.27, 11.69
	case PageSizeLegal:
		return 8.5, 14
	default:
		return 8.5, 11
	}
}

var (
	slugUnsafe = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
)

// Slugify lowercases s, drops punctuation and joins words with hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugUnsafe.ReplaceAllString(s, "")
	return slugSpaces.ReplaceAllString(s, "-")
}
