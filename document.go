package hymnpdf

import "strconv"

// DocumentKind distinguishes single-hymn from collection documents.
type DocumentKind int

const (
	KindSingleHymn DocumentKind = iota
	KindCollection
)

// String returns the manifest type label for the kind.
func (k DocumentKind) String() string {
	if k == KindCollection {
		return "complete_hymnal"
	}
	return "hymn"
}

// Document is the typed tree for one artifact. It owns its data by value.
//
// A document with a SourceURL is rendered from the live page at that URL;
// otherwise the sections below are serialized and injected into a blank page.
type Document struct {
	Kind       DocumentKind
	Title      string
	Collection CollectionRef
	SourceURL  string

	TitlePage *TitleSection    // collection documents only
	Contents  *ContentsSection // nil when there are no hymns
	Hymns     []HymnSection
	Sample    *SampleNote // nil when every hymn is included

	Rules PresentationRules
}

// TitleSection opens a collection document.
type TitleSection struct {
	Name      string
	Year      int
	HymnCount int
	Language  string
	Compiler  string
	NoteHTML  string // rendered from Markdown, may be empty
	Generated string // formatted generation date
	SiteLabel string
}

// ContentsEntry is one line of the table of contents.
type ContentsEntry struct {
	Number int
	Title  string
}

// ContentsSection lists the first entries of the collection.
type ContentsSection struct {
	Title   string
	Entries []ContentsEntry
	More    int // entries left out, 0 when the list is complete
}

// BlockKind labels a text block inside a hymn section.
type BlockKind string

const (
	BlockVerse       BlockKind = "verse"
	BlockStanza      BlockKind = "stanza"
	BlockLyrics      BlockKind = "lyrics"
	BlockChorus      BlockKind = "chorus"
	BlockPlaceholder BlockKind = "placeholder"
)

// TextBlock is a verse, stanza, chorus or placeholder.
// Lines holds the text split on newlines.
type TextBlock struct {
	Kind   BlockKind
	Number int // 0 when unnumbered
	Lines  []string
}

// Label returns the heading shown above the block, or "" for none.
func (b TextBlock) Label() string {
	switch b.Kind {
	case BlockVerse:
		return "Verse " + strconv.Itoa(b.Number)
	case BlockStanza:
		return "Stanza " + strconv.Itoa(b.Number)
	case BlockChorus:
		return "Chorus"
	}
	return ""
}

// HymnSection holds one hymn's rendered content.
type HymnSection struct {
	Number      int
	Title       string
	Author      string
	Composer    string
	Tune        string
	Meter       string
	Blocks      []TextBlock
	Themes      []string
	Scripture   []string
	Copyright   string
	BreakBefore bool
}

// SampleNote discloses that a collection document is a sample.
type SampleNote struct {
	Included  int
	Total     int
	Remaining int
	Name      string
	SiteLabel string
}

// PresentationRules are the declarative styling and pagination rules
// applied by the renderer.
type PresentationRules struct {
	Style              string   // stylesheet name in the asset loader
	HideSelectors      []string // elements hidden on live pages
	ContentMarker      string   // selector awaited on live pages
	BreakBetweenHymns  bool
	BreakAfterContents bool
	Header             string // plain text, escaped by the renderer
	Footer             string // plain text appended after page numbers
	Page               PageSettings
}
