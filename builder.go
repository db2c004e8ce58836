package hymnpdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-hymnpdf/internal/assets"
	"github.com/alnah/go-hymnpdf/internal/dateutil"
	"github.com/alnah/go-hymnpdf/internal/pipeline"
)

// Defaults for document building.
const (
	DefaultContentsLimit = 50
	DefaultSiteLabel     = "AdventHymnals.org"
	DefaultContentMarker = ".hymn-content, [data-hymn-content], main, article"
	DefaultDateFormat    = "long"

	placeholderText = "Lyrics not available in this format."
	contentsTitle   = "Table of Contents"
)

// DefaultHideSelectors lists site chrome hidden when printing a live hymn page.
var DefaultHideSelectors = []string{
	".action-buttons", ".no-print", "nav:not(.breadcrumb)", ".navbar", "header nav",
	"footer", ".sidebar", ".hymnal-index", "button:not(.print-keep)", ".btn",
	`[role="button"]`, ".related-hymns", ".floating-action", ".mobile-menu",
}

// SamplingPolicy bounds how many hymn sections a collection document holds.
// Collections with at most FullThreshold hymns are included whole; larger
// ones are cut to the first SampleSize hymns. FullThreshold <= 0 disables
// sampling.
type SamplingPolicy struct {
	FullThreshold int
	SampleSize    int
}

// DefaultSamplingPolicy includes small collections (<= 20) whole and
// samples the first 10 hymns of larger ones.
func DefaultSamplingPolicy() SamplingPolicy {
	return SamplingPolicy{FullThreshold: 20, SampleSize: 10}
}

// Included returns the number of hymn sections included out of total.
func (p SamplingPolicy) Included(total int) int {
	if p.FullThreshold <= 0 || total <= p.FullThreshold {
		return total
	}
	if p.SampleSize <= 0 || p.SampleSize >= total {
		return total
	}
	return p.SampleSize
}

// BuilderConfig configures a Builder. Zero values take defaults.
type BuilderConfig struct {
	BaseURL       string // content source, e.g. http://localhost:3000
	SiteLabel     string
	Sampling      *SamplingPolicy // nil takes DefaultSamplingPolicy
	ContentsLimit int
	ContentMarker string
	HideSelectors []string
	DateFormat    string
	Page          *PageSettings
	InlineHymns   bool // build hymn documents from data instead of the live page
	Now           func() time.Time
}

// NoteRenderer turns a collection note into HTML.
type NoteRenderer interface {
	Render(markdown string) (string, error)
}

// Builder constructs Documents from hymn and collection records.
// It performs no I/O and is safe to call from tests without a browser.
type Builder struct {
	cfg    BuilderConfig
	notes  NoteRenderer
	logger *zap.Logger
}

// NewBuilder creates a Builder, filling unset fields with defaults.
func NewBuilder(cfg BuilderConfig, logger *zap.Logger) *Builder {
	if cfg.SiteLabel == "" {
		cfg.SiteLabel = DefaultSiteLabel
	}
	if cfg.Sampling == nil {
		p := DefaultSamplingPolicy()
		cfg.Sampling = &p
	}
	if cfg.ContentsLimit <= 0 {
		cfg.ContentsLimit = DefaultContentsLimit
	}
	if cfg.ContentMarker == "" {
		cfg.ContentMarker = DefaultContentMarker
	}
	if cfg.HideSelectors == nil {
		cfg.HideSelectors = DefaultHideSelectors
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	if cfg.Page == nil {
		cfg.Page = DefaultPageSettings()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		cfg:    cfg,
		notes:  pipeline.NewNoteConverter(),
		logger: logger,
	}
}

// Sampling returns the policy used for collection documents.
func (b *Builder) Sampling() SamplingPolicy {
	return *b.cfg.Sampling
}

// HymnURL returns the public page of a hymn on the content source.
func (b *Builder) HymnURL(collection CollectionRef, hymn HymnSummary) string {
	base := strings.TrimRight(b.cfg.BaseURL, "/")
	page := "hymn-" + strconv.Itoa(hymn.Number)
	if s := Slugify(hymn.Title); s != "" {
		page += "-" + s
	}
	return base + "/" + collection.Slug + "/" + page
}

// BuildSingleHymnDocument builds the document for one hymn. By default it
// is sourced from the hymn's live page; with InlineHymns it is assembled
// from the record. The hymn section is filled either way.
func (b *Builder) BuildSingleHymnDocument(hymn HymnRecord, collection CollectionRef) *Document {
	doc := &Document{
		Kind:       KindSingleHymn,
		Title:      hymn.Title,
		Collection: collection,
		Hymns:      []HymnSection{buildHymnSection(hymn)},
		Rules: PresentationRules{
			Header: fmt.Sprintf("%s - %s #%d", hymn.Title, collection.DisplayName(), hymn.Number),
			Footer: b.cfg.SiteLabel,
			Page:   *b.cfg.Page,
		},
	}

	if b.cfg.InlineHymns {
		doc.Rules.Style = assets.StyleCollection
		return doc
	}

	doc.SourceURL = b.HymnURL(collection, hymn.HymnSummary)
	doc.Rules.Style = assets.StyleHymn
	doc.Rules.HideSelectors = append([]string(nil), b.cfg.HideSelectors...)
	doc.Rules.ContentMarker = b.cfg.ContentMarker
	return doc
}

// BuildCollectionDocument builds the assembled document for a whole
// collection: title page, table of contents, sampled hymn sections and a
// sampling note when hymns were left out.
func (b *Builder) BuildCollectionDocument(collection CollectionRef, hymns []HymnRecord) *Document {
	doc := &Document{
		Kind:       KindCollection,
		Title:      collection.DisplayName(),
		Collection: collection,
		TitlePage:  b.buildTitle(collection, len(hymns)),
		Contents:   b.buildContents(hymns),
		Rules: PresentationRules{
			Style:              assets.StyleCollection,
			BreakBetweenHymns:  true,
			BreakAfterContents: true,
			Header:             fmt.Sprintf("%s (%d)", collection.DisplayName(), collection.Year),
			Footer:             b.cfg.SiteLabel,
			Page:               *b.cfg.Page,
		},
	}

	included := b.cfg.Sampling.Included(len(hymns))
	doc.Hymns = make([]HymnSection, 0, included)
	for i, h := range hymns[:included] {
		section := buildHymnSection(h)
		section.BreakBefore = i > 0
		doc.Hymns = append(doc.Hymns, section)
	}

	if included < len(hymns) {
		doc.Sample = &SampleNote{
			Included:  included,
			Total:     len(hymns),
			Remaining: len(hymns) - included,
			Name:      collection.DisplayName(),
			SiteLabel: b.cfg.SiteLabel,
		}
	}
	return doc
}

func (b *Builder) buildTitle(collection CollectionRef, loaded int) *TitleSection {
	count := collection.TotalSongs
	if count == 0 {
		count = loaded
	}

	generated, err := dateutil.Format(b.cfg.Now(), b.cfg.DateFormat)
	if err != nil {
		generated = b.cfg.Now().Format("2006-01-02")
	}

	var note string
	if strings.TrimSpace(collection.Note) != "" {
		note, err = b.notes.Render(collection.Note)
		if err != nil {
			b.logger.Warn("could not render collection note",
				zap.String("collection", collection.ID), zap.Error(err))
			note = ""
		}
	}

	return &TitleSection{
		Name:      collection.DisplayName(),
		Year:      collection.Year,
		HymnCount: count,
		Language:  collection.LanguageLabel(),
		Compiler:  collection.Compiler,
		NoteHTML:  note,
		Generated: generated,
		SiteLabel: b.cfg.SiteLabel,
	}
}

func (b *Builder) buildContents(hymns []HymnRecord) *ContentsSection {
	if len(hymns) == 0 {
		return nil
	}
	n := min(len(hymns), b.cfg.ContentsLimit)
	entries := make([]ContentsEntry, n)
	for i, h := range hymns[:n] {
		entries[i] = ContentsEntry{Number: h.Number, Title: h.Title}
	}
	return &ContentsSection{
		Title:   contentsTitle,
		Entries: entries,
		More:    len(hymns) - n,
	}
}

// buildHymnSection fills a section from whatever data the record carries.
func buildHymnSection(h HymnRecord) HymnSection {
	s := HymnSection{
		Number:   h.Number,
		Title:    h.Title,
		Author:   h.AuthorName(),
		Composer: h.ComposerName(),
		Tune:     h.TuneName(),
		Meter:    h.MeterName(),
		Blocks:   SelectBlocks(h),
	}
	if h.Detail != nil && h.Detail.Metadata != nil {
		md := h.Detail.Metadata
		s.Themes = append([]string(nil), md.Themes...)
		s.Scripture = append([]string(nil), md.ScriptureReferences...)
		s.Copyright = md.Copyright
	}
	return s
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// SelectBlocks picks the hymn's text in priority order: verses, stanzas,
// plain lyrics split on blank lines, and finally a placeholder. The result
// is never empty.
func SelectBlocks(h HymnRecord) []TextBlock {
	if d := h.Detail; d != nil {
		if blocks := numberedBlocks(d.Verses, BlockVerse, d.Chorus); len(blocks) > 0 {
			return blocks
		}
		if blocks := numberedBlocks(d.Stanzas, BlockStanza, d.Chorus); len(blocks) > 0 {
			return blocks
		}
		if blocks := lyricBlocks(d.Lyrics); len(blocks) > 0 {
			return blocks
		}
	}
	return []TextBlock{{Kind: BlockPlaceholder, Lines: []string{placeholderText}}}
}

// numberedBlocks converts verses or stanzas, placing the chorus after the
// first block. Blank entries are dropped.
func numberedBlocks(verses []Verse, kind BlockKind, chorus *Chorus) []TextBlock {
	var blocks []TextBlock
	for i, v := range verses {
		if strings.TrimSpace(v.Text) == "" {
			continue
		}
		num := v.Number
		if num == 0 {
			num = i + 1
		}
		blocks = append(blocks, TextBlock{Kind: kind, Number: num, Lines: splitLines(v.Text)})
		if len(blocks) == 1 && chorus != nil && strings.TrimSpace(chorus.Text) != "" {
			blocks = append(blocks, TextBlock{Kind: BlockChorus, Lines: splitLines(chorus.Text)})
		}
	}
	return blocks
}

func lyricBlocks(lyrics string) []TextBlock {
	lyrics = normalizeNewlines(lyrics)
	var blocks []TextBlock
	for _, part := range blankLines.Split(lyrics, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		blocks = append(blocks, TextBlock{Kind: BlockLyrics, Lines: splitLines(part)})
	}
	return blocks
}

func splitLines(text string) []string {
	text = strings.Trim(normalizeNewlines(text), "\n")
	return strings.Split(text, "\n")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
