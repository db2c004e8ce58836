package hymnpdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Data Set Fixtures
// ---------------------------------------------------------------------------

// fixtureCollection describes one collection written to a temp data set.
type fixtureCollection struct {
	ref     CollectionRef
	hymns   []HymnSummary
	details map[string]HymnDetail // by hymn id; hymns without an entry get no file
	noList  bool                  // skip writing the hymn list
}

// newFixture builds a collection of n hymns numbered 1..n, each with a
// two-verse detail record.
func newFixture(id, slug, name string, n int) fixtureCollection {
	fc := fixtureCollection{
		ref:     CollectionRef{ID: id, Slug: slug, Name: name, Year: 1941, Language: "en", TotalSongs: n},
		details: make(map[string]HymnDetail, n),
	}
	for i := 1; i <= n; i++ {
		hid := fmt.Sprintf("%s-en-%03d", id, i)
		title := fmt.Sprintf("Hymn Title %d", i)
		fc.hymns = append(fc.hymns, HymnSummary{ID: hid, Number: i, Title: title})
		fc.details[hid] = HymnDetail{
			ID:     hid,
			Number: i,
			Title:  title,
			Verses: []Verse{
				{Number: 1, Text: "First line\nSecond line"},
				{Number: 2, Text: "Third line\nFourth line"},
			},
		}
	}
	return fc
}

// writeDataSet writes the catalog, hymn lists and details under a temp dir
// and returns it. The catalog keeps the given collection order.
func writeDataSet(t *testing.T, collections ...fixtureCollection) string {
	t.Helper()
	dir := t.TempDir()

	var catalog bytes.Buffer
	catalog.WriteString(`{"version":"1","hymnals":{`)
	for i, fc := range collections {
		if i > 0 {
			catalog.WriteByte(',')
		}
		fmt.Fprintf(&catalog, "%q:%s", fc.ref.ID, mustJSON(t, fc.ref))
	}
	catalog.WriteString(`}}`)
	writeFile(t, filepath.Join(dir, catalogFile), catalog.Bytes())

	for _, fc := range collections {
		if !fc.noList {
			list := mustJSON(t, collectionFile{Hymns: fc.hymns})
			writeFile(t, filepath.Join(dir, collectionsDir, fc.ref.ID+collectionSuffix), list)
		}
		for hid, d := range fc.details {
			writeFile(t, filepath.Join(dir, hymnDetailsDir, fc.ref.ID, hid+hymnDetailSuffix), mustJSON(t, d))
		}
	}
	return dir
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// fixedNow returns a clock frozen at 2026-03-15 10:00 UTC.
func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Mock Renderer
// ---------------------------------------------------------------------------

// mockRenderer returns deterministic bytes derived from the document.
type mockRenderer struct {
	mu     sync.Mutex
	docs   []*Document
	calls  int
	closed int

	// failFor returns an error for a document, or nil to succeed.
	failFor func(doc *Document, call int) error
	// onRender runs before each render, e.g. to cancel the run.
	onRender func(call int)
}

func (m *mockRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.docs = append(m.docs, doc)
	m.mu.Unlock()

	if m.onRender != nil {
		m.onRender(call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failFor != nil {
		if err := m.failFor(doc, call); err != nil {
			return nil, err
		}
	}
	return []byte(fmt.Sprintf("%%PDF-1.7 %s %d sections", doc.Title, len(doc.Hymns))), nil
}

func (m *mockRenderer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (m *mockRenderer) renderCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
