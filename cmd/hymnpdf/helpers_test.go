package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	hymnpdf "github.com/alnah/go-hymnpdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment, data set and renderer
// ---------------------------------------------------------------------------

// fakeRenderer returns a small deterministic PDF for every document.
type fakeRenderer struct {
	mu     sync.Mutex
	titles []string
	closed bool
}

func (r *fakeRenderer) Render(_ context.Context, doc *hymnpdf.Document) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, doc.Title)
	return []byte("%PDF-1.7 " + doc.Title), nil
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// brokenRenderer simulates a browser that cannot start.
type brokenRenderer struct{}

func (brokenRenderer) Render(context.Context, *hymnpdf.Document) ([]byte, error) {
	return nil, fmt.Errorf("%w: no chrome", hymnpdf.ErrBrowserConnect)
}

func (brokenRenderer) Close() error { return nil }

// testEnv captures output and injects renderer.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(renderer hymnpdf.Renderer) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Environment: &Environment{
			Now:        func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) },
			Stdout:     stdout,
			Stderr:     stderr,
			HTTPClient: &http.Client{},
			NewRenderer: func(hymnpdf.RenderOptions, *hymnpdf.Markup, *zap.Logger) hymnpdf.Renderer {
				return renderer
			},
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// liveSource starts a content site answering every request with 200.
func liveSource(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// deadSource returns the URL of a server that is no longer listening.
func deadSource(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// writeDataSet writes a catalog with two collections: SDAH (3 hymns) and
// CS1900 (2 hymns, no details).
func writeDataSet(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	catalog := `{"hymnals": {
  "SDAH": {"id": "SDAH", "name": "Seventh-day Adventist Hymnal", "year": 1985, "language": "en", "total_songs": 3, "url_slug": "seventh-day-adventist-hymnal"},
  "CS1900": {"id": "CS1900", "name": "Christ in Song", "year": 1900, "language": "en", "total_songs": 2, "url_slug": "christ-in-song"}
}}`
	writeFile(t, filepath.Join(dir, "metadata", "hymnals-reference.json"), catalog)

	writeCollection(t, dir, "SDAH", 3)
	writeCollection(t, dir, "CS1900", 2)
	writeFile(t, filepath.Join(dir, "hymns", "SDAH", "SDAH-en-001.json"),
		`{"id": "SDAH-en-001", "number": 1, "title": "Praise to the Lord", "verses": [{"number": 1, "text": "Praise to the Lord"}]}`)
	return dir
}

func writeCollection(t *testing.T, dir, id string, n int) {
	t.Helper()
	type entry struct {
		ID     string `json:"hymn_id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
	}
	hymns := make([]entry, n)
	for i := range hymns {
		hymns[i] = entry{ID: fmt.Sprintf("%s-en-%03d", id, i+1), Number: i + 1, Title: fmt.Sprintf("Hymn %d", i+1)}
	}
	data, err := json.Marshal(map[string]any{"hymns": hymns})
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "hymnals", id+"-collection.json"), string(data))
}

// writeFastConfig writes a config without pacing or retries.
func writeFastConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hymnpdf.yaml")
	writeFile(t, path, `render:
  hymnPacing: 0s
  collectionPacing: 0s
  retries: 0
`)
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// pdfNames lists the PDF files in dir, sorted.
func pdfNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".pdf") {
			names = append(names, e.Name())
		}
	}
	return names
}
