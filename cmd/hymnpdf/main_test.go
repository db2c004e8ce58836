package main

// Notes:
// - runMain: we test dispatch and exit codes end to end with an in-process
//   content site and a fake renderer. Real browser rendering is covered by
//   the root package integration tests.
// - Tests that set HYMNPDF_* variables run sequentially.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	hymnpdf "github.com/alnah/go-hymnpdf"
)

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Command routing and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, ExitUsage, "", "Usage: hymnpdf"},
		{"version", []string{"version"}, ExitSuccess, "hymnpdf dev", ""},
		{"--version", []string{"--version"}, ExitSuccess, "hymnpdf dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help hymns", []string{"help", "hymns"}, ExitSuccess, "Usage: hymnpdf hymns", ""},
		{"help unknown", []string{"help", "nope"}, ExitUsage, "", "Unknown command: nope"},
		{"unknown command", []string{"convert"}, ExitUsage, "", "Unknown command: convert"},
		{"bad flag", []string{"hymns", "--no-such-flag"}, ExitUsage, "", "error:"},
		{"two filters", []string{"hymns", "SDAH", "CS1900"}, ExitUsage, "", "at most one filter"},
		{"index with argument", []string{"index", "extra"}, ExitUsage, "", "no arguments"},
		{"hymns --help", []string{"hymns", "--help"}, ExitSuccess, "", "Usage: hymnpdf hymns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(&fakeRenderer{})

			code := runMain(tt.args, env.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", env.stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Collections - Full collection run
// ---------------------------------------------------------------------------

func TestRunMain_Collections(t *testing.T) {
	t.Parallel()

	data := writeDataSet(t)
	out := filepath.Join(t.TempDir(), "pdfs")
	renderer := &fakeRenderer{}
	env := newTestEnv(renderer)

	code := runMain([]string{"collections",
		"--config", writeFastConfig(t),
		"--data-dir", data,
		"--base-url", liveSource(t),
		"-o", out,
	}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, env.stderr)
	}

	dir := filepath.Join(out, "complete-hymnals")
	want := []string{"christ-in-song-complete.pdf", "seventh-day-adventist-hymnal-complete.pdf"}
	if diff := cmp.Diff(want, pdfNames(t, dir)); diff != "" {
		t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(env.stdout.String(), "Generated: 2") {
		t.Errorf("summary missing from stdout: %q", env.stdout)
	}
	if !renderer.closed {
		t.Error("renderer was not closed")
	}

	m, err := hymnpdf.ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Count != 2 || m.Type != "complete_hymnals" {
		t.Errorf("manifest count/type = %d/%q, want 2/complete_hymnals", m.Count, m.Type)
	}
	for _, e := range m.PDFs {
		if !strings.HasPrefix(e.URL, "/pdfs/complete-hymnals/") {
			t.Errorf("entry URL = %q, want /pdfs/complete-hymnals/ prefix", e.URL)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Hymns - Filtered hymn run, then idempotent rerun
// ---------------------------------------------------------------------------

func TestRunMain_Hymns(t *testing.T) {
	t.Parallel()

	data := writeDataSet(t)
	out := t.TempDir()
	source := liveSource(t)
	cfg := writeFastConfig(t)
	args := []string{"hymns", "adventist", "--config", cfg, "--data-dir", data, "--base-url", source, "-o", out}

	env := newTestEnv(&fakeRenderer{})
	if code := runMain(args, env.Environment); code != ExitSuccess {
		t.Fatalf("first run exit code = %d (stderr: %s)", code, env.stderr)
	}

	want := []string{
		"seventh-day-adventist-hymnal-1.pdf",
		"seventh-day-adventist-hymnal-2.pdf",
		"seventh-day-adventist-hymnal-3.pdf",
	}
	if diff := cmp.Diff(want, pdfNames(t, out)); diff != "" {
		t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
	}

	renderer := &fakeRenderer{}
	env = newTestEnv(renderer)
	if code := runMain(args, env.Environment); code != ExitSuccess {
		t.Fatalf("second run exit code = %d (stderr: %s)", code, env.stderr)
	}
	if len(renderer.titles) != 0 {
		t.Errorf("second run rendered %d documents, want 0", len(renderer.titles))
	}
	if !strings.Contains(env.stdout.String(), "Skipped:   3") {
		t.Errorf("second run summary = %q, want 3 skipped", env.stdout)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_SourceUnreachable - Nothing happens without the content site
// ---------------------------------------------------------------------------

func TestRunMain_SourceUnreachable(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "pdfs")
	renderer := &fakeRenderer{}
	env := newTestEnv(renderer)

	code := runMain([]string{"hymns",
		"--config", writeFastConfig(t),
		"--data-dir", writeDataSet(t),
		"--base-url", deadSource(t),
		"-o", out,
	}, env.Environment)

	if code != ExitFatal {
		t.Errorf("exit code = %d, want %d", code, ExitFatal)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output directory exists after failed liveness check: %v", err)
	}
	if len(renderer.titles) != 0 {
		t.Errorf("rendered %d documents, want 0", len(renderer.titles))
	}
	if !strings.Contains(env.stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want a hint", env.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_FatalErrors - Run-level failures exit 1 with a hint
// ---------------------------------------------------------------------------

func TestRunMain_FatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       func(t *testing.T) []string
		renderer   hymnpdf.Renderer
		wantStderr string
	}{
		{
			name: "no match lists available ids",
			args: func(t *testing.T) []string {
				return []string{"collections", "zzz", "--data-dir", writeDataSet(t)}
			},
			renderer:   &fakeRenderer{},
			wantStderr: "available: SDAH, CS1900",
		},
		{
			name: "catalog missing",
			args: func(t *testing.T) []string {
				return []string{"hymns", "--data-dir", t.TempDir()}
			},
			renderer:   &fakeRenderer{},
			wantStderr: "hymnals-reference.json",
		},
		{
			name: "browser unavailable",
			args: func(t *testing.T) []string {
				return []string{"collections", "SDAH", "--data-dir", writeDataSet(t)}
			},
			renderer:   brokenRenderer{},
			wantStderr: "browser",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(tt.renderer)
			args := append(tt.args(t),
				"--config", writeFastConfig(t),
				"--base-url", liveSource(t),
				"-o", t.TempDir())

			code := runMain(args, env.Environment)

			if code != ExitFatal {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, ExitFatal, env.stderr)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ConfigErrors - Configuration problems exit 2
// ---------------------------------------------------------------------------

func TestRunMain_ConfigErrors(t *testing.T) {
	t.Parallel()

	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, badConfig, "render:\n  retries: 99\n")
	unknownField := filepath.Join(t.TempDir(), "unknown.yaml")
	writeFile(t, unknownField, "render:\n  workers: 4\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing config file", []string{"hymns", "--config", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"invalid value", []string{"hymns", "--config", badConfig}},
		{"unknown field", []string{"collections", "--config", unknownField}},
		{"bad base url", []string{"hymns", "--base-url", "ftp://example.com"}},
		{"bad timeout", []string{"hymns", "--timeout", "soon"}},
		{"negative limit", []string{"hymns", "--limit", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(&fakeRenderer{})

			if code := runMain(tt.args, env.Environment); code != ExitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, ExitUsage, env.stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Index - Manifest rebuild from disk
// ---------------------------------------------------------------------------

func TestRunMain_Index(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	writeFile(t, filepath.Join(out, "seventh-day-adventist-hymnal-2.pdf"), "%PDF-1.7")
	writeFile(t, filepath.Join(out, "seventh-day-adventist-hymnal-10.pdf"), "%PDF-1.7")
	env := newTestEnv(&fakeRenderer{})

	code := runMain([]string{"index", "--data-dir", writeDataSet(t), "-o", out}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, env.stderr)
	}
	if !strings.Contains(env.stdout.String(), "Indexed 2 artifacts") {
		t.Errorf("stdout = %q", env.stdout)
	}

	data, err := os.ReadFile(filepath.Join(out, hymnpdf.ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	var m hymnpdf.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	var numbers []int
	for _, e := range m.PDFs {
		numbers = append(numbers, e.Number)
		if e.CollectionID != "SDAH" {
			t.Errorf("%s collection_id = %q, want SDAH", e.Filename, e.CollectionID)
		}
	}
	if diff := cmp.Diff([]int{2, 10}, numbers); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMain_Index_MissingDirectory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(&fakeRenderer{})
	out := filepath.Join(t.TempDir(), "nope")

	code := runMain([]string{"index", "--data-dir", t.TempDir(), "-o", out}, env.Environment)

	if code != ExitFatal {
		t.Errorf("exit code = %d, want %d", code, ExitFatal)
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - Raw argument scan
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"hymns"}, false},
		{[]string{"hymns", "-v"}, true},
		{[]string{"collections", "--verbose", "SDAH"}, true},
		{[]string{"hymns", "--verbosity"}, false},
	}
	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
