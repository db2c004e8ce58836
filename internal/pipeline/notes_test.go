package pipeline

import (
	"strings"
	"testing"
)

func TestNoteConverter_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		contains   []string
		notContain []string
	}{
		{
			name:     "paragraph",
			input:    "First published in 1941.",
			contains: []string{"<p>First published in 1941.</p>"},
		},
		{
			name:     "emphasis and links",
			input:    "Edited by *the committee*, see [the preface](https://example.org).",
			contains: []string{"<em>the committee</em>", `<a href="https://example.org">the preface</a>`},
		},
		{
			name:     "hard wraps",
			input:    "line one\nline two",
			contains: []string{"line one<br />"},
		},
		{
			name:       "raw html is dropped",
			input:      "<script>alert(1)</script>\n\nplain",
			contains:   []string{"<p>plain</p>"},
			notContain: []string{"<script>"},
		},
		{
			name:     "empty input",
			input:    "",
			contains: nil,
		},
	}

	conv := NewNoteConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.Render(tt.input)
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q in %q", want, got)
				}
			}
			for _, bad := range tt.notContain {
				if strings.Contains(got, bad) {
					t.Errorf("Render() should not contain %q in %q", bad, got)
				}
			}
		})
	}
}
