package hymnpdf

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestRenderOptions_withDefaults
// ---------------------------------------------------------------------------

func TestRenderOptions_withDefaults(t *testing.T) {
	t.Parallel()

	def := DefaultRenderOptions()

	tests := []struct {
		name string
		in   RenderOptions
		want RenderOptions
	}{
		{"zero takes defaults", RenderOptions{}, def},
		{"negative settle disables delay", RenderOptions{HymnSettle: -time.Second, CollectionSettle: -1}, RenderOptions{
			NavigationTimeout: def.NavigationTimeout,
			MarkerTimeout:     def.MarkerTimeout,
		}},
		{"negative timeout takes default", RenderOptions{NavigationTimeout: -1, MarkerTimeout: -1, HymnSettle: time.Millisecond}, RenderOptions{
			NavigationTimeout: def.NavigationTimeout,
			MarkerTimeout:     def.MarkerTimeout,
			HymnSettle:        time.Millisecond,
			CollectionSettle:  def.CollectionSettle,
		}},
		{"explicit values kept", RenderOptions{
			NavigationTimeout: time.Second,
			MarkerTimeout:     2 * time.Second,
			HymnSettle:        3 * time.Second,
			CollectionSettle:  4 * time.Second,
		}, RenderOptions{
			NavigationTimeout: time.Second,
			MarkerTimeout:     2 * time.Second,
			HymnSettle:        3 * time.Second,
			CollectionSettle:  4 * time.Second,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRodRenderer_pdfOptions
// ---------------------------------------------------------------------------

func TestRodRenderer_pdfOptions(t *testing.T) {
	t.Parallel()

	r := NewRodRenderer(RenderOptions{}, newTestMarkup(t), nil)

	tests := []struct {
		name       string
		page       PageSettings
		wantWidth  float64
		wantHeight float64
		wantErr    error
	}{
		{"letter", PageSettings{Size: "letter", Margin: 0.75}, 8.5, 11, nil},
		{"a4 upper case", PageSettings{Size: "A4", Margin: 0.5}, 8.27, 11.69, nil},
		{"legal", PageSettings{Size: "legal", Margin: 1}, 8.5, 14, nil},
		{"unknown size", PageSettings{Size: "tabloid", Margin: 1}, 0, 0, ErrInvalidPageSize},
		{"margin too small", PageSettings{Size: "letter", Margin: 0.1}, 0, 0, ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := &Document{Rules: PresentationRules{Header: "Hymn", Footer: "site", Page: tt.page}}
			opts, err := r.pdfOptions(doc)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *opts.PaperWidth != tt.wantWidth || *opts.PaperHeight != tt.wantHeight {
				t.Errorf("paper = %vx%v, want %vx%v", *opts.PaperWidth, *opts.PaperHeight, tt.wantWidth, tt.wantHeight)
			}
			for name, m := range map[string]*float64{
				"top": opts.MarginTop, "bottom": opts.MarginBottom, "left": opts.MarginLeft, "right": opts.MarginRight,
			} {
				if *m != tt.page.Margin {
					t.Errorf("margin %s = %v, want %v", name, *m, tt.page.Margin)
				}
			}
			if !opts.PrintBackground || !opts.DisplayHeaderFooter {
				t.Error("PrintBackground and DisplayHeaderFooter must be set")
			}
			if opts.HeaderTemplate == "" || opts.FooterTemplate == "" {
				t.Error("header and footer templates must be set")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRodRenderer_Render - Paths that never reach the browser
// ---------------------------------------------------------------------------

func TestRodRenderer_Render_NoBrowser(t *testing.T) {
	t.Parallel()

	r := NewRodRenderer(RenderOptions{}, newTestMarkup(t), nil)
	defer func() { _ = r.Close() }()

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.Render(ctx, &Document{}); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("nil document", func(t *testing.T) {
		if _, err := r.Render(context.Background(), nil); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("error = %v, want ErrEmptyDocument", err)
		}
	})
}

func TestRodRenderer_Close_Idempotent(t *testing.T) {
	t.Parallel()

	r := NewRodRenderer(RenderOptions{}, newTestMarkup(t), nil)
	for i := range 3 {
		if err := r.Close(); err != nil {
			t.Errorf("Close() #%d error = %v", i+1, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestSleepCtx
// ---------------------------------------------------------------------------

func TestSleepCtx(t *testing.T) {
	t.Parallel()

	t.Run("zero duration", func(t *testing.T) {
		t.Parallel()
		if err := sleepCtx(context.Background(), 0); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("short wait", func(t *testing.T) {
		t.Parallel()
		if err := sleepCtx(context.Background(), time.Millisecond); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("canceled returns early", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := sleepCtx(ctx, time.Minute)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if time.Since(start) > 5*time.Second {
			t.Error("sleepCtx did not return on cancellation")
		}
	})
}

func TestIsContextErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{context.Canceled, true},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), true},
		{ErrPageLoad, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := isContextErr(tt.err); got != tt.want {
			t.Errorf("isContextErr(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
