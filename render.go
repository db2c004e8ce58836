package hymnpdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-hymnpdf/internal/process"
)

// Renderer turns a Document into PDF bytes. Implementations may hold a
// long-lived session; Close releases it and is safe to call more than once.
type Renderer interface {
	Render(ctx context.Context, doc *Document) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ Renderer = (*RodRenderer)(nil)

// Viewport used before navigation, matching the site's desktop layout.
const (
	viewportWidth  = 1200
	viewportHeight = 1600
	viewportScale  = 2
)

// RenderOptions tunes the browser renderer. Zero durations take the
// DefaultRenderOptions values; a negative settle disables that delay.
type RenderOptions struct {
	NavigationTimeout time.Duration // page navigation and load
	MarkerTimeout     time.Duration // content marker wait, non-fatal
	HymnSettle        time.Duration // layout settle after styling a live page
	CollectionSettle  time.Duration // layout settle for assembled documents
}

// DefaultRenderOptions returns the timeouts used for the hymnal site.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		NavigationTimeout: 60 * time.Second,
		MarkerTimeout:     15 * time.Second,
		HymnSettle:        1500 * time.Millisecond,
		CollectionSettle:  3 * time.Second,
	}
}

func (o RenderOptions) withDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = d.NavigationTimeout
	}
	if o.MarkerTimeout <= 0 {
		o.MarkerTimeout = d.MarkerTimeout
	}
	o.HymnSettle = settleOrDefault(o.HymnSettle, d.HymnSettle)
	o.CollectionSettle = settleOrDefault(o.CollectionSettle, d.CollectionSettle)
	return o
}

func settleOrDefault(v, def time.Duration) time.Duration {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	}
	return v
}

// RodRenderer renders documents in headless Chrome via go-rod.
// One browser is launched lazily and shared by every Render call; each
// document gets its own page. Not safe for concurrent use.
type RodRenderer struct {
	opts    RenderOptions
	markup  *Markup
	logger  *zap.Logger
	browser *rod.Browser
	launch  *launcher.Launcher
}

// NewRodRenderer creates a renderer serializing documents with markup,
// which must not be nil. The browser is not started until the first Render
// call.
func NewRodRenderer(opts RenderOptions, markup *Markup, logger *zap.Logger) *RodRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodRenderer{
		opts:   opts.withDefaults(),
		markup: markup,
		logger: logger,
	}
}

// NewLauncher configures the Chrome launcher from the environment:
// ROD_BROWSER_BIN selects the binary, ROD_NO_SANDBOX=1 or CI=true disable
// the sandbox.
func NewLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		Set(flags.Flag("disable-dev-shm-usage")).
		Set(flags.Flag("disable-gpu"))

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}
	return l
}

// ensureBrowser lazily launches and connects to the browser.
func (r *RodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := NewLauncher()
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	r.launch = l
	r.logger.Debug("browser started", zap.Int("pid", l.PID()))
	return nil
}

// Close shuts the browser down and kills its process tree.
func (r *RodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	r.browser = nil

	if r.launch != nil {
		process.KillProcessGroup(r.launch.PID())
		r.launch.Kill()
		r.launch.Cleanup()
		r.launch = nil
	}
	r.logger.Debug("browser closed")
	return err
}

// Render produces the PDF for doc on a fresh page. Panics raised by the
// browser driver are returned as ErrPDFGeneration.
func (r *RodRenderer) Render(ctx context.Context, doc *Document) (pdf []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pdf = nil
			err = fmt.Errorf("%w: browser panic: %v", ErrPDFGeneration, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: viewportScale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	settle := r.opts.CollectionSettle
	if doc.SourceURL != "" {
		if err := r.loadLive(ctx, page, doc); err != nil {
			return nil, err
		}
		settle = r.opts.HymnSettle
	} else if err := r.loadAssembled(page, doc); err != nil {
		return nil, err
	}

	css, err := r.markup.Stylesheet(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.AddStyleTag("", css); err != nil {
		return nil, fmt.Errorf("%w: injecting styles: %v", ErrPageLoad, err)
	}

	if err := sleepCtx(ctx, settle); err != nil {
		return nil, err
	}

	opts, err := r.pdfOptions(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	reader, err := page.PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err = io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// loadLive navigates to the document's page and waits for its content
// marker. A marker that never shows up is logged and the page is printed
// as it is.
func (r *RodRenderer) loadLive(ctx context.Context, page *rod.Page, doc *Document) error {
	nav := page.Timeout(r.opts.NavigationTimeout)
	err := nav.Navigate(doc.SourceURL)
	if err == nil {
		err = nav.WaitLoad()
	}
	nav.CancelTimeout()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPageLoad, doc.SourceURL, err)
	}

	if doc.Rules.ContentMarker == "" {
		return nil
	}
	wait := page.Timeout(r.opts.MarkerTimeout)
	_, err = wait.Element(doc.Rules.ContentMarker)
	wait.CancelTimeout()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.logger.Warn("content marker not found, printing page as loaded",
			zap.String("url", doc.SourceURL),
			zap.Duration("timeout", r.opts.MarkerTimeout),
			zap.Error(err))
	}
	return nil
}

// loadAssembled replaces the blank page with the serialized document.
func (r *RodRenderer) loadAssembled(page *rod.Page, doc *Document) error {
	html, err := r.markup.HTML(doc)
	if err != nil {
		return err
	}

	p := page.Timeout(r.opts.NavigationTimeout)
	defer p.CancelTimeout()
	if err := p.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: setting content: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

// pdfOptions builds the print settings: fixed margins, background colours
// kept, header and footer from the document rules.
func (r *RodRenderer) pdfOptions(doc *Document) (*proto.PagePrintToPDF, error) {
	page := doc.Rules.Page
	if err := page.Validate(); err != nil {
		return nil, err
	}
	width, height := page.dimensions()

	header, footer, err := r.markup.HeaderFooter(doc)
	if err != nil {
		return nil, err
	}

	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(width),
		PaperHeight:         floatPtr(height),
		MarginTop:           floatPtr(page.Margin),
		MarginBottom:        floatPtr(page.Margin),
		MarginLeft:          floatPtr(page.Margin),
		MarginRight:         floatPtr(page.Margin),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      header,
		FooterTemplate:      footer,
	}, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// isContextErr reports whether err comes from cancellation or a run deadline.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
