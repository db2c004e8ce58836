package hymnpdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-hymnpdf/internal/fileutil"
)

// Mode selects which artifacts a run produces.
type Mode int

const (
	ModeHymns       Mode = iota // one PDF per hymn, from its live page
	ModeCollections             // one assembled PDF per collection
)

// String returns the CLI command name of the mode.
func (m Mode) String() string {
	if m == ModeCollections {
		return "collections"
	}
	return "hymns"
}

// FilterAll selects every collection.
const FilterAll = "all"

// Job describes one run.
type Job struct {
	Mode   Mode
	Filter string // "all" or empty for every collection
	Force  bool   // regenerate existing artifacts
	Limit  int    // hymns per collection, or collections; 0 means no cap
}

// NoMatchError reports a filter that selected no collection.
type NoMatchError struct {
	Filter    string
	Available []string // collection ids in catalog order
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%v: %q", ErrNoMatch, e.Filter)
}

// Unwrap lets errors.Is match ErrNoMatch.
func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// OrchestratorConfig configures output layout and pacing.
type OrchestratorConfig struct {
	OutputDir         string
	CollectionsSubdir string // below OutputDir; empty writes collections to OutputDir
	URLPrefix         string // public path of OutputDir

	HymnPacing       time.Duration
	CollectionPacing time.Duration
	Retries          int // extra attempts after a failed render
	RetryBackoff     time.Duration

	LoadDetails bool // read hymn detail records in hymns mode
	Now         func() time.Time
}

// Orchestrator runs the batch: select collections, skip existing artifacts,
// render the rest one at a time, and rebuild the manifest.
type Orchestrator struct {
	catalog   CatalogSource
	assembler *Assembler
	builder   *Builder
	renderer  Renderer
	cfg       OrchestratorConfig
	logger    *zap.Logger
}

// NewOrchestrator wires the pipeline. The renderer is owned by the caller,
// which closes it after Run returns.
func NewOrchestrator(catalog CatalogSource, hymns HymnSource, builder *Builder, renderer Renderer,
	cfg OrchestratorConfig, logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Orchestrator{
		catalog:   catalog,
		assembler: NewAssembler(hymns, logger),
		builder:   builder,
		renderer:  renderer,
		cfg:       cfg,
		logger:    logger,
	}
}

// workItem is one selected artifact. Collection items assemble their hymns
// lazily so skipped collections cost nothing.
type workItem struct {
	collection CollectionRef
	hymn       *HymnRecord // nil for collection documents
	path       string
}

func (w workItem) outcome() ItemOutcome {
	o := ItemOutcome{Collection: w.collection.ID, State: StatePending}
	if w.hymn != nil {
		o.Number = w.hymn.Number
		o.Title = w.hymn.Title
	} else {
		o.Title = w.collection.DisplayName()
	}
	o.Artifact.Path = w.path
	return o
}

// Run executes job. It returns an error only for run-aborting conditions:
// unreadable catalog, empty filter match, unusable output directory or
// browser, and cancellation. Per-item failures are reported in RunStats.
// When items were processed the manifest is rebuilt even on error.
func (o *Orchestrator) Run(ctx context.Context, job Job) (RunStats, error) {
	start := o.cfg.Now()
	var stats RunStats

	catalog, err := o.catalog.LoadCatalog(ctx)
	if err != nil {
		if isContextErr(err) {
			return stats, fmt.Errorf("%w: %v", ErrCanceled, err)
		}
		return stats, err
	}

	selected := SelectCollections(catalog, job.Filter)
	if len(selected) == 0 {
		ids := make([]string, len(catalog))
		for i, c := range catalog {
			ids[i] = c.ID
		}
		return stats, &NoMatchError{Filter: job.Filter, Available: ids}
	}

	dir := o.outputDir(job.Mode)
	// #nosec G301 -- output is served publicly
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("%w: creating output directory: %v", ErrWriteArtifact, err)
	}

	items, err := o.plan(ctx, job, selected, dir, &stats)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	o.logger.Info("run planned",
		zap.String("mode", job.Mode.String()),
		zap.Int("collections", len(selected)),
		zap.Int("items", len(items)))

	runErr := o.execute(ctx, job, items, &stats)

	o.writeManifest(dir, job.Mode, catalog, &stats)
	stats.Duration = o.cfg.Now().Sub(start)
	return stats, runErr
}

func (o *Orchestrator) outputDir(mode Mode) string {
	if mode == ModeCollections && o.cfg.CollectionsSubdir != "" {
		return filepath.Join(o.cfg.OutputDir, o.cfg.CollectionsSubdir)
	}
	return o.cfg.OutputDir
}

func (o *Orchestrator) urlPrefix(mode Mode) string {
	if mode == ModeCollections && o.cfg.CollectionsSubdir != "" {
		return strings.TrimRight(o.cfg.URLPrefix, "/") + "/" + o.cfg.CollectionsSubdir
	}
	return o.cfg.URLPrefix
}

// plan lists the items of the run in catalog order, then hymn number order.
// Unreadable hymn lists are counted as collection warnings.
func (o *Orchestrator) plan(ctx context.Context, job Job, selected []CollectionRef, dir string, stats *RunStats) ([]workItem, error) {
	if job.Mode == ModeCollections {
		if job.Limit > 0 && job.Limit < len(selected) {
			selected = selected[:job.Limit]
		}
		items := make([]workItem, len(selected))
		for i, c := range selected {
			items[i] = workItem{collection: c, path: filepath.Join(dir, CollectionArtifactName(c.Slug))}
		}
		return items, nil
	}

	var items []workItem
	for _, c := range selected {
		records, err := o.hymnRecords(ctx, c.ID)
		if err != nil {
			if isContextErr(err) {
				return nil, err
			}
			stats.CollectionWarnings++
			continue
		}
		if job.Limit > 0 && job.Limit < len(records) {
			records = records[:job.Limit]
		}
		for i := range records {
			if records[i].Degraded {
				stats.HymnWarnings++
			}
			items = append(items, workItem{
				collection: c,
				hymn:       &records[i],
				path:       filepath.Join(dir, HymnArtifactName(c.Slug, records[i].Number)),
			})
		}
	}
	return items, nil
}

// hymnRecords returns a collection's hymns, with details when they are
// rendered from data.
func (o *Orchestrator) hymnRecords(ctx context.Context, collectionID string) ([]HymnRecord, error) {
	if o.cfg.LoadDetails {
		return o.assembler.AssembleHymns(ctx, collectionID)
	}
	list, err := o.assembler.LoadHymnList(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	records := make([]HymnRecord, len(list))
	for i, s := range list {
		records[i] = HymnRecord{HymnSummary: s}
	}
	return records, nil
}

// execute drives every item to a terminal state. On cancellation or an
// unusable browser the remaining items are marked FAILED with the cause.
func (o *Orchestrator) execute(ctx context.Context, job Job, items []workItem, stats *RunStats) error {
	pacing := o.cfg.HymnPacing
	if job.Mode == ModeCollections {
		pacing = o.cfg.CollectionPacing
	}

	rendered := false
	for i, it := range items {
		if rendered {
			if err := sleepCtx(ctx, pacing); err != nil {
				o.abandon(items[i:], err, stats)
				return fmt.Errorf("%w: %v", ErrCanceled, err)
			}
		}
		if err := ctx.Err(); err != nil {
			o.abandon(items[i:], err, stats)
			return fmt.Errorf("%w: %v", ErrCanceled, err)
		}

		out := o.process(ctx, it, job.Force, stats)
		stats.record(out)
		rendered = out.State != StateSkipped

		if err := out.Artifact.Err; err != nil {
			switch {
			case isContextErr(err) && ctx.Err() != nil:
				o.abandon(items[i+1:], err, stats)
				return fmt.Errorf("%w: %v", ErrCanceled, err)
			case errors.Is(err, ErrBrowserConnect):
				o.abandon(items[i+1:], err, stats)
				return err
			}
		}
	}
	return nil
}

// abandon marks items that never started as FAILED.
func (o *Orchestrator) abandon(items []workItem, cause error, stats *RunStats) {
	if len(items) == 0 {
		return
	}
	o.logger.Warn("abandoning remaining items", zap.Int("items", len(items)), zap.Error(cause))
	for _, it := range items {
		out := it.outcome()
		out.State = StateFailed
		out.Artifact.Err = cause
		stats.record(out)
	}
}

// process moves one item from PENDING to a terminal state.
func (o *Orchestrator) process(ctx context.Context, it workItem, force bool, stats *RunStats) ItemOutcome {
	out := it.outcome()
	start := o.cfg.Now()
	defer func() { out.Duration = o.cfg.Now().Sub(start) }()

	if !force {
		if info, err := os.Stat(it.path); err == nil && info.Mode().IsRegular() {
			out.State = StateSkipped
			out.Artifact.Size = info.Size()
			o.logger.Debug("artifact exists, skipping", zap.String("file", it.path))
			return out
		}
	}

	out.State = StateGenerating
	doc, err := o.document(ctx, it, stats)
	if err != nil {
		return o.fail(out, err)
	}

	data, attempts, err := o.renderWithRetry(ctx, doc, out.Label())
	out.Attempts = attempts
	if err != nil {
		return o.fail(out, err)
	}
	if len(data) == 0 {
		return o.fail(out, fmt.Errorf("%w: empty output", ErrPDFGeneration))
	}

	// #nosec G306 -- artifacts are served publicly
	if err := fileutil.WriteFileAtomic(it.path, data, 0o644); err != nil {
		return o.fail(out, fmt.Errorf("%w: %v", ErrWriteArtifact, err))
	}

	out.State = StateDone
	out.Artifact.Size = int64(len(data))
	out.Artifact.Generated = true
	o.logger.Info("generated",
		zap.String("file", it.path),
		zap.String("size", FormatBytes(out.Artifact.Size)),
		zap.Duration("duration", o.cfg.Now().Sub(start)))
	return out
}

// document builds the item's document. Collection hymns are assembled
// here; an unreadable hymn list is a warning and yields a document with
// a title page only.
func (o *Orchestrator) document(ctx context.Context, it workItem, stats *RunStats) (*Document, error) {
	if it.hymn != nil {
		return o.builder.BuildSingleHymnDocument(*it.hymn, it.collection), nil
	}

	hymns, err := o.assembler.AssembleHymns(ctx, it.collection.ID)
	if err != nil {
		if isContextErr(err) {
			return nil, err
		}
		stats.CollectionWarnings++
	}
	for _, h := range hymns {
		if h.Degraded {
			stats.HymnWarnings++
		}
	}
	return o.builder.BuildCollectionDocument(it.collection, hymns), nil
}

// renderWithRetry renders doc, retrying failures up to cfg.Retries times.
// Cancellation and browser launch failures are not retried.
func (o *Orchestrator) renderWithRetry(ctx context.Context, doc *Document, label string) ([]byte, int, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= o.cfg.Retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, o.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
				return nil, attempts, err
			}
			o.logger.Info("retrying render", zap.String("item", label), zap.Int("attempt", attempt+1))
		}

		attempts++
		data, err := o.renderer.Render(ctx, doc)
		if err == nil {
			return data, attempts, nil
		}
		lastErr = err
		if isContextErr(err) || errors.Is(err, ErrBrowserConnect) {
			break
		}
		o.logger.Warn("render failed", zap.String("item", label), zap.Int("attempt", attempts), zap.Error(err))
	}
	return nil, attempts, lastErr
}

func (o *Orchestrator) fail(out ItemOutcome, err error) ItemOutcome {
	out.State = StateFailed
	out.Artifact.Err = err
	o.logger.Error("item failed", zap.String("item", out.Label()), zap.Error(err))
	return out
}

// writeManifest rebuilds the manifest; a failure is recorded, not returned.
func (o *Orchestrator) writeManifest(dir string, mode Mode, catalog []CollectionRef, stats *RunStats) {
	slugs := make(map[string]string, len(catalog))
	for _, c := range catalog {
		slugs[c.Slug] = c.ID
	}

	m, err := WriteManifest(dir, ManifestOptions{
		URLPrefix:   o.urlPrefix(mode),
		Collections: slugs,
		Complete:    mode == ModeCollections,
		Now:         o.cfg.Now,
	})
	if err != nil {
		stats.ManifestErr = err
		o.logger.Error("manifest not written", zap.String("dir", dir), zap.Error(err))
		return
	}
	stats.Manifest = m
	stats.ManifestPath = filepath.Join(dir, ManifestFile)
	o.logger.Info("manifest written", zap.String("file", stats.ManifestPath), zap.Int("entries", m.Count))
}

// SelectCollections returns the collections matching filter, in catalog
// order. The filter is a case-insensitive substring of the id, slug or
// name; "all" or empty selects everything.
func SelectCollections(catalog []CollectionRef, filter string) []CollectionRef {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == FilterAll {
		return append([]CollectionRef(nil), catalog...)
	}

	var out []CollectionRef
	for _, c := range catalog {
		if strings.Contains(strings.ToLower(c.ID), filter) ||
			strings.Contains(strings.ToLower(c.Slug), filter) ||
			strings.Contains(strings.ToLower(c.Name), filter) {
			out = append(out, c)
		}
	}
	return out
}
