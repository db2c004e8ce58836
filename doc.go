// Package hymnpdf generates printable PDF editions of hymnal collections
// using headless Chrome.
//
// # Quick Start
//
// Wire a data store, a document builder and a renderer into an
// orchestrator, then run a job:
//
//	store := hymnpdf.NewStore("data/processed", logger)
//	builder := hymnpdf.NewBuilder(hymnpdf.BuilderConfig{BaseURL: "http://localhost:3000"}, logger)
//
//	markup, err := hymnpdf.NewMarkup(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	renderer := hymnpdf.NewRodRenderer(hymnpdf.DefaultRenderOptions(), markup, logger)
//	defer renderer.Close()
//
//	orch := hymnpdf.NewOrchestrator(store, store, builder, renderer,
//	    hymnpdf.OrchestratorConfig{OutputDir: "public/pdfs", URLPrefix: "/pdfs"}, logger)
//	stats, err := orch.Run(ctx, hymnpdf.Job{Mode: hymnpdf.ModeHymns, Filter: "sdah"})
//
// # Pipeline
//
// A run goes through these stages:
//
//  1. Catalog and hymn lists are read from the JSON data set (Store)
//  2. Hymn details are merged with their summaries (Assembler)
//  3. A Document tree is built per artifact (Builder)
//  4. The tree is serialized and printed to PDF (Markup, RodRenderer)
//  5. The output directory is indexed into index.json (WriteManifest)
//
// Single-hymn documents are printed from the hymn's live page on the
// content site; collection documents are assembled from data and injected
// into a blank page. Large collections are sampled (see SamplingPolicy)
// and the document says so.
//
// # Idempotence
//
// Existing artifacts are skipped unless Job.Force is set. Artifacts are
// written to a temporary file and renamed, so a failed write never leaves
// a partial file behind.
//
// # Error Handling
//
// Run-aborting conditions are returned from Orchestrator.Run as sentinel
// errors; test them with errors.Is:
//
//	stats, err := orch.Run(ctx, job)
//	if errors.Is(err, hymnpdf.ErrNoMatch) {
//	    // filter selected nothing
//	}
//
// Per-item failures do not abort a run. They are reported in RunStats.
package hymnpdf
