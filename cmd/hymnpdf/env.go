package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	hymnpdf "github.com/alnah/go-hymnpdf"
)

// RendererFactory creates the renderer used by a generation run.
type RendererFactory func(opts hymnpdf.RenderOptions, markup *hymnpdf.Markup, logger *zap.Logger) hymnpdf.Renderer

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	HTTPClient  *http.Client // liveness checks
	NewRenderer RendererFactory
}

// DefaultEnv returns the production environment: real clock, standard
// streams and the headless Chrome renderer.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		HTTPClient: &http.Client{},
		NewRenderer: func(opts hymnpdf.RenderOptions, markup *hymnpdf.Markup, logger *zap.Logger) hymnpdf.Renderer {
			return hymnpdf.NewRodRenderer(opts, markup, logger)
		},
	}
}
