// Package config loads and validates hymnpdf YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-hymnpdf/internal/fileutil"
	"github.com/alnah/go-hymnpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory below os.UserConfigDir searched for named configs.
const AppDirName = "go-hymnpdf"

// Field length limits.
const (
	MaxURLLength      = 2048
	MaxPathLength     = 4096
	MaxLabelLength    = 100
	MaxSelectorLength = 500
	MaxPageSizeLength = 10
	MaxDateLength     = 50
)

// Defaults mirror the layout of the hymnal site checkout.
const (
	DefaultBaseURL           = "http://localhost:3000"
	DefaultDataDir           = "data/processed"
	DefaultOutputDir         = "public/pdfs"
	DefaultCollectionsSubdir = "complete-hymnals"
	DefaultURLPrefix         = "/pdfs"
)

// Config holds all configuration for a generation run.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Data     DataConfig     `yaml:"data"`
	Output   OutputConfig   `yaml:"output"`
	Render   RenderConfig   `yaml:"render"`
	Page     PageConfig     `yaml:"page"`
	Document DocumentConfig `yaml:"document"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// SourceConfig locates the site serving hymn pages.
type SourceConfig struct {
	BaseURL         string        `yaml:"baseURL"`
	LivenessTimeout time.Duration `yaml:"livenessTimeout"`
}

// DataConfig locates the JSON data set.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig defines where artifacts and manifests go.
type OutputConfig struct {
	Dir               string `yaml:"dir"`               // per-hymn PDFs
	CollectionsSubdir string `yaml:"collectionsSubdir"` // collection PDFs, below Dir
	URLPrefix         string `yaml:"urlPrefix"`         // public path of Dir
}

// RenderConfig tunes the browser and the batch loop.
type RenderConfig struct {
	NavigationTimeout time.Duration `yaml:"navigationTimeout"`
	MarkerTimeout     time.Duration `yaml:"markerTimeout"`
	HymnSettle        time.Duration `yaml:"hymnSettle"`
	CollectionSettle  time.Duration `yaml:"collectionSettle"`
	HymnPacing        time.Duration `yaml:"hymnPacing"`
	CollectionPacing  time.Duration `yaml:"collectionPacing"`
	Retries           int           `yaml:"retries"`
	RetryBackoff      time.Duration `yaml:"retryBackoff"`
	InlineHymns       bool          `yaml:"inlineHymns"` // render hymns from data instead of the live page
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size   string  `yaml:"size"`   // "letter", "a4", "legal"
	Margin float64 `yaml:"margin"` // inches
}

// DocumentConfig controls document content.
type DocumentConfig struct {
	SiteLabel     string         `yaml:"siteLabel"`
	DateFormat    string         `yaml:"dateFormat"`
	ContentsLimit int            `yaml:"contentsLimit"`
	Sampling      SamplingConfig `yaml:"sampling"`
	ContentMarker string         `yaml:"contentMarker"`
	HideSelectors []string       `yaml:"hideSelectors"`
}

// SamplingConfig bounds collection documents. FullThreshold 0 disables sampling.
type SamplingConfig struct {
	FullThreshold int `yaml:"fullThreshold"`
	SampleSize    int `yaml:"sampleSize"`
}

// AssetsConfig points at a directory overriding built-in styles and templates.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:         DefaultBaseURL,
			LivenessTimeout: 5 * time.Second,
		},
		Data: DataConfig{Dir: DefaultDataDir},
		Output: OutputConfig{
			Dir:               DefaultOutputDir,
			CollectionsSubdir: DefaultCollectionsSubdir,
			URLPrefix:         DefaultURLPrefix,
		},
		Render: RenderConfig{
			NavigationTimeout: 60 * time.Second,
			MarkerTimeout:     15 * time.Second,
			HymnSettle:        1500 * time.Millisecond,
			CollectionSettle:  3 * time.Second,
			HymnPacing:        200 * time.Millisecond,
			CollectionPacing:  time.Second,
			Retries:           1,
			RetryBackoff:      time.Second,
		},
		Page: PageConfig{Size: "letter", Margin: 0.75},
		Document: DocumentConfig{
			SiteLabel:     "AdventHymnals.org",
			DateFormat:    "long",
			ContentsLimit: 50,
			Sampling:      SamplingConfig{FullThreshold: 20, SampleSize: 10},
		},
	}
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, and by the CLI after flags and
// environment overrides are applied.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"source.baseURL", c.Source.BaseURL, MaxURLLength},
		{"data.dir", c.Data.Dir, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"output.collectionsSubdir", c.Output.CollectionsSubdir, MaxLabelLength},
		{"output.urlPrefix", c.Output.URLPrefix, MaxURLLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"document.siteLabel", c.Document.SiteLabel, MaxLabelLength},
		{"document.dateFormat", c.Document.DateFormat, MaxDateLength},
		{"document.contentMarker", c.Document.ContentMarker, MaxSelectorLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, chk := range checks {
		if err := validateFieldLength(chk.field, chk.value, chk.max); err != nil {
			return err
		}
	}
	for i, sel := range c.Document.HideSelectors {
		if err := validateFieldLength(fmt.Sprintf("document.hideSelectors[%d]", i), sel, MaxSelectorLength); err != nil {
			return err
		}
	}

	if err := validateBaseURL(c.Source.BaseURL); err != nil {
		return err
	}
	if sub := c.Output.CollectionsSubdir; sub != "" && (strings.ContainsAny(sub, `/\`) || sub == "." || sub == "..") {
		return fmt.Errorf("%w: output.collectionsSubdir must be a single directory name, got %q", ErrInvalidValue, sub)
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"source.livenessTimeout", c.Source.LivenessTimeout},
		{"render.navigationTimeout", c.Render.NavigationTimeout},
		{"render.markerTimeout", c.Render.MarkerTimeout},
		{"render.hymnSettle", c.Render.HymnSettle},
		{"render.collectionSettle", c.Render.CollectionSettle},
		{"render.hymnPacing", c.Render.HymnPacing},
		{"render.collectionPacing", c.Render.CollectionPacing},
		{"render.retryBackoff", c.Render.RetryBackoff},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, d.field, d.value)
		}
	}
	if c.Render.Retries < 0 || c.Render.Retries > 5 {
		return fmt.Errorf("%w: render.retries must be between 0 and 5, got %d", ErrInvalidValue, c.Render.Retries)
	}

	if c.Page.Size != "" {
		switch strings.ToLower(c.Page.Size) {
		case "letter", "a4", "legal":
		default:
			return fmt.Errorf("%w: page.size %q (must be letter, a4, or legal)", ErrInvalidValue, c.Page.Size)
		}
	}
	if c.Page.Margin != 0 && (c.Page.Margin < 0.25 || c.Page.Margin > 2.0) {
		return fmt.Errorf("%w: page.margin must be between 0.25 and 2.0, got %.2f", ErrInvalidValue, c.Page.Margin)
	}

	s := c.Document.Sampling
	if s.FullThreshold < 0 || s.SampleSize < 0 {
		return fmt.Errorf("%w: document.sampling values must not be negative", ErrInvalidValue)
	}
	if s.FullThreshold > 0 && (s.SampleSize == 0 || s.SampleSize > s.FullThreshold) {
		return fmt.Errorf("%w: document.sampling.sampleSize must be between 1 and fullThreshold (%d), got %d",
			ErrInvalidValue, s.FullThreshold, s.SampleSize)
	}
	if c.Document.ContentsLimit < 0 {
		return fmt.Errorf("%w: document.contentsLimit must not be negative, got %d", ErrInvalidValue, c.Document.ContentsLimit)
	}

	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: source.baseURL is required", ErrInvalidValue)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: source.baseURL: %v", ErrInvalidValue, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source.baseURL must be an http(s) URL, got %q", ErrInvalidValue, raw)
	}
	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
//
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup
// order: ./name.yaml, ./name.yml, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppDirName, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
