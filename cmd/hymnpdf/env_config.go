package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-hymnpdf/internal/config"
)

// envPrefix marks the variables read by hymnpdf.
const envPrefix = "HYMNPDF_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // HYMNPDF_CONFIG: config file name or path
	BaseURL    string        // HYMNPDF_BASE_URL: content site
	DataDir    string        // HYMNPDF_DATA_DIR: hymnal JSON data
	OutputDir  string        // HYMNPDF_OUTPUT_DIR: per-hymn PDF directory
	Timeout    time.Duration // HYMNPDF_TIMEOUT: page navigation timeout
}

// knownEnvVars lists valid HYMNPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HYMNPDF_CONFIG":     true,
	"HYMNPDF_BASE_URL":   true,
	"HYMNPDF_DATA_DIR":   true,
	"HYMNPDF_OUTPUT_DIR": true,
	"HYMNPDF_TIMEOUT":    true,
}

// loadEnvConfig reads configuration from environment variables.
// An unparsable or non-positive timeout is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("HYMNPDF_CONFIG"),
		BaseURL:    os.Getenv("HYMNPDF_BASE_URL"),
		DataDir:    os.Getenv("HYMNPDF_DATA_DIR"),
		OutputDir:  os.Getenv("HYMNPDF_OUTPUT_DIR"),
	}

	if timeout := os.Getenv("HYMNPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized HYMNPDF_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides file and default values with the environment.
// CLI flags are applied afterwards, giving flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BaseURL != "" {
		cfg.Source.BaseURL = env.BaseURL
	}
	if env.DataDir != "" {
		cfg.Data.Dir = env.DataDir
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.Render.NavigationTimeout = env.Timeout
	}
}
