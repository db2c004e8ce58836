package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	hymnpdf "github.com/alnah/go-hymnpdf"
	"github.com/alnah/go-hymnpdf/internal/config"
	"github.com/alnah/go-hymnpdf/internal/fileutil"
	"github.com/alnah/go-hymnpdf/internal/yamlutil"
)

// Doctor report status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Source   sourceInfo `json:"source"`
	Data     dataInfo   `json:"data"`
	Output   outputInfo `json:"output"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// sourceInfo holds the content site liveness result.
type sourceInfo struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
}

// dataInfo holds the data set check result.
type dataInfo struct {
	Dir         string `json:"dir"`
	Readable    bool   `json:"readable"`
	Collections int    `json:"collections"`
}

// outputInfo holds the output directory check result.
type outputInfo struct {
	Dir    string `json:"dir"`
	Exists bool   `json:"exists"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = ready (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, _, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printDoctorUsage(env.Stderr)
		return ExitUsage
	}

	cfg, err := loadSettings(flags.common, flags.source, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, cfg, flags.common.config))
		return exitCodeFor(err)
	}

	result := runDoctor(context.Background(), cfg, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
		if flags.common.verbose {
			printEffectiveConfig(env.Stdout, cfg)
		}
	}

	if result.Status == statusErrors {
		return ExitFatal
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkSource(ctx, result, cfg, env)
	checkData(ctx, result, cfg)
	checkOutput(result, cfg)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome detects the Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path from launcher lookup or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkSource checks the content site the same way a generation run does.
func checkSource(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	result.Source.URL = cfg.Source.BaseURL
	if err := hymnpdf.CheckSource(ctx, env.HTTPClient, cfg.Source.BaseURL, cfg.Source.LivenessTimeout); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Content source: %v", err))
		return
	}
	result.Source.Reachable = true
}

// checkData loads the catalog from the configured data directory.
func checkData(ctx context.Context, result *doctorResult, cfg *config.Config) {
	result.Data.Dir = cfg.Data.Dir
	refs, err := hymnpdf.NewStore(cfg.Data.Dir, nil).LoadCatalog(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Data set: %v", err))
		return
	}
	result.Data.Readable = true
	result.Data.Collections = len(refs)
	if len(refs) == 0 {
		result.Warnings = append(result.Warnings, "Catalog lists no collections")
	}
}

// checkOutput reports whether the output directory exists. A missing one is
// created by the first run, so it is not an error.
func checkOutput(result *doctorResult, cfg *config.Config) {
	result.Output.Dir = cfg.Output.Dir
	if fileutil.DirExists(cfg.Output.Dir) {
		result.Output.Exists = true
		return
	}
	if fileutil.FileExists(cfg.Output.Dir) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output path is a file: %s", cfg.Output.Dir))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container, and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("HYMNPDF_CONTAINER") == "1" {
		return true, "HYMNPDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable; the browser needs it.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "hymnpdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "hymnpdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content source")
	if r.Source.Reachable {
		fmt.Fprintf(w, "  [OK] %s reachable\n", r.Source.URL)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s unreachable\n", r.Source.URL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Data set")
	if r.Data.Readable {
		fmt.Fprintf(w, "  [OK] %s: %d collections\n", r.Data.Dir, r.Data.Collections)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: catalog unreadable\n", r.Data.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	if r.Output.Exists {
		fmt.Fprintf(w, "  [OK] %s exists\n", r.Output.Dir)
	} else {
		fmt.Fprintf(w, "  [OK] %s will be created\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printEffectiveConfig dumps the merged configuration as YAML.
func printEffectiveConfig(w io.Writer, cfg *config.Config) {
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(w, "\nEffective config: %v\n", err)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Effective config:")
	_, _ = w.Write(out)
}
