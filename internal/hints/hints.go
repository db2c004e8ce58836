// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-hymnpdf/internal/fileutil"
)

// maxListed caps how many names a hint lists.
const maxListed = 8

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForSourceUnreachable returns a hint for a failed liveness check.
func ForSourceUnreachable(baseURL string) string {
	return format("start the site (e.g. npm run dev) or point --base-url at it; tried " + baseURL)
}

// ForCatalog returns a hint for an unreadable reference catalog.
func ForCatalog(dataDir string) string {
	if dataDir == "" {
		return format("use --data-dir to locate metadata/hymnals-reference.json")
	}
	return format("expected " + dataDir + "/metadata/hymnals-reference.json; use --data-dir to change")
}

// ForNoMatch lists some collection ids the filter could have matched.
func ForNoMatch(available []string) string {
	if len(available) == 0 {
		return ""
	}
	listed := available
	suffix := ""
	if len(listed) > maxListed {
		listed = listed[:maxListed]
		suffix = ", ..."
	}
	return format("available: " + strings.Join(listed, ", ") + suffix)
}

// ForTimeout returns a hint about raising the navigation timeout.
func ForTimeout() string {
	return format("for slow content sources, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-hymnpdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-hymnpdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
