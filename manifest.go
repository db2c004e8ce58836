package hymnpdf

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-hymnpdf/internal/fileutil"
)

// Artifact file conventions.
const (
	ManifestFile       = "index.json"
	artifactExt        = ".pdf"
	completeSuffix     = "-complete"
	typeCompleteHymnal = "complete_hymnal"
	typeCompleteSet    = "complete_hymnals"
	completeSetDesc    = "Complete hymnal PDF collections with all hymns from each collection"
)

// HymnArtifactName returns the file name of a single-hymn artifact.
func HymnArtifactName(slug string, number int) string {
	return slug + "-" + strconv.Itoa(number) + artifactExt
}

// CollectionArtifactName returns the file name of a collection artifact.
func CollectionArtifactName(slug string) string {
	return slug + completeSuffix + artifactExt
}

// ManifestEntry describes one artifact file.
type ManifestEntry struct {
	Filename     string    `json:"filename"`
	Hymnal       string    `json:"hymnal"` // collection slug
	CollectionID string    `json:"collection_id,omitempty"`
	Number       int       `json:"number,omitempty"` // 0 for collection artifacts
	URL          string    `json:"url"`
	Type         string    `json:"type,omitempty"`
	Generated    time.Time `json:"generated"` // file modification time
	Size         int64     `json:"size"`
}

// Manifest lists every artifact in an output directory.
type Manifest struct {
	Generated   time.Time       `json:"generated"`
	RunID       string          `json:"run_id"`
	Count       int             `json:"count"`
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	PDFs        []ManifestEntry `json:"pdfs"`
}

// Has reports whether the manifest lists the hymn artifact for slug and number.
func (m *Manifest) Has(slug string, number int) bool {
	if m == nil {
		return false
	}
	for _, e := range m.PDFs {
		if e.Hymnal == slug && e.Number == number && e.Type == "" {
			return true
		}
	}
	return false
}

// HasCollection reports whether the manifest lists the collection artifact for slug.
func (m *Manifest) HasCollection(slug string) bool {
	if m == nil {
		return false
	}
	for _, e := range m.PDFs {
		if e.Hymnal == slug && e.Type == typeCompleteHymnal {
			return true
		}
	}
	return false
}

// ManifestOptions configures WriteManifest.
type ManifestOptions struct {
	URLPrefix   string            // public path of the directory, e.g. /pdfs
	Collections map[string]string // slug -> collection id, optional
	Complete    bool              // directory holds collection artifacts
	Now         func() time.Time
}

// WriteManifest scans dir for artifacts and replaces dir/index.json with a
// listing of exactly those files, sorted by collection slug then number.
// Files that match no artifact convention are listed without a number.
func WriteManifest(dir string, opts ManifestOptions) (*Manifest, error) {
	m, err := BuildManifest(dir, opts)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestWrite, err)
	}
	data = append(data, '\n')

	// #nosec G306 -- the manifest is served publicly
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestWrite, err)
	}
	return m, nil
}

// BuildManifest scans dir without writing anything.
func BuildManifest(dir string, opts ManifestOptions) (*Manifest, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestWrite, err)
	}

	pdfs := make([]ManifestEntry, 0, len(entries))
	for _, de := range entries {
		name := de.Name()
		if !strings.EqualFold(filepath.Ext(name), artifactExt) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := de.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		entry := parseArtifactName(name)
		entry.CollectionID = opts.Collections[entry.Hymnal]
		entry.URL = artifactURL(opts.URLPrefix, name)
		entry.Generated = info.ModTime().UTC()
		entry.Size = info.Size()
		pdfs = append(pdfs, entry)
	}

	sort.Slice(pdfs, func(i, j int) bool {
		a, b := pdfs[i], pdfs[j]
		if a.Hymnal != b.Hymnal {
			return a.Hymnal < b.Hymnal
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Filename < b.Filename
	})

	m := &Manifest{
		Generated: opts.Now().UTC(),
		RunID:     uuid.NewString(),
		Count:     len(pdfs),
		PDFs:      pdfs,
	}
	if opts.Complete {
		m.Type = typeCompleteSet
		m.Description = completeSetDesc
	}
	return m, nil
}

// artifactURL joins a public prefix, absolute path or full URL, with name.
func artifactURL(prefix, name string) string {
	if strings.Contains(prefix, "://") {
		return strings.TrimRight(prefix, "/") + "/" + name
	}
	return path.Join("/", prefix, name)
}

// parseArtifactName splits "<slug>-<n>.pdf" or "<slug>-complete.pdf".
// Slugs may contain hyphens; only the last segment is interpreted.
func parseArtifactName(name string) ManifestEntry {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	entry := ManifestEntry{Filename: name, Hymnal: base}

	if slug, ok := strings.CutSuffix(base, completeSuffix); ok && slug != "" {
		entry.Hymnal = slug
		entry.Type = typeCompleteHymnal
		return entry
	}

	i := strings.LastIndexByte(base, '-')
	if i <= 0 {
		return entry
	}
	if n, err := strconv.Atoi(base[i+1:]); err == nil && n > 0 {
		entry.Hymnal = base[:i]
		entry.Number = n
	}
	return entry
}

// ReadManifest loads dir/index.json.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile)) // #nosec G304 -- dir is the configured output dir
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestRead, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestRead, err)
	}
	return &m, nil
}
