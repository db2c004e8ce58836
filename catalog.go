package hymnpdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Data layout below the data directory.
const (
	catalogFile       = "metadata/hymnals-reference.json"
	collectionsDir    = "hymnals"
	collectionSuffix  = "-collection.json"
	hymnDetailsDir    = "hymns"
	hymnDetailSuffix  = ".json"
	catalogHymnalsKey = "hymnals"
)

// CatalogSource provides the collection catalog.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]CollectionRef, error)
}

// HymnSource provides per-collection hymn lists and per-hymn details.
type HymnSource interface {
	LoadHymnList(ctx context.Context, collectionID string) ([]HymnSummary, error)
	LoadHymnDetail(ctx context.Context, collectionID, hymnID string) (*HymnDetail, error)
}

// Compile-time interface checks.
var (
	_ CatalogSource = (*Store)(nil)
	_ HymnSource    = (*Store)(nil)
)

// Store reads the read-only JSON data set from a directory:
//
//	{dir}/metadata/hymnals-reference.json
//	{dir}/hymnals/{collection}-collection.json
//	{dir}/hymns/{collection}/{hymn}.json
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a Store rooted at dir. A nil logger discards output.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// LoadCatalog reads every collection reference, in file order.
// Any read or parse failure wraps ErrCatalogUnavailable.
func (s *Store) LoadCatalog(ctx context.Context) ([]CollectionRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, catalogFile)
	data, err := os.ReadFile(path) // #nosec G304 -- path built from configured data dir
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	refs, err := decodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, path, err)
	}

	s.logger.Info("catalog loaded", zap.String("file", path), zap.Int("collections", len(refs)))
	return refs, nil
}

// decodeCatalog streams the catalog so the key order of the "hymnals"
// object becomes the catalog order.
func decodeCatalog(data []byte) ([]CollectionRef, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var refs []CollectionRef
	found := false
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key != catalogHymnalsKey {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("decoding %q: %w", key, err)
			}
			continue
		}
		found = true
		refs, err = decodeRefs(dec)
		if err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, fmt.Errorf("missing %q object", catalogHymnalsKey)
	}
	return refs, nil
}

func decodeRefs(dec *json.Decoder) ([]CollectionRef, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	refs := make([]CollectionRef, 0, 16)
	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var ref CollectionRef
		if err := dec.Decode(&ref); err != nil {
			return nil, fmt.Errorf("decoding collection %q: %w", id, err)
		}
		if ref.ID == "" {
			ref.ID = id
		}
		if ref.Slug == "" {
			ref.Slug = Slugify(ref.ID)
		}
		refs = append(refs, ref)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return refs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// collectionFile is the on-disk shape of a collection hymn list.
type collectionFile struct {
	Hymns []HymnSummary `json:"hymns"`
}

// LoadHymnList reads a collection's hymn list in file order.
// Failures wrap ErrCollectionUnavailable.
func (s *Store) LoadHymnList(ctx context.Context, collectionID string) ([]HymnSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(collectionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}

	path := filepath.Join(s.dir, collectionsDir, collectionID+collectionSuffix)
	data, err := os.ReadFile(path) // #nosec G304 -- key validated above
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}

	var cf collectionFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCollectionUnavailable, path, err)
	}
	return cf.Hymns, nil
}

// LoadHymnDetail reads one hymn's detail record.
// Failures wrap ErrHymnUnavailable.
func (s *Store) LoadHymnDetail(ctx context.Context, collectionID, hymnID string) (*HymnDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(collectionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHymnUnavailable, err)
	}
	if err := validateKey(hymnID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHymnUnavailable, err)
	}

	path := filepath.Join(s.dir, hymnDetailsDir, collectionID, hymnID+hymnDetailSuffix)
	data, err := os.ReadFile(path) // #nosec G304 -- keys validated above
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHymnUnavailable, err)
	}

	var detail HymnDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHymnUnavailable, path, err)
	}
	return &detail, nil
}

// validateKey rejects identifiers that could escape the data directory.
func validateKey(key string) error {
	if key == "" {
		return errors.New("empty identifier")
	}
	if strings.ContainsAny(key, "/\\\x00") || key == "." || key == ".." {
		return fmt.Errorf("invalid identifier %q", key)
	}
	return nil
}
