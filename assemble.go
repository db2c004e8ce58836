package hymnpdf

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Assembler resolves each hymn of a collection to its detailed record,
// falling back to summary data when the detail cannot be loaded.
type Assembler struct {
	source HymnSource
	logger *zap.Logger
}

// NewAssembler creates an Assembler over source. A nil logger discards output.
func NewAssembler(source HymnSource, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{source: source, logger: logger}
}

// LoadHymnList returns the collection's hymn summaries ordered by number.
// On failure it returns an empty, non-nil slice and the load error.
func (a *Assembler) LoadHymnList(ctx context.Context, collectionID string) ([]HymnSummary, error) {
	list, err := a.source.LoadHymnList(ctx, collectionID)
	if err != nil {
		a.logger.Warn("could not load collection",
			zap.String("collection", collectionID), zap.Error(err))
		return []HymnSummary{}, err
	}
	sorted := make([]HymnSummary, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	return sorted, nil
}

// AssembleHymns returns every hymn of the collection in number order.
//
// A missing or unreadable hymn detail is never an error: the hymn is kept with
// its summary data and marked Degraded. When the collection list itself cannot
// be read the result is an empty slice and the returned error wraps
// ErrCollectionUnavailable, so callers can record it and move on.
func (a *Assembler) AssembleHymns(ctx context.Context, collectionID string) ([]HymnRecord, error) {
	list, err := a.LoadHymnList(ctx, collectionID)
	if err != nil {
		return []HymnRecord{}, err
	}

	records := make([]HymnRecord, 0, len(list))
	for _, summary := range list {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, a.assemble(ctx, collectionID, summary))
	}
	return records, nil
}

// assemble merges one summary with its detail record.
func (a *Assembler) assemble(ctx context.Context, collectionID string, summary HymnSummary) HymnRecord {
	detail, err := a.source.LoadHymnDetail(ctx, collectionID, summary.ID)
	if err != nil {
		a.logger.Warn("using summary data for hymn",
			zap.String("collection", collectionID),
			zap.String("hymn", summary.ID),
			zap.Int("number", summary.Number),
			zap.Error(err))
		return HymnRecord{HymnSummary: summary, Degraded: true}
	}

	rec := HymnRecord{HymnSummary: summary, Detail: detail}
	if rec.Title == "" {
		rec.Title = detail.Title
	}
	return rec
}
