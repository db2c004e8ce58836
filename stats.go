package hymnpdf

import (
	"fmt"
	"strings"
	"time"
)

// ItemState is the lifecycle state of one selected item.
//
//	PENDING -> SKIPPED
//	PENDING -> GENERATING -> DONE
//	PENDING -> GENERATING -> FAILED
//
// Items left PENDING by a cancelled or aborted run end FAILED.
type ItemState int

const (
	StatePending ItemState = iota
	StateSkipped
	StateGenerating
	StateDone
	StateFailed
)

// String returns the upper-case state name.
func (s ItemState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateSkipped:
		return "SKIPPED"
	case StateGenerating:
		return "GENERATING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("ItemState(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s ItemState) Terminal() bool {
	return s == StateSkipped || s == StateDone || s == StateFailed
}

// Artifact is the result of one render: the file, its size, whether this
// run produced it, and the failure when it did not.
type Artifact struct {
	Path      string
	Size      int64
	Generated bool
	Err       error
}

// ItemOutcome records what happened to one selected item.
type ItemOutcome struct {
	Collection string // collection id
	Number     int    // hymn number, 0 for collection documents
	Title      string
	State      ItemState
	Artifact   Artifact
	Attempts   int
	Duration   time.Duration
}

// Label names the item in logs and summaries.
func (o ItemOutcome) Label() string {
	if o.Number == 0 {
		return o.Collection
	}
	return fmt.Sprintf("%s #%d", o.Collection, o.Number)
}

// RunStats is the end-of-run report. Generated + Skipped + Failed always
// equals len(Outcomes), the number of selected items.
type RunStats struct {
	Generated int
	Skipped   int
	Failed    int
	Bytes     int64 // bytes written by this run

	CollectionWarnings int // unreadable hymn lists
	HymnWarnings       int // hymns rendered from summary data only

	Outcomes []ItemOutcome
	Duration time.Duration

	ManifestPath string
	Manifest     *Manifest
	ManifestErr  error
}

// Total returns the number of selected items.
func (s *RunStats) Total() int {
	return s.Generated + s.Skipped + s.Failed
}

// record adds a terminal outcome.
func (s *RunStats) record(o ItemOutcome) {
	switch o.State {
	case StateSkipped:
		s.Skipped++
	case StateDone:
		s.Generated++
		s.Bytes += o.Artifact.Size
	default:
		o.State = StateFailed
		s.Failed++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Failures returns the failed outcomes in run order.
func (s *RunStats) Failures() []ItemOutcome {
	var failed []ItemOutcome
	for _, o := range s.Outcomes {
		if o.State == StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Summary renders the human-readable end-of-run report.
func (s *RunStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated: %d\n", s.Generated)
	fmt.Fprintf(&b, "Skipped:   %d\n", s.Skipped)
	fmt.Fprintf(&b, "Failed:    %d\n", s.Failed)
	fmt.Fprintf(&b, "Size:      %s\n", FormatBytes(s.Bytes))
	if s.CollectionWarnings > 0 || s.HymnWarnings > 0 {
		fmt.Fprintf(&b, "Warnings:  %d collection(s) unreadable, %d hymn(s) from summary data\n",
			s.CollectionWarnings, s.HymnWarnings)
	}
	if s.Duration > 0 {
		fmt.Fprintf(&b, "Elapsed:   %s\n", s.Duration.Round(time.Millisecond))
	}
	switch {
	case s.ManifestErr != nil:
		fmt.Fprintf(&b, "Index:     not written: %v\n", s.ManifestErr)
	case s.ManifestPath != "":
		fmt.Fprintf(&b, "Index:     %s\n", s.ManifestPath)
	}

	if failed := s.Failures(); len(failed) > 0 {
		b.WriteString("\nFailed items:\n")
		for _, o := range failed {
			fmt.Fprintf(&b, "  %s: %v\n", o.Label(), o.Artifact.Err)
		}
	}
	return b.String()
}

// FormatBytes renders n with a binary unit, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
