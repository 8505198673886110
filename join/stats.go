package join

import "fmt"

// Stats are the diagnostic counters of one join run.
type Stats struct {
	// Steps is the number of merge steps.
	Steps int64
	// Entries counts records pushed onto a nest.
	Entries int64
	// Exits counts records popped off a nest.
	Exits int64
	// SkipAheads counts records that caused a random access.
	SkipAheads int64
	// AncestorProbes counts random accesses looking for ancestors.
	AncestorProbes int64
	// AncestorMemoHits counts ancestor lookups answered by the memo.
	AncestorMemoHits int64
	// Candidates counts pairs produced by exits.
	Candidates int64
	// FilteredOut counts candidates rejected by the filter.
	FilteredOut int64
	// Duplicates counts candidates dropped as repeats.
	Duplicates int64
	// Emitted counts pairs returned to the caller.
	Emitted int64
}

// MemoHitRate returns the share of ancestor lookups served by the memo.
func (s Stats) MemoHitRate() float64 {
	total := s.AncestorProbes + s.AncestorMemoHits
	if total == 0 {
		return 0
	}
	return float64(s.AncestorMemoHits) / float64(total)
}

func (s Stats) String() string {
	return fmt.Sprintf("steps=%d entries=%d exits=%d skips=%d probes=%d memo_hits=%d candidates=%d filtered=%d duplicates=%d emitted=%d",
		s.Steps, s.Entries, s.Exits, s.SkipAheads, s.AncestorProbes, s.AncestorMemoHits,
		s.Candidates, s.FilteredOut, s.Duplicates, s.Emitted)
}
