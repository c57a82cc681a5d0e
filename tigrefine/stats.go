package tigrefine

import "fmt"

// Stats accumulates the non-fatal conditions and decisions made by a single
// pass, the Go equivalent of the counters dropDeadEnds() and mergeOrphans()
// print at the end of their C++ runs (numF/numL/numB/numT in
// AS_BAT_DropDeadEnds.C, nNeither/nUniqBubble/nUniqOrphan/nReptOrphan in
// AS_BAT_MergeOrphans.C).  Tests and the CLI wrapper read it; the diagnostic
// "picture" viewer (out of scope here) would read it too.
type Stats struct {
	// Dead-end trimming.
	TigsSplit      int
	FirstReadsDrop int
	LastReadsDrop  int
	BothEndsDrop   int

	// Orphan resolution.
	PotentialOrphans  int
	NoGoodPlacement   int
	Bubbles           int
	BubbleReads       int
	UniqueOrphans     int
	UniqueOrphanReads int
	ShatteredOrphans  int
	ShatteredReads    int

	// Non-fatal error categories (§7).
	DanglingTargets  int
	NoPlacements     int
	OversizedRegions int
}

// Summary renders a single human-readable line covering both passes, in the spirit
// of tgTigDisplay.C's summary line and writeStatus() calls in the original
// passes.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"dead-ends: split %d tigs (first %d, last %d, both %d); "+
			"orphans: %d candidates, %d bubbles (%d reads), %d uniquely placed (%d reads), "+
			"%d shattered (%d reads), %d with no good placement",
		s.TigsSplit, s.FirstReadsDrop, s.LastReadsDrop, s.BothEndsDrop,
		s.PotentialOrphans, s.Bubbles, s.BubbleReads, s.UniqueOrphans, s.UniqueOrphanReads,
		s.ShatteredOrphans, s.ShatteredReads, s.NoGoodPlacement)
}
