package tigrefine

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// span is a half-open [lo, hi) interval over tig coordinates.  It is kept
// local to this file rather than built on bio/interval's PosType/endpoint
// machinery: that machinery is built for scanning whole-chromosome BED
// unions against a second probe range, which is more than this needs for
// merging the handful of per-tig intervals §4.2.1/§4.2.4 produce.  The merge
// loop below is modeled directly on canu's intervalList<int32> (used the
// same way in AS_BAT_MergeOrphans.C's tigCoverage and targetIntervals).
type span struct{ lo, hi int32 }

func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	out := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.lo <= last.hi {
			if s.hi > last.hi {
				last.hi = s.hi
			}
		} else {
			out = append(out, s)
		}
	}
	return out
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func orderedSpan(a, b int32) (int32, int32) {
	if a <= b {
		return a, b
	}
	return b, a
}

func containsTigID(haystack []TigID, needle TigID) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// overlapSpanInTig computes, in tig coordinates, the portion of rd covered
// by a single overlap ov where rd is the overlap's 'A' read (§4.2.1's
// hangToMinCoord/hangToMaxCoord).  Hangs follow the same convention as
// Overlap.AContained and placeRelativeTo: a negative AHang means rd starts
// before the other read, a positive BHang means rd ends after it.  The
// aligned region on rd therefore runs from max(0, -AHang) to
// rdLen-max(0, BHang) in rd's own native coordinates; this maps that native
// span into tig coordinates using rd's placement.
func overlapSpanInTig(rd ReadPlacement, ov Overlap, rdLen int32) (int32, int32) {
	alignStart := maxInt32(0, -ov.AHang)
	alignEnd := rdLen - maxInt32(0, ov.BHang)
	if rd.IsForward {
		return rd.PositionMin + alignStart, rd.PositionMin + alignEnd
	}
	return rd.PositionMax - alignEnd, rd.PositionMax - alignStart
}

// overlapConsistentWithTig estimates, in [0,1], how consistent a candidate
// erate is with the error rates already observed among overlaps between
// reads placed within [lo,hi) of target, at deviation standard deviations
// of tolerance.  AS_BAT_Unitig::overlapConsistentWithTig's body was not
// among the retrieved original-source files (filtered out of the pack);
// this reconstructs the documented intent from §4.2.2 ("local deviation
// bound") as a simple local-mean/stddev admissibility score, recorded here
// rather than guessed silently (see DESIGN.md).
func overlapConsistentWithTig(target *Tig, overlaps *OverlapIndex, lo, hi int32, erate float64, deviation float64) float64 {
	var sum, sumSq float64
	var n int
	for _, p := range target.Ufpath() {
		if p.PositionMin >= hi || p.PositionMax <= lo {
			continue
		}
		for _, ov := range overlaps.OverlapsOf(p.Rid) {
			if _, ok := FindPlacement(target, ov.B); !ok {
				continue
			}
			sum += ov.ERate
			sumSq += ov.ERate * ov.ERate
			n++
		}
	}
	if n == 0 {
		return 1.0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)
	bound := mean + deviation*stddev
	if erate <= bound {
		return 1.0
	}
	if stddev == 0 {
		return 0.0
	}
	over := (erate - bound) / stddev
	score := 1.0 - 0.5*over
	if score < 0 {
		return 0
	}
	return score
}

// findPotentialOrphans is §4.2.1.  It returns, for every tig that survives
// the rejection rules, the set of other tig-ids its non-contained reads
// have qualifying overlaps into.
func findPotentialOrphans(reads *ReadRegistry, best *BestEdgeGraph, overlaps *OverlapIndex, tv *TigVector, stats *Stats) map[TigID][]TigID {
	potential := make(map[TigID][]TigID)

	for id := TigID(1); id <= tv.MaxTigID(); id++ {
		tig := tv.Get(id)
		if tig == nil || tig.Len() < 2 {
			continue
		}

		tigOlapsTo := make(map[TigID]int)
		var spans []span

		for _, rd := range tig.Ufpath() {
			if best.isContained(rd.Rid) {
				continue
			}

			hostsSeen := make(map[TigID]bool)
			for _, ov := range overlaps.OverlapsOf(rd.Rid) {
				hostID := tv.InUnitig(ov.B)
				host := tv.Get(hostID)
				if hostID == NoTig || host == nil || host.Len() == 1 || hostID == id || host.Length() < tig.Length() {
					continue
				}
				hostsSeen[hostID] = true
				lo, hi := overlapSpanInTig(rd, ov, reads.Len(rd.Rid))
				spans = append(spans, span{lo, hi})
			}
			for hostID := range hostsSeen {
				tigOlapsTo[hostID]++
			}
		}

		merged := mergeSpans(spans)

		var spannedBases, maxUncovered, bgnUncovered, endUncovered int32
		for _, sp := range merged {
			spannedBases += sp.hi - sp.lo
		}
		for i := 1; i < len(merged); i++ {
			if gap := merged[i].lo - merged[i-1].hi; gap > maxUncovered {
				maxUncovered = gap
			}
		}
		if len(merged) > 0 {
			bgnUncovered = merged[0].lo
			endUncovered = tig.Length() - merged[len(merged)-1].hi
		}

		log.Debug.Printf(
			"findPotentialOrphans()-- tig %d length %d regions %d uncovered %d/%d/%d",
			id, tig.Length(), len(merged), bgnUncovered, maxUncovered, endUncovered)

		if len(merged) > 10 {
			continue
		}
		if bgnUncovered > 0 && endUncovered > 0 {
			continue
		}

		var hosts []TigID
		for hostID := range tigOlapsTo {
			hosts = append(hosts, hostID)
		}
		sort.Slice(hosts, func(i, j int) bool { return hosts[i] < hosts[j] })

		potential[id] = hosts
		stats.PotentialOrphans++
	}

	return potential
}

// findOrphanReadPlacements is §4.2.2.  It runs the embarrassingly parallel
// per-read placement loop over github.com/grailbio/base/traverse, exactly
// the way pileup/snp.pileupSNPMain fans out its per-shard work, partitioned
// across opts.Parallelism workers.
func findOrphanReadPlacements(
	opts *Opts,
	reads *ReadRegistry,
	overlaps *OverlapIndex,
	best *BestEdgeGraph,
	tv *TigVector,
	placer *Placer,
	potential map[TigID][]TigID,
) ([][]OverlapPlacement, error) {
	numReads := reads.NumReads()
	placed := make([][]OverlapPlacement, numReads+1)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	err := traverse.Each(parallelism, func(shard int) error {
		lo := 1 + (shard*numReads)/parallelism
		hi := 1 + ((shard+1)*numReads)/parallelism

		for rid := ReadID(lo); rid < ReadID(hi); rid++ {
			tigID := tv.InUnitig(rid)
			if tigID == NoTig || best.isContained(rid) {
				continue
			}
			hosts, isCandidate := potential[tigID]
			if !isCandidate {
				continue
			}

			var kept []OverlapPlacement
			for _, pl := range placer.Place(rid, true) {
				if pl.TigID == tigID || pl.TigID == NoTig {
					continue
				}
				target := tv.Get(pl.TigID)
				if target == nil || target.Len() == 1 {
					continue
				}
				if _, isOrphanTarget := potential[pl.TigID]; isOrphanTarget {
					continue
				}
				if !containsTigID(hosts, pl.TigID) {
					continue
				}

				lo, hi := orderedSpan(pl.PositionBgn, pl.PositionEnd)
				if pl.ERate > opts.Similarity &&
					overlapConsistentWithTig(target, overlaps, lo, hi, pl.ERate, opts.Deviation) < 0.5 {
					continue
				}

				kept = append(kept, pl)
			}
			placed[rid] = kept
		}
		return nil
	})

	return placed, err
}

// placeAnchor is §4.2.3: both the orphan's first and last read must have at
// least one surviving placement.
func placeAnchor(orphan *Tig, placed [][]OverlapPlacement) bool {
	fRead := orphan.FirstRead()
	lRead := orphan.LastRead()
	return len(placed[fRead.Rid]) > 0 && len(placed[lRead.Rid]) > 0
}

// buildTargetIntervals is §4.2.4: for every placement of the orphan's first
// or last read, grow a length(orphan)-sized interval on the target host,
// oriented according to whether the terminal read's placement matches its
// orientation within the orphan.
func buildTargetIntervals(orphan *Tig, placed [][]OverlapPlacement) map[TigID][]span {
	orphanLen := orphan.Length()
	fRead := orphan.FirstRead()
	lRead := orphan.LastRead()
	out := make(map[TigID][]span)

	add := func(term ReadPlacement, extendRight bool) {
		for _, pl := range placed[term.Rid] {
			bgn, end := orderedSpan(pl.PositionBgn, pl.PositionEnd)
			plForward := pl.PositionEnd >= pl.PositionBgn
			sameOrientation := plForward == term.IsForward

			var lo, hi int32
			switch {
			case extendRight && sameOrientation:
				lo, hi = bgn, bgn+orphanLen
			case extendRight && !sameOrientation:
				lo, hi = end-orphanLen, end
			case !extendRight && sameOrientation:
				lo, hi = end-orphanLen, end
			default:
				lo, hi = bgn, bgn+orphanLen
			}
			out[pl.TigID] = append(out[pl.TigID], span{lo, hi})
		}
	}
	add(fRead, true)
	add(lRead, false)
	return out
}

// candidatePop is a candidate region of a target tig that an orphan might
// be popped into.
type candidatePop struct {
	orphan TigID
	target TigID
	bgn    int32
	end    int32
	placed []OverlapPlacement
}

// buildCandidatePops is §4.2.5.
func buildCandidatePops(
	orphanID TigID,
	orphanLen int32,
	target *Tig,
	targetID TigID,
	spans []span,
	fRead, lRead ReadPlacement,
	placed [][]OverlapPlacement,
	stats *Stats,
) []*candidatePop {
	var pops []*candidatePop
	for _, sp := range mergeSpans(spans) {
		lo := sp.lo - int32(0.25*float64(orphanLen))
		hi := sp.hi + int32(0.25*float64(orphanLen))
		lo = maxInt32(lo, 0)
		hi = minInt32(hi, target.Length())

		fPos, fOK := findPlacementInInterval(lo, hi, targetID, placed[fRead.Rid])
		lPos, lOK := findPlacementInInterval(lo, hi, targetID, placed[lRead.Rid])
		if !fOK || !lOK {
			log.Debug.Printf("mergeOrphans()-- tig %d interval %d-%d in tig %d lacks a first or last read placement", orphanID, lo, hi, targetID)
			stats.NoPlacements++
			continue
		}

		regionMin := minInt32(fPos.lo, lPos.lo)
		regionMax := maxInt32(fPos.hi, lPos.hi)
		size := float64(regionMax - regionMin)
		if size < 0.75*float64(orphanLen) || size > 1.25*float64(orphanLen) {
			log.Debug.Printf("mergeOrphans()-- tig %d region %d-%d in tig %d has size %d, outside 0.75-1.25 of length %d", orphanID, regionMin, regionMax, targetID, regionMax-regionMin, orphanLen)
			stats.OversizedRegions++
			continue
		}

		pops = append(pops, &candidatePop{orphan: orphanID, target: targetID, bgn: regionMin, end: regionMax})
	}
	return pops
}

func findPlacementInInterval(lo, hi int32, targetID TigID, places []OverlapPlacement) (span, bool) {
	for _, pl := range places {
		if pl.TigID != targetID {
			continue
		}
		b, e := orderedSpan(pl.PositionBgn, pl.PositionEnd)
		if lo <= b && e <= hi {
			return span{b, e}, true
		}
	}
	return span{}, false
}

// assignReadsToTargets is §4.2.6.
func assignReadsToTargets(orphan *Tig, placed [][]OverlapPlacement, pops []*candidatePop) {
	for _, rd := range orphan.Ufpath() {
		for _, pl := range placed[rd.Rid] {
			for _, c := range pops {
				if c.target != pl.TigID {
					continue
				}
				b, e := orderedSpan(pl.PositionBgn, pl.PositionEnd)
				if c.bgn <= b && e <= c.end {
					c.placed = append(c.placed, pl)
				}
			}
		}
	}
	for _, c := range pops {
		c.placed = dedupeLowestErate(c.placed)
	}
}

func dedupeLowestErate(placements []OverlapPlacement) []OverlapPlacement {
	best := make(map[ReadID]OverlapPlacement, len(placements))
	for _, pl := range placements {
		if cur, ok := best[pl.Rid]; !ok || pl.ERate < cur.ERate {
			best[pl.Rid] = pl
		}
	}
	out := make([]OverlapPlacement, 0, len(best))
	for _, pl := range best {
		out = append(out, pl)
	}
	return out
}

// MergeOrphans is C8, the second corrective pass (§4.2): for each candidate
// orphan tig, decide whether it is a uniquely-placed orphan, a bubble, a
// multiply-placed (shattered) tig, or left alone.
func MergeOrphans(tv *TigVector, reads *ReadRegistry, overlaps *OverlapIndex, best *BestEdgeGraph, opts Opts, stats *Stats) error {
	opts.setDefaults(reads.NumReads())
	if err := opts.Validate(); err != nil {
		return err
	}

	potential := findPotentialOrphans(reads, best, overlaps, tv, stats)
	placer := NewPlacer(reads, overlaps, tv)
	placed, err := findOrphanReadPlacements(&opts, reads, overlaps, best, tv, placer, potential)
	if err != nil {
		return err
	}

	for id := TigID(1); id <= tv.MaxTigID(); id++ {
		if _, isCandidate := potential[id]; !isCandidate {
			continue
		}
		orphan := tv.Get(id)
		if orphan == nil {
			continue
		}

		if !placeAnchor(orphan, placed) {
			log.Debug.Printf("mergeOrphans()-- tig %d anchor reads failed to place", id)
			continue
		}

		fRead, lRead := orphan.FirstRead(), orphan.LastRead()
		targetSpans := buildTargetIntervals(orphan, placed)

		var pops []*candidatePop
		for targetID, spans := range targetSpans {
			target := tv.Get(targetID)
			if target == nil {
				log.Error.Printf("mergeOrphans()-- WARNING: orphan %d wants to go into nonexistent tig %d", id, targetID)
				stats.DanglingTargets++
				continue
			}
			pops = append(pops, buildCandidatePops(id, orphan.Length(), target, targetID, spans, fRead, lRead, placed, stats)...)
		}
		if len(pops) == 0 {
			continue
		}

		assignReadsToTargets(orphan, placed, pops)
		applyOrphanVerdict(tv, best, orphan, id, fRead, lRead, pops, placed, stats)
	}

	tv.Sort()
	return nil
}

// applyOrphanVerdict is §4.2.7: tally placed/terminal counts per candidate
// pop and apply the resulting disposition.
func applyOrphanVerdict(
	tv *TigVector,
	best *BestEdgeGraph,
	orphan *Tig,
	id TigID,
	fRead, lRead ReadPlacement,
	pops []*candidatePop,
	placed [][]OverlapPlacement,
	stats *Stats,
) {
	nReads := orphan.Len()
	var nOrphan, nBubble, orphanTargetIdx int

	for i, c := range pops {
		terminalN := 0
		for _, pl := range c.placed {
			if pl.Rid == fRead.Rid || pl.Rid == lRead.Rid {
				terminalN++
			}
		}
		switch {
		case len(c.placed) == nReads:
			nOrphan++
			orphanTargetIdx = i
		case terminalN == 2:
			nBubble++
		}
	}

	switch {
	case nOrphan == 0 && nBubble == 0:
		stats.NoGoodPlacement++
		log.Debug.Printf("mergeOrphans()-- tig %d - no good placements", id)

	case nOrphan == 0 && nBubble > 0:
		orphan.isBubble = true
		for _, rd := range orphan.Ufpath() {
			best.setBubble(rd.Rid)
		}
		stats.Bubbles++
		stats.BubbleReads += nReads
		log.Debug.Printf("mergeOrphans()-- tig %d is a bubble", id)

	case nOrphan == 1:
		c := pops[orphanTargetIdx]
		for _, pl := range c.placed {
			movePlacement(tv, best, pl)
		}
		tv.CleanUp(c.target)
		tv.Delete(id)
		stats.UniqueOrphans++
		stats.UniqueOrphanReads += nReads
		log.Debug.Printf("mergeOrphans()-- tig %d placed uniquely into tig %d", id, c.target)

	default: // nOrphan > 1: shatter across individually-best targets.
		touched := map[TigID]bool{}
		for _, rd := range orphan.Ufpath() {
			var chosen *OverlapPlacement
			for i := range placed[rd.Rid] {
				pl := &placed[rd.Rid][i]
				if pl.TigID == id {
					continue
				}
				if chosen == nil || pl.ERate < chosen.ERate {
					chosen = pl
				}
			}
			if chosen == nil {
				continue
			}
			movePlacement(tv, best, *chosen)
			touched[chosen.TigID] = true
		}
		for targetID := range touched {
			tv.CleanUp(targetID)
		}
		tv.Delete(id)
		stats.ShatteredOrphans++
		stats.ShatteredReads += nReads
		log.Debug.Printf("mergeOrphans()-- tig %d shattered across %d targets", id, len(touched))
	}
}

func movePlacement(tv *TigVector, best *BestEdgeGraph, pl OverlapPlacement) {
	lo, hi := orderedSpan(pl.PositionBgn, pl.PositionEnd)
	tv.AddRead(pl.TigID, ReadPlacement{
		Rid:         pl.Rid,
		PositionMin: lo,
		PositionMax: hi,
		IsForward:   pl.PositionEnd >= pl.PositionBgn,
	})
	best.setOrphan(pl.Rid)
}
