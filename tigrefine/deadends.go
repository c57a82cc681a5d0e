package tigrefine

import "github.com/grailbio/base/log"

// findNextRead implements §4.1.2: scanning forward from index i in t's
// ufpath, return the first read that either dovetail-extends fn or is a
// contained read that isn't isolated.  Mirrors AS_BAT_DropDeadEnds.C's
// findNextRead exactly, including its two-line lookahead for containment.
func findNextRead(t *Tig, i int) (ReadPlacement, bool) {
	fn := t.ufpath[i]
	for j := i + 1; j < len(t.ufpath); j++ {
		nn := t.ufpath[j]

		//  If nn is dovetail, return it.
		//      fn       -----------
		//      nn             ---------
		if fn.PositionMax < nn.PositionMax {
			return nn, true
		}

		//  Otherwise, if it intersects the next-next read, return it.
		//      fn       ----------------------
		//      nn             ---------
		//      next-next             -------
		if j+1 < len(t.ufpath) && t.ufpath[j+1].PositionMin < nn.PositionMax {
			return nn, true
		}
	}
	return ReadPlacement{}, false
}

// dropDeadFirstRead decides whether t's first read is a dead end, per
// §4.1.3.  It returns the rid to excise, or NoRead to keep it.
func dropDeadFirstRead(ag *AssemblyGraph, t *Tig) ReadID {
	fn := t.FirstRead()

	sn, ok := findNextRead(t, 0)
	if !ok {
		return NoRead
	}

	fnEdges := ag.Placements(fn.Rid)
	if len(fnEdges) == 0 {
		log.Debug.Printf("dropDead()-- 1st read %d has no edges", fn.Rid)
	}
	for _, bp := range fnEdges {
		if bp.BestC != NoRead {
			return NoRead
		}
		outEdge := bp.Best3
		if fn.IsForward {
			outEdge = bp.Best5
		}
		if outEdge != NoRead {
			return NoRead
		}
	}

	snEdges := ag.Placements(sn.Rid)
	if len(snEdges) == 0 {
		log.Debug.Printf("dropDead()-- 2nd read %d has no edges - keep first", sn.Rid)
		return NoRead
	}
	for _, bp := range snEdges {
		if bp.BestC != NoRead && bp.BestC != fn.Rid {
			return fn.Rid
		}
		outEdge := bp.Best3
		if sn.IsForward {
			outEdge = bp.Best5
		}
		if outEdge != NoRead && outEdge != fn.Rid {
			return fn.Rid
		}
	}

	return NoRead
}

// DropDeadEnds is C7, the first corrective pass (§4.1).  It mutates tv in
// place: a tig whose first and/or last read is judged a dead end is split
// into up to three new tigs, and the original slot is tombstoned.
func DropDeadEnds(ag *AssemblyGraph, tv *TigVector, stats *Stats) {
	maxID := tv.MaxTigID()
	for id := TigID(1); id <= maxID; id++ {
		t := tv.Get(id)
		if t == nil || t.Len() <= 1 || t.IsUnassembled() {
			continue
		}

		fn := dropDeadFirstRead(ag, t)

		t.reverseComplement()
		ln := dropDeadFirstRead(ag, t)
		t.reverseComplement()

		if fn == NoRead && ln == NoRead {
			continue
		}
		if fn == ln {
			log.Debug.Printf("dropDead()-- retaining spanning read %d in tig %d", fn, id)
			continue
		}

		splitDeadEndTig(tv, id, t, fn, ln, stats)
	}
}

// splitDeadEndTig performs §4.1.4: allocate up to three destination tigs,
// move every read from the original into the right one (coordinate
// normalised so each destination's first placement starts at 0), clean each
// up, and tombstone the original.
func splitDeadEndTig(tv *TigVector, id TigID, t *Tig, fn, ln ReadID, stats *Stats) {
	var fnTig, nnTig, lnTig TigID
	if fn != NoRead {
		fnTig = tv.NewTig()
	}
	if t.Len() > boolToInt(fn != NoRead)+boolToInt(ln != NoRead) {
		nnTig = tv.NewTig()
	}
	if ln != NoRead {
		lnTig = tv.NewTig()
	}

	stats.TigsSplit++
	if fnTig != NoTig {
		stats.FirstReadsDrop++
	}
	if lnTig != NoTig {
		stats.LastReadsDrop++
	}
	if fnTig != NoTig && lnTig != NoTig {
		stats.BothEndsDrop++
	}

	nnOffsetSet := false
	var nnOffset int32

	for _, p := range t.ufpath {
		switch p.Rid {
		case fn:
			tv.AddRead(fnTig, normalize(p, p.PositionMin))
		case ln:
			tv.AddRead(lnTig, normalize(p, p.PositionMin))
		default:
			if !nnOffsetSet {
				nnOffset = p.PositionMin
				nnOffsetSet = true
			}
			tv.AddRead(nnTig, normalize(p, nnOffset))
		}
	}

	if fnTig != NoTig {
		tv.CleanUp(fnTig)
	}
	if lnTig != NoTig {
		tv.CleanUp(lnTig)
	}
	if nnTig != NoTig {
		tv.CleanUp(nnTig)
	}

	log.Debug.Printf("dropDead()-- split tig %d into first=%d middle=%d last=%d", id, fnTig, nnTig, lnTig)
	tv.Delete(id)
}

// normalize shifts p so that its coordinates are relative to offset, the
// positionMin of the first read moved into its new destination tig (§4.1.4:
// "coordinate-normalised so its first placement starts at 0").
func normalize(p ReadPlacement, offset int32) ReadPlacement {
	p.PositionMin -= offset
	p.PositionMax -= offset
	return p
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
