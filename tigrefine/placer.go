package tigrefine

// OverlapPlacement is the result of placing a read against an existing tig
// via an overlap to one of that tig's already-placed reads (§3).
// Orientation is encoded in the sign of PositionEnd-PositionBgn: positive
// means forward, negative means reverse.
type OverlapPlacement struct {
	Rid         ReadID
	TigID       TigID
	PositionBgn int32
	PositionEnd int32
	ERate       float64
	FCoverage   float64
}

// Placer is C6: given a read and a "no-extend" policy, it returns every
// placement where the read can be laid against existing tigs using only
// overlaps to reads already placed in those tigs.  It is purely functional
// with respect to §3 state — it never mutates the TigVector, registry,
// overlap index, or assembly graph it is handed.
type Placer struct {
	reads    *ReadRegistry
	overlaps *OverlapIndex
	tigs     *TigVector
}

// NewPlacer builds a Placer over the given read-only collaborators.
func NewPlacer(reads *ReadRegistry, overlaps *OverlapIndex, tigs *TigVector) *Placer {
	return &Placer{reads: reads, overlaps: overlaps, tigs: tigs}
}

// Place returns one placement of r for each of r's overlaps to a read that is
// already placed in a tig; r's own tig is not excluded, so callers filter it
// out where they need to.  When
// noExtend is true (the only mode §4.2.2 uses), a placement that would fall
// outside [0, length(tig)) is discarded rather than returned, since laying
// r there would require growing the host tig.
func (p *Placer) Place(r ReadID, noExtend bool) []OverlapPlacement {
	var out []OverlapPlacement
	rLen := p.reads.Len(r)

	for _, ov := range p.overlaps.OverlapsOf(r) {
		hostID := p.tigs.InUnitig(ov.B)
		if hostID == NoTig {
			continue
		}
		host := p.tigs.Get(hostID)
		if host == nil {
			continue
		}
		sPlacement, ok := FindPlacement(host, ov.B)
		if !ok {
			continue
		}

		lo, hi, forward := placeRelativeTo(sPlacement, ov)
		if noExtend && (lo < 0 || hi > host.Length()) {
			continue
		}

		bgn, end := lo, hi
		if !forward {
			bgn, end = hi, lo
		}

		fCoverage := 1.0
		if rLen > 0 {
			fCoverage = float64(ov.Length) / float64(rLen)
			if fCoverage > 1 {
				fCoverage = 1
			}
		}

		out = append(out, OverlapPlacement{
			Rid:         r,
			TigID:       hostID,
			PositionBgn: bgn,
			PositionEnd: end,
			ERate:       ov.ERate,
			FCoverage:   fCoverage,
		})
	}
	return out
}

// placeRelativeTo computes the tig-coordinate span implied for ov.A (the
// read being placed) given ov.B's already-known placement s within its tig,
// following the overlap's hang/flipped convention (§3).  It returns the
// span as (lo, hi) with lo <= hi, plus whether ov.A ends up forward in the
// tig; the caller re-derives PositionBgn/PositionEnd's sign from that.
//
// s.PositionMin/PositionMax mark where ov.B's natural 5'/3' ends land in tig
// coordinates depending on s.IsForward; the hangs then walk outward from
// whichever end they're defined against, with the flipped case swapping
// which hang corresponds to which end (reverse-complementing ov.B exchanges
// its 5' and 3' sides).
func placeRelativeTo(s ReadPlacement, ov Overlap) (lo, hi int32, forward bool) {
	b5, b3 := s.PositionMin, s.PositionMax
	dir := int32(1)
	if !s.IsForward {
		b5, b3 = s.PositionMax, s.PositionMin
		dir = -1
	}

	var a5, a3 int32
	if !ov.Flipped {
		a5 = b5 + dir*ov.AHang
		a3 = b3 + dir*ov.BHang
	} else {
		a3 = b5 + dir*ov.AHang
		a5 = b3 + dir*ov.BHang
	}

	if a5 <= a3 {
		return a5, a3, true
	}
	return a3, a5, false
}
