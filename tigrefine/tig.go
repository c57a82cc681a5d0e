package tigrefine

import (
	"sort"

	"github.com/grailbio/base/errors"
)

// TigID identifies a tig within a TigVector.  0 is reserved for "no tig" /
// a tombstoned slot.  Ids are never reused within a run (§3).
type TigID int32

// NoTig is the "none" sentinel tig id.
const NoTig TigID = 0

// ReadPlacement is one read's position within a tig: §3's rule that
// 0 <= PositionMin < PositionMax <= length(tig) is an invariant every
// constructor in this file maintains, never a runtime check.
type ReadPlacement struct {
	Rid         ReadID
	PositionMin int32
	PositionMax int32
	IsForward   bool
}

// Compare orders two placements per the §3 tig invariant: primarily by
// PositionMin ascending, ties broken by PositionMax descending.  It follows
// the tri-state Compare/LT shape biopb.Coord.Compare uses for BAM coordinate
// ordering, rather than a bare boolean less-than, so the same method can
// back both Tig.sort's comparator and any future binary search over ufpath.
func (p ReadPlacement) Compare(o ReadPlacement) int {
	if p.PositionMin != o.PositionMin {
		return int(p.PositionMin - o.PositionMin)
	}
	return int(o.PositionMax - p.PositionMax)
}

// LT returns true iff p sorts strictly before o under Compare.
func (p ReadPlacement) LT(o ReadPlacement) bool { return p.Compare(o) < 0 }

// Tig is an ordered layout of reads with approximate coordinates (§3).
type Tig struct {
	id     TigID
	ufpath []ReadPlacement
	length int32

	isUnassembled bool
	isBubble      bool
	isCircular    bool
	isRepeat      bool
}

// ID returns the tig's stable id.
func (t *Tig) ID() TigID { return t.id }

// Len returns the number of reads placed in the tig.
func (t *Tig) Len() int { return len(t.ufpath) }

// Length returns the cached tig length (§3 rule 2: max PositionMax).
func (t *Tig) Length() int32 { return t.length }

// Ufpath exposes the read placements in path order.  Callers must not
// mutate the returned slice; TigVector.AddRead, Tig.sort and
// Tig.reverseComplement are the only ways to change it so inUnitig stays
// consistent.
func (t *Tig) Ufpath() []ReadPlacement { return t.ufpath }

// FirstRead returns ufpath[0] (§3 rule 4).
func (t *Tig) FirstRead() ReadPlacement { return t.ufpath[0] }

// LastRead returns ufpath[len-1] (§3 rule 4).
func (t *Tig) LastRead() ReadPlacement { return t.ufpath[len(t.ufpath)-1] }

// IsUnassembled, IsBubble, IsCircular, IsRepeat expose the tig's flag bits,
// mirroring tgTig's _class/_suggestBubble/_suggestCircular/_suggestRepeat
// packed fields (see tgTig.H); this core keeps them as plain booleans and
// leaves the bit-packing to the (out-of-scope) tig store serializer.
func (t *Tig) IsUnassembled() bool { return t.isUnassembled }
func (t *Tig) IsBubble() bool      { return t.isBubble }
func (t *Tig) IsCircular() bool    { return t.isCircular }
func (t *Tig) IsRepeat() bool      { return t.isRepeat }

// SetUnassembled marks the tig as unassembled, exempting it from both
// passes (§4.1.1, §8 "boundary behaviours").
func (t *Tig) SetUnassembled(v bool) { t.isUnassembled = v }

// recomputeLength recomputes the cached length from the current ufpath.
func (t *Tig) recomputeLength() {
	var max int32
	for _, p := range t.ufpath {
		if p.PositionMax > max {
			max = p.PositionMax
		}
	}
	t.length = max
}

// sort re-establishes the tig invariant (§3 rule 1): primarily by
// PositionMin ascending; ties broken by PositionMax descending.  The spec
// additionally asks that "an anchor precedes any placement anchored on it"
// — since a container's span always extends at least as far as anything
// anchored on it, descending-PositionMax already puts the anchor first
// whenever they share a PositionMin, so no separate anchor lookup is
// needed here.
func (t *Tig) sort() {
	sort.SliceStable(t.ufpath, func(i, j int) bool {
		return t.ufpath[i].LT(t.ufpath[j])
	})
}

// cleanUp re-sorts ufpath and recomputes length; called after every
// append-heavy mutation (new tig construction, splits, orphan merges), the
// same way the original calls Unitig::cleanUp().
func (t *Tig) cleanUp() {
	t.sort()
	t.recomputeLength()
}

// reverseComplement flips the tig end for end: every placement's
// orientation inverts and its coordinates mirror around the tig length, and
// path order reverses.  Used by the dead-end trimmer to evaluate the last
// read using the same "first read" logic (§9, "Coordinate-frame flip").
// Applying it twice is a no-op (§8 round-trip law).
func (t *Tig) reverseComplement() {
	n := t.length
	for i := range t.ufpath {
		p := &t.ufpath[i]
		p.PositionMin, p.PositionMax = n-p.PositionMax, n-p.PositionMin
		p.IsForward = !p.IsForward
	}
	for i, j := 0, len(t.ufpath)-1; i < j; i, j = i+1, j-1 {
		t.ufpath[i], t.ufpath[j] = t.ufpath[j], t.ufpath[i]
	}
}

// TigVector is C5's container: a tombstone-friendly mapping from tig-id to
// tig, plus the inverse inUnitig index.  Tig-ids are assigned sequentially
// and never reused within a run (§3); slot 0 is never used so TigID zero
// can serve as the "no tig" sentinel.
type TigVector struct {
	tigs     []*Tig
	inUnitig []TigID
}

// NewTigVector allocates an empty vector whose inUnitig index is sized for
// numReads reads.
func NewTigVector(numReads int) *TigVector {
	return &TigVector{
		tigs:     make([]*Tig, 1), // index 0 unused
		inUnitig: make([]TigID, numReads+1),
	}
}

// NewTig allocates a new, empty, non-unassembled tig and returns its id.
func (tv *TigVector) NewTig() TigID {
	id := TigID(len(tv.tigs))
	tv.tigs = append(tv.tigs, &Tig{id: id})
	return id
}

// Get returns the tig for id, or nil if id is NoTig or has been deleted.
func (tv *TigVector) Get(id TigID) *Tig {
	if id <= NoTig || int(id) >= len(tv.tigs) {
		return nil
	}
	return tv.tigs[id]
}

// InUnitig returns the id of the tig currently holding rid, or NoTig.
func (tv *TigVector) InUnitig(rid ReadID) TigID {
	return tv.inUnitig[rid]
}

// MaxTigID returns the largest tig id ever allocated (including tombstoned
// ones), so callers can iterate "for id := TigID(1); id <= tv.MaxTigID();
// id++" in ascending tig-id order, per §5's ordering guarantee.
func (tv *TigVector) MaxTigID() TigID {
	return TigID(len(tv.tigs) - 1)
}

// AddRead appends p to id's tig and updates inUnitig.  The caller is
// responsible for p's coordinates already being in the destination tig's
// frame (the Go equivalent of the original's addRead(read, offset) — here
// the offset is folded into p before the call, rather than passed
// separately).
func (tv *TigVector) AddRead(id TigID, p ReadPlacement) {
	t := tv.tigs[id]
	t.ufpath = append(t.ufpath, p)
	if p.PositionMax > t.length {
		t.length = p.PositionMax
	}
	tv.inUnitig[p.Rid] = id
}

// CleanUp re-sorts and recomputes the length of the tig at id.
func (tv *TigVector) CleanUp(id TigID) {
	if t := tv.Get(id); t != nil {
		t.cleanUp()
	}
}

// Sort re-establishes the tig invariant on every live, non-singleton tig
// (§4.2.8, "after all tigs are processed").
func (tv *TigVector) Sort() {
	for _, t := range tv.tigs {
		if t != nil && len(t.ufpath) > 1 {
			t.sort()
		}
	}
}

// Delete tombstones id.  Callers must have already moved every read placed
// in this tig to its new home (AddRead on another tig id), since Delete does
// not touch inUnitig itself.
func (tv *TigVector) Delete(id TigID) {
	tv.tigs[id] = nil
}

// Validate checks the InconsistentTigVector invariant (§7): every live tig's
// ufpath entries must agree with inUnitig, and vice versa.  It is not called
// on every mutation — that would mean an O(n) scan per AddRead — but is
// available for the CLI and tests to run between passes, the way the
// original's checkUnitigMembership() assertion is a separate diagnostic
// pass rather than inlined into addRead().
func (tv *TigVector) Validate() error {
	seen := make(map[ReadID]TigID, len(tv.inUnitig))
	for id, t := range tv.tigs {
		if t == nil {
			continue
		}
		for _, p := range t.ufpath {
			if other, ok := seen[p.Rid]; ok {
				return errors.Errorf("tigrefine: InconsistentTigVector: read %d placed in both tig %d and tig %d", p.Rid, other, id)
			}
			seen[p.Rid] = TigID(id)
			if tv.inUnitig[p.Rid] != TigID(id) {
				return errors.Errorf("tigrefine: InconsistentTigVector: read %d is in tig %d's ufpath but inUnitig says %d", p.Rid, id, tv.inUnitig[p.Rid])
			}
		}
	}
	for rid, id := range tv.inUnitig {
		if id == NoTig {
			continue
		}
		t := tv.Get(id)
		if t == nil {
			return errors.Errorf("tigrefine: InconsistentTigVector: inUnitig(%d)=%d but tig %d is tombstoned", rid, id, id)
		}
		if _, ok := FindPlacement(t, ReadID(rid)); !ok {
			return errors.Errorf("tigrefine: InconsistentTigVector: inUnitig(%d)=%d but tig %d does not contain it", rid, id, id)
		}
	}
	return nil
}

// FindPlacement returns rid's placement within t and whether it was found.
// ufpath is typically small, so linear scan is used rather than maintaining
// a secondary per-tig index.
func FindPlacement(t *Tig, rid ReadID) (ReadPlacement, bool) {
	for _, p := range t.ufpath {
		if p.Rid == rid {
			return p, true
		}
	}
	return ReadPlacement{}, false
}
