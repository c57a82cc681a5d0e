package tigrefine

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

// buildTig is a test helper: creates a tig in tv from placements given in
// path order, already laid out with correct coordinates.
func buildTig(tv *TigVector, placements ...ReadPlacement) TigID {
	id := tv.NewTig()
	for _, p := range placements {
		tv.AddRead(id, p)
	}
	tv.CleanUp(id)
	return id
}

// TestDropDeadEndsS1 is spec scenario S1: a clean dead end at the head.
func TestDropDeadEndsS1(t *testing.T) {
	tv := NewTigVector(3)
	id := buildTig(tv,
		ReadPlacement{Rid: 1, PositionMin: 0, PositionMax: 1000, IsForward: true},    // A
		ReadPlacement{Rid: 2, PositionMin: 500, PositionMax: 1500, IsForward: true},  // B
		ReadPlacement{Rid: 3, PositionMin: 1000, PositionMax: 2000, IsForward: true}, // C
	)

	ag := NewAssemblyGraph(3)
	// A (rid 1) has no best-5', no containment, no best-3': an empty
	// placements list already conveys this (dropDeadFirstRead finds no edges
	// for it at all).
	// B (rid 2) has best5 = C (rid 3).
	ag.Add(2, BestPlacement{Best5: 3})

	stats := &Stats{}
	DropDeadEnds(ag, tv, stats)

	expect.Nil(t, tv.Get(id))
	expect.EQ(t, stats.TigsSplit, 1)

	var firstTig, restTig *Tig
	for newID := TigID(2); newID <= tv.MaxTigID(); newID++ {
		if tig := tv.Get(newID); tig != nil {
			if tig.Len() == 1 {
				firstTig = tig
			} else {
				restTig = tig
			}
		}
	}

	expect.NotNil(t, firstTig)
	expect.EQ(t, firstTig.Ufpath()[0].Rid, ReadID(1))

	expect.NotNil(t, restTig)
	expect.EQ(t, restTig.Len(), 2)
	expect.EQ(t, restTig.Ufpath()[0].Rid, ReadID(2))
	expect.EQ(t, restTig.Ufpath()[0].PositionMin, int32(0))
	expect.EQ(t, restTig.Ufpath()[1].Rid, ReadID(3))
	expect.EQ(t, restTig.Ufpath()[1].PositionMin, int32(500))
}

// TestDropDeadEndsS2 is spec scenario S2: a read spanning the whole tig
// leaves both ends with no qualifying next-read edge evidence, so fn == ln
// == NoRead and the tig is left unchanged.
func TestDropDeadEndsS2(t *testing.T) {
	tv := NewTigVector(2)
	id := buildTig(tv,
		ReadPlacement{Rid: 1, PositionMin: 0, PositionMax: 5000, IsForward: true},  // X
		ReadPlacement{Rid: 2, PositionMin: 100, PositionMax: 200, IsForward: true}, // Y
	)

	ag := NewAssemblyGraph(2) // No edges anywhere: both ends look like dead ends.
	stats := &Stats{}
	DropDeadEnds(ag, tv, stats)

	expect.NotNil(t, tv.Get(id))
	expect.EQ(t, tv.Get(id).Len(), 2)
	expect.EQ(t, stats.TigsSplit, 0)
}

func TestDropDeadEndsSkipsSingletonsAndUnassembled(t *testing.T) {
	tv := NewTigVector(3)
	singleton := buildTig(tv, ReadPlacement{Rid: 1, PositionMin: 0, PositionMax: 100, IsForward: true})

	unassembled := tv.NewTig()
	tv.AddRead(unassembled, ReadPlacement{Rid: 2, PositionMin: 0, PositionMax: 100, IsForward: true})
	tv.AddRead(unassembled, ReadPlacement{Rid: 3, PositionMin: 50, PositionMax: 300, IsForward: true})
	tv.CleanUp(unassembled)
	tv.Get(unassembled).SetUnassembled(true)

	ag := NewAssemblyGraph(3)
	stats := &Stats{}
	DropDeadEnds(ag, tv, stats)

	expect.NotNil(t, tv.Get(singleton))
	expect.NotNil(t, tv.Get(unassembled))
	expect.EQ(t, stats.TigsSplit, 0)
}

// TestDropDeadEndsFixedPoint is the §8 round-trip law: a second run over the
// output of the first performs no further splits.
func TestDropDeadEndsFixedPoint(t *testing.T) {
	tv := NewTigVector(3)
	buildTig(tv,
		ReadPlacement{Rid: 1, PositionMin: 0, PositionMax: 1000, IsForward: true},
		ReadPlacement{Rid: 2, PositionMin: 500, PositionMax: 1500, IsForward: true},
		ReadPlacement{Rid: 3, PositionMin: 1000, PositionMax: 2000, IsForward: true},
	)
	ag := NewAssemblyGraph(3)
	ag.Add(2, BestPlacement{Best5: 3})

	stats := &Stats{}
	DropDeadEnds(ag, tv, stats)
	expect.EQ(t, stats.TigsSplit, 1)

	second := &Stats{}
	DropDeadEnds(ag, tv, second)
	expect.EQ(t, second.TigsSplit, 0)
}
