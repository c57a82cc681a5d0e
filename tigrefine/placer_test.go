package tigrefine

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestPlaceRelativeToForwardHost(t *testing.T) {
	// Host read s is forward in its tig at [100, 600). r contains s
	// (AHang<=0, BHang>=0 in r's frame).
	s := ReadPlacement{Rid: 2, PositionMin: 100, PositionMax: 600, IsForward: true}
	ov := Overlap{A: 1, B: 2, AHang: -50, BHang: 100}

	lo, hi, forward := placeRelativeTo(s, ov)
	expect.EQ(t, lo, int32(50))
	expect.EQ(t, hi, int32(700))
	expect.True(t, forward)
}

func TestPlaceRelativeToReverseHost(t *testing.T) {
	// Host read s is reverse in its tig; its native 5' end is at PositionMax.
	s := ReadPlacement{Rid: 2, PositionMin: 100, PositionMax: 600, IsForward: false}
	ov := Overlap{A: 1, B: 2, AHang: -50, BHang: 100}

	lo, hi, forward := placeRelativeTo(s, ov)
	// dir = -1, b5 = PositionMax (600), b3 = PositionMin (100).
	// a5 = 600 + (-1)*(-50) = 650, a3 = 100 + (-1)*100 = 0.
	expect.EQ(t, lo, int32(0))
	expect.EQ(t, hi, int32(650))
	expect.False(t, forward)
}

func TestPlaceRelativeToFlipped(t *testing.T) {
	s := ReadPlacement{Rid: 2, PositionMin: 100, PositionMax: 600, IsForward: true}
	ov := Overlap{A: 1, B: 2, AHang: -50, BHang: 100, Flipped: true}

	// Flipped swaps which hang maps to which end: a3 = b5+aHang, a5 = b3+bHang.
	lo, hi, forward := placeRelativeTo(s, ov)
	expect.EQ(t, lo, int32(50))
	expect.EQ(t, hi, int32(700))
	expect.False(t, forward)
}

func TestPlacerPlaceNoExtend(t *testing.T) {
	reads := NewReadRegistry(2)
	reads.SetLength(1, 650)

	overlaps := NewOverlapIndex()
	overlaps.AddSymmetric(Overlap{A: 1, B: 2, AHang: -50, BHang: 100, ERate: 0.02, Length: 600})

	tv := NewTigVector(2)
	hostID := tv.NewTig()
	tv.AddRead(hostID, ReadPlacement{Rid: 2, PositionMin: 100, PositionMax: 600, IsForward: true})
	tv.CleanUp(hostID)

	placer := NewPlacer(reads, overlaps, tv)

	// [50, 700) falls outside the host tig's [0, 600) length, so noExtend
	// rejects it.
	placements := placer.Place(1, true)
	expect.EQ(t, len(placements), 0)

	placements = placer.Place(1, false)
	expect.EQ(t, len(placements), 1)
	expect.EQ(t, placements[0].TigID, hostID)
	expect.EQ(t, placements[0].PositionBgn, int32(50))
	expect.EQ(t, placements[0].PositionEnd, int32(700))
}

func TestPlacerPlaceWithinBounds(t *testing.T) {
	reads := NewReadRegistry(2)
	reads.SetLength(1, 200)

	overlaps := NewOverlapIndex()
	// r (rid 1) is contained within the host read, well within [0, 900).
	overlaps.AddSymmetric(Overlap{A: 1, B: 2, AHang: 50, BHang: -250, ERate: 0.01, Length: 200})

	tv := NewTigVector(2)
	hostID := tv.NewTig()
	tv.AddRead(hostID, ReadPlacement{Rid: 2, PositionMin: 0, PositionMax: 900, IsForward: true})
	tv.CleanUp(hostID)

	placer := NewPlacer(reads, overlaps, tv)
	placements := placer.Place(1, true)
	expect.EQ(t, len(placements), 1)
	expect.EQ(t, placements[0].PositionBgn, int32(50))
	expect.EQ(t, placements[0].PositionEnd, int32(650))
}
