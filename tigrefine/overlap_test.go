package tigrefine

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestOverlapCategories(t *testing.T) {
	tests := []struct {
		name       string
		ov         Overlap
		dovetail5  bool
		dovetail3  bool
		aContained bool
		aContainer bool
	}{
		{"dovetail 5'", Overlap{AHang: -10, BHang: -5}, true, false, false, false},
		{"dovetail 3'", Overlap{AHang: 10, BHang: 5}, false, true, false, false},
		{"a contained in b", Overlap{AHang: 5, BHang: -5}, false, false, true, false},
		{"b contained in a", Overlap{AHang: -5, BHang: 5}, false, false, false, true},
		{"flush containment", Overlap{AHang: 0, BHang: 0}, false, false, true, true},
	}
	for _, tc := range tests {
		expect.EQ(t, tc.ov.IsDovetail5(), tc.dovetail5, "case", tc.name)
		expect.EQ(t, tc.ov.IsDovetail3(), tc.dovetail3, "case", tc.name)
		expect.EQ(t, tc.ov.AContained(), tc.aContained, "case", tc.name)
		expect.EQ(t, tc.ov.AContainer(), tc.aContainer, "case", tc.name)
	}
}

func TestOverlapMirror(t *testing.T) {
	ov := Overlap{A: 1, B: 2, AHang: -30, BHang: 10, Flipped: false, ERate: 0.02, Length: 500}
	m := ov.mirror()
	expect.EQ(t, m.A, ReadID(2))
	expect.EQ(t, m.B, ReadID(1))
	expect.EQ(t, m.AHang, int32(30))
	expect.EQ(t, m.BHang, int32(-10))
	expect.EQ(t, m.ERate, 0.02)
	expect.EQ(t, m.Length, int32(500))

	flipped := Overlap{A: 1, B: 2, AHang: -30, BHang: 10, Flipped: true}
	mf := flipped.mirror()
	expect.EQ(t, mf.AHang, int32(10))
	expect.EQ(t, mf.BHang, int32(-30))
	expect.True(t, mf.Flipped)
}

func TestOverlapIndexAddSymmetric(t *testing.T) {
	idx := NewOverlapIndex()
	ov := Overlap{A: 1, B: 2, AHang: -20, BHang: 5, ERate: 0.01, Length: 300}
	idx.AddSymmetric(ov)

	aSide := idx.OverlapsOf(1)
	expect.EQ(t, len(aSide), 1)
	expect.EQ(t, aSide[0].A, ReadID(1))
	expect.EQ(t, aSide[0].B, ReadID(2))

	bSide := idx.OverlapsOf(2)
	expect.EQ(t, len(bSide), 1)
	expect.EQ(t, bSide[0].A, ReadID(2))
	expect.EQ(t, bSide[0].B, ReadID(1))
	expect.EQ(t, bSide[0].AHang, int32(20))
	expect.EQ(t, bSide[0].BHang, int32(-5))

	expect.EQ(t, len(idx.OverlapsOf(3)), 0)
}
