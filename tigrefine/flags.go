package tigrefine

import "github.com/grailbio/base/bitset"

// readFlags is a dense, append-only bit vector over read ids, one bit per
// read.  It follows the same division of labor as circular.Bitmap: word
// arithmetic for Set is inlined here (as circular.Bitmap.Set does), while
// reads go through github.com/grailbio/base/bitset so the bit-scanning
// primitives stay shared with the rest of the codebase.
//
// Every status this type holds (contained/ignored/covGap/lopsided/spur from
// the best-edges file, and bubble/orphan set during orphan resolution) is
// monotone: once set, a flag is never cleared during a pass, so no Clear
// method is needed.
type readFlags struct {
	bits []uintptr
}

func newReadFlags(numReads int) readFlags {
	nWords := (numReads + bitset.BitsPerWord) / bitset.BitsPerWord
	return readFlags{bits: make([]uintptr, nWords)}
}

func (f readFlags) test(rid ReadID) bool {
	idx := int(rid)
	if idx < 0 || idx/bitset.BitsPerWord >= len(f.bits) {
		return false
	}
	return bitset.Test(f.bits, idx)
}

func (f readFlags) set(rid ReadID) {
	idx := int(rid)
	wordIdx := idx / bitset.BitsPerWord
	f.bits[wordIdx] |= uintptr(1) << uint(idx%bitset.BitsPerWord)
}
