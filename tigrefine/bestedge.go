package tigrefine

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
)

// BestEdgeGraph is C3: for each read, its best 5'/3'/containing overlap, and
// the five read-only status bits loaded from the best-edges file (§6),
// packed as "CIGLS": Contained, Ignored, covGap, Lopsided, Spur.  Bubble and
// Orphan are the two mutable bits this core itself writes, via SetBubble and
// SetOrphan; per §5 they are idempotent and commutative, so a plain readFlags
// set is safe for the single control thread that calls them.
type BestEdgeGraph struct {
	best5     []ReadID
	best3     []ReadID
	contained readFlags
	ignored   readFlags
	covGap    readFlags
	lopsided  readFlags
	spur      readFlags
	bubble    readFlags
	orphan    readFlags
}

// NewBestEdgeGraph allocates an empty graph sized for numReads, equivalent to
// the "missing file ⇒ empty status table" case in §6.
func NewBestEdgeGraph(numReads int) *BestEdgeGraph {
	return &BestEdgeGraph{
		best5:     make([]ReadID, numReads+1),
		best3:     make([]ReadID, numReads+1),
		contained: newReadFlags(numReads + 1),
		ignored:   newReadFlags(numReads + 1),
		covGap:    newReadFlags(numReads + 1),
		lopsided:  newReadFlags(numReads + 1),
		spur:      newReadFlags(numReads + 1),
		bubble:    newReadFlags(numReads + 1),
		orphan:    newReadFlags(numReads + 1),
	}
}

// Best5 returns rid's best 5' overlap partner, or NoRead.
func (g *BestEdgeGraph) Best5(rid ReadID) ReadID { return g.best5[rid] }

// Best3 returns rid's best 3' overlap partner, or NoRead.
func (g *BestEdgeGraph) Best3(rid ReadID) ReadID { return g.best3[rid] }

// bestEdgeExists reports whether rid has a best overlap on its 3' (if
// threePrime) or 5' end.
func (g *BestEdgeGraph) bestEdgeExists(rid ReadID, threePrime bool) bool {
	if threePrime {
		return g.best3[rid] != NoRead
	}
	return g.best5[rid] != NoRead
}

// isContained reports the read-only Contained status bit loaded from the
// best-edges file.
func (g *BestEdgeGraph) isContained(rid ReadID) bool { return g.contained.test(rid) }

// IsIgnored, IsCovGap, IsLopsided, IsSpur expose the remaining CIGLS bits;
// this core only filters/annotates on them, per the GLOSSARY.
func (g *BestEdgeGraph) IsIgnored(rid ReadID) bool  { return g.ignored.test(rid) }
func (g *BestEdgeGraph) IsCovGap(rid ReadID) bool   { return g.covGap.test(rid) }
func (g *BestEdgeGraph) IsLopsided(rid ReadID) bool { return g.lopsided.test(rid) }
func (g *BestEdgeGraph) IsSpur(rid ReadID) bool     { return g.spur.test(rid) }

// IsBubble and IsOrphan expose the mutable markers this core writes.
func (g *BestEdgeGraph) IsBubble(rid ReadID) bool { return g.bubble.test(rid) }
func (g *BestEdgeGraph) IsOrphan(rid ReadID) bool { return g.orphan.test(rid) }

// setBubble marks rid as belonging to a bubble tig.  Monotone: never
// unmarked once set (§8 invariant).
func (g *BestEdgeGraph) setBubble(rid ReadID) { g.bubble.set(rid) }

// setOrphan marks rid as having been moved out of an orphan tig.
func (g *BestEdgeGraph) setOrphan(rid ReadID) { g.orphan.set(rid) }

// LoadBestEdges parses the best-edges file format from §6.  An empty path is
// not an error: it yields the same empty status table a caller would get by
// calling NewBestEdgeGraph directly (§6, "Missing file ⇒ empty status
// table" — read as "no file configured").  A configured-but-unreadable or
// malformed file is the fatal *MissingBestEdges* condition from §7 and is
// returned as an error for the caller to log.Fatalf on.
//
// Each line is whitespace-separated:
//
//	rid len CIGLS [M|-] best5rid best5flags best3rid best3flags
//
// The mutual-best marker column is optional on a per-line basis: when the
// token immediately after the status word is not literally "M" or "-", it is
// absent and every following column shifts one to the left (best-3' rid
// loses its marker-relative offset, per spec §6). This is the natural
// reading of an otherwise-ambiguous format note; see DESIGN.md.
func LoadBestEdges(path string, numReads int) (*BestEdgeGraph, error) {
	g := NewBestEdgeGraph(numReads)
	if path == "" {
		return g, nil
	}

	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Errorf("tigrefine: MissingBestEdges: opening %v: %v", path, err)
	}
	defer f.Close(ctx) // nolint: errcheck

	scanner := bufio.NewScanner(f.Reader(ctx))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: too few fields: %q", path, lineNo, line)
		}

		rid, err := parseReadID(fields[0])
		if err != nil {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: bad rid: %v", path, lineNo, err)
		}
		length, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: bad length: %v", path, lineNo, err)
		}
		status := fields[2]
		if len(status) != 5 {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: status word %q must be 5 characters", path, lineNo, status)
		}

		rest := fields[3:]
		if len(rest) > 0 && rest[0] != "M" && rest[0] != "-" {
			// No marker column on this line; don't consume one.
		} else if len(rest) > 0 {
			rest = rest[1:]
		}
		if len(rest) != 4 {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: expected 4 best-edge columns, got %d", path, lineNo, len(rest))
		}

		best5, err := parseReadID(rest[0])
		if err != nil {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: bad best5 rid: %v", path, lineNo, err)
		}
		best3, err := parseReadID(rest[2])
		if err != nil {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: bad best3 rid: %v", path, lineNo, err)
		}

		if int(rid) >= len(g.best5) {
			return nil, errors.Errorf("tigrefine: MissingBestEdges: %v:%d: rid %d exceeds numReads %d", path, lineNo, rid, numReads)
		}

		g.best5[rid] = best5
		g.best3[rid] = best3
		_ = length // length lives in ReadRegistry; this core only uses status bits here.

		applyStatusWord(g, rid, status)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("tigrefine: MissingBestEdges: reading %v: %v", path, err)
	}
	return g, nil
}

func applyStatusWord(g *BestEdgeGraph, rid ReadID, status string) {
	if status[0] != '-' {
		g.contained.set(rid)
	}
	if status[1] != '-' {
		g.ignored.set(rid)
	}
	if status[2] != '-' {
		g.covGap.set(rid)
	}
	if status[3] != '-' {
		g.lopsided.set(rid)
	}
	if status[4] != '-' {
		g.spur.set(rid)
	}
}

func parseReadID(s string) (ReadID, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return ReadID(v), nil
}
