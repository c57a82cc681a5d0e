package tigrefine

import (
	"context"

	"github.com/grailbio/base/errors"
)

// LoadLayout is the external boundary spec §1's Non-goals carve out: reading
// the read store, overlap store, and tig store (C1, C2, C5) plus the
// assembly graph (C4) built from whatever upstream store holds the
// overlap-based layout. This core consumes those structures; it does not
// define their on-disk representation, so this is a deliberate stub at the
// edge of the package's responsibility.
func LoadLayout(ctx context.Context, path string) (*ReadRegistry, *OverlapIndex, *AssemblyGraph, *TigVector, error) {
	return nil, nil, nil, nil, errors.Errorf(
		"tigrefine: LoadLayout: reading %v: read/overlap/tig store format is external to this core (spec §1 Non-goals)", path)
}

// SaveLayout is the matching external boundary for writing the refined tig
// layout back to the tig store (§6).
func SaveLayout(ctx context.Context, path string, tigs *TigVector) error {
	return errors.Errorf(
		"tigrefine: SaveLayout: writing %v: tig store format is external to this core (spec §1 Non-goals)", path)
}
