package tigrefine

import (
	"runtime"

	"github.com/grailbio/base/errors"
)

// Opts carries the tunable parameters for the two correction passes.  It
// follows the same shape as fusion.Opts and pileup/snp.Opts: a plain struct
// with a setDefaults method and a Validate method, filled in by the CLI
// wrapper and passed straight through to the pass entrypoints.
type Opts struct {
	// BestEdgesPath is the path to the whitespace-separated best-edges file
	// described in spec §6.  An empty path is not an error, and Validate does
	// not check the path at all: a path that is set but unreadable is reported
	// by the loader (MissingBestEdges is a load-time error, not a config error).
	BestEdgesPath string

	// Deviation is the number of standard deviations above the expected
	// per-region error rate that an orphan-read placement may still be
	// considered consistent with its candidate host tig.  Must be >= 1.0.
	Deviation float64

	// Similarity is the absolute erate cap below which a placement is
	// admissible regardless of the Deviation check.  Must be in [0, 1].
	Similarity float64

	// Parallelism is the number of workers used for the per-read placement
	// phase of orphan resolution (§4.2.2).  Zero means "pick a sensible
	// default based on GOMAXPROCS and the number of reads".
	Parallelism int
}

func (o *Opts) setDefaults(numReads int) {
	if o.Deviation <= 0 {
		o.Deviation = 3.0
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
		if block := numReads / 999; block > o.Parallelism {
			o.Parallelism = block
		}
	}
}

// Validate checks the option values that can be checked without touching the
// filesystem or any assembly state.
func (o *Opts) Validate() error {
	if o.Deviation < 1.0 {
		return errors.Errorf("tigrefine: Deviation must be >= 1.0, got %v", o.Deviation)
	}
	if o.Similarity < 0 || o.Similarity > 1 {
		return errors.Errorf("tigrefine: Similarity must be in [0,1], got %v", o.Similarity)
	}
	if o.Parallelism < 0 {
		return errors.Errorf("tigrefine: Parallelism must be >= 0, got %v", o.Parallelism)
	}
	return nil
}
