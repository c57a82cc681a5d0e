/*
bio-tigrefine runs the two string-graph layout correction passes over a set
of tig layouts: dead-end trimming followed by orphan/bubble resolution.

Sample usage:

	bio-tigrefine \
	    -best-edges best.edges \
	    -deviation 6 \
	    -similarity 0.01 \
	    layout.in layout.out
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/tigrefine/tigrefine"
)

var (
	bestEdgesPath = flag.String("best-edges", "", "Path to the best-edges file (§6 format); empty means no best-edge graph is loaded")
	deviation     = flag.Float64("deviation", 6.0, "Standard deviations of local error rate an orphan placement may still be admissible at")
	similarity    = flag.Float64("similarity", 0.01, "Absolute erate below which an orphan placement is admissible regardless of -deviation")
	parallelism   = flag.Int("parallelism", 0, "Workers for the orphan-placement phase; 0 picks a default from GOMAXPROCS")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] layout.in layout.out\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("expected exactly 2 positional arguments (layout.in layout.out), got %d", flag.NArg())
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	ctx := vcontext.Background()

	reads, overlaps, ag, tigs, err := tigrefine.LoadLayout(ctx, inPath)
	if err != nil {
		log.Fatalf("loading %v: %v", inPath, err)
	}

	opts := tigrefine.Opts{
		BestEdgesPath: *bestEdgesPath,
		Deviation:     *deviation,
		Similarity:    *similarity,
		Parallelism:   *parallelism,
	}
	best, err := tigrefine.LoadBestEdges(opts.BestEdgesPath, reads.NumReads())
	if err != nil {
		log.Fatalf("%v", err)
	}

	stats := &tigrefine.Stats{}
	tigrefine.DropDeadEnds(ag, tigs, stats)
	if err := tigs.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	if err := tigrefine.MergeOrphans(tigs, reads, overlaps, best, opts, stats); err != nil {
		log.Fatalf("%v", err)
	}
	if err := tigs.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("tigrefine: %s", stats.Summary())

	if err := tigrefine.SaveLayout(ctx, outPath, tigs); err != nil {
		log.Fatalf("saving %v: %v", outPath, err)
	}
}
