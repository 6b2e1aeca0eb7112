package viewer

import (
	"time"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/antipode"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/engine"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/points"
)

// MatchSet is the processed result of one fetch cycle. It is replaced
// wholesale by the next cycle and never mutated.
type MatchSet struct {
	// Pairs holds one pair per geometric match (all-pairs display).
	Pairs []antipode.Pair
	// Steps holds one pair per raw record (single-step display).
	Steps     []antipode.Pair
	Timestamp string
	Textures  engine.Textures
	FetchedAt time.Time
}

// Build runs the engine output through point normalization and pair
// derivation.
func Build(out engine.Output, now time.Time) MatchSet {
	pts := points.NormalizeAll(out.Matches)
	return MatchSet{
		Pairs:     antipode.AllPairs(pts),
		Steps:     antipode.SingleSteps(pts),
		Timestamp: out.Timestamp,
		Textures:  out.Textures,
		FetchedAt: now,
	}
}
