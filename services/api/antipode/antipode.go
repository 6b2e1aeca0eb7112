// Package antipode derives antipodal pairs from normalized match points.
//
// The engine's search is symmetric, so every geometric match normally shows
// up twice in its output: once from each hemisphere. The all-pairs sequence
// keeps exactly one canonical representative per match. By convention the
// northern member is primary; on the equator whichever member is emitted
// first is primary. The antipode is always computed analytically from the
// primary, never taken from the discarded record.
package antipode

import (
	"fmt"
	"math"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/points"
)

// keyPrecision is the coordinate resolution used to detect repeated emissions.
const keyPrecision = 1e6

// Pair is a primary point and its exact antipode.
type Pair struct {
	ID       string       `json:"pair_id"`
	Primary  points.Point `json:"primary"`
	Antipode points.Point `json:"antipode"`
}

// Of returns the antipode of p. Temperature and pressure are copied: the
// match value is shared by both points.
func Of(p points.Point) points.Point {
	return points.Point{
		ID:          p.ID,
		Lat:         -p.Lat,
		Lon:         points.NormalizeLon(p.Lon + 180),
		Temperature: p.Temperature,
		Pressure:    p.Pressure,
	}
}

// NewPair builds the pair whose primary is p.
func NewPair(p points.Point) Pair {
	return Pair{ID: pairID(p), Primary: p, Antipode: Of(p)}
}

// IsCanonical reports whether p may represent its antipodal pair. Both
// members of an equatorial pair qualify; AllPairs keeps the first one.
func IsCanonical(p points.Point) bool {
	return p.Lat >= 0
}

// AllPairs returns one pair per geometric match, in emission order.
func AllPairs(pts []points.Point) []Pair {
	out := make([]Pair, 0, len(pts)/2)
	seen := make(map[string]struct{}, len(pts)/2)
	for _, p := range pts {
		if !IsCanonical(p) {
			continue
		}
		k := matchKey(p)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, NewPair(p))
	}
	return out
}

// SingleSteps returns one pair per point with no deduplication, so a match
// emitted from both hemispheres appears twice.
func SingleSteps(pts []points.Point) []Pair {
	out := make([]Pair, 0, len(pts))
	for _, p := range pts {
		out = append(out, NewPair(p))
	}
	return out
}

func key(p points.Point) string {
	return fmt.Sprintf("%d:%d", int64(math.Round(p.Lat*keyPrecision)), int64(math.Round(p.Lon*keyPrecision)))
}

// matchKey identifies the geometric match p belongs to. Off the equator only
// the northern member reaches it, so the point key is enough.
func matchKey(p points.Point) string {
	k := key(p)
	if p.Lat != 0 {
		return k
	}
	if ak := key(Of(p)); ak < k {
		return ak
	}
	return k
}

func pairID(p points.Point) string {
	return fmt.Sprintf("%.4f:%.4f", p.Lat, p.Lon)
}
