// Package similarity ranks competency vectors by distance to a target.
package similarity

import (
	"math"
	"sort"
	"time"

	"github.com/okian/stufe/internal/domain/types"
)

// Metric selects the distance function over the cluster space.
type Metric int

const (
	Euclidean Metric = iota
	Manhattan
)

// Fixed worst-case distances of the 11-dimensional cluster space with value
// range [1,5]. These constants define the similarity scale and must not be
// recomputed from the data at hand.
const (
	// maxEuclideanDistance is sqrt(11 * 4²).
	maxEuclideanDistance = 13.2665
	// maxManhattanDistance is 11 * 4.
	maxManhattanDistance = 44.0
)

// DefaultTopN is the number of nearest neighbors returned when the caller
// does not say otherwise.
const DefaultTopN = 3

// Candidate is one vector competing for similarity, tagged with the identity
// it belongs to. The same identity may appear once per historical timestamp.
type Candidate struct {
	Identity string
	TakenAt  time.Time
	Values   []float64
}

// Rank returns the topN candidates nearest to target in ascending distance
// order, with distance normalized into a similarity percentage.
//
// Excluded identities are dropped before ranking. Identities with several
// historical vectors are deduplicated to their single nearest one. topN <= 0
// falls back to DefaultTopN. Candidates whose vector length differs from the
// target are skipped; an empty input yields an empty result.
func Rank(target []float64, candidates []Candidate, metric Metric, exclude []string, topN int) []types.Match {
	if len(target) == 0 || len(candidates) == 0 {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	// Keep only the nearest vector per distinct identity.
	best := make(map[string]float64)
	for _, c := range candidates {
		if excluded[c.Identity] || len(c.Values) != len(target) {
			continue
		}
		d := distance(target, c.Values, metric)
		if prev, seen := best[c.Identity]; !seen || d < prev {
			best[c.Identity] = d
		}
	}
	if len(best) == 0 {
		return nil
	}

	matches := make([]types.Match, 0, len(best))
	for id, d := range best {
		matches = append(matches, types.Match{
			Identity:   id,
			Distance:   d,
			Similarity: similarityPct(d, metric),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Identity < matches[j].Identity
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

func distance(a, b []float64, metric Metric) float64 {
	switch metric {
	case Manhattan:
		sum := 0.0
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	default:
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Sqrt(sum)
	}
}

// similarityPct maps a distance onto 100 × (1 − d/max), floored at zero for
// out-of-scale inputs.
func similarityPct(d float64, metric Metric) float64 {
	maxDist := maxEuclideanDistance
	if metric == Manhattan {
		maxDist = maxManhattanDistance
	}
	pct := 100 * (1 - d/maxDist)
	if pct < 0 {
		return 0
	}
	return pct
}
