package competency

import (
	"fmt"
	"math"
)

// invertedScoreBase reflects a 1–5 score via base − score: 1↔5, 2↔4, 3↔3.
const invertedScoreBase = 6

// ClusterValues averages the (possibly inverted) raw scores of a response
// into one 1–5 value per cluster, in catalog order, rounded to one decimal.
//
// A catalog cluster the response holds no scores for is an error: averaging
// over nothing must be signaled, not smuggled out as NaN. Raw scores outside
// 1–5 are rejected as data-shape errors.
func (c *Catalog) ClusterValues(rec ResponseRecord) ([]float64, error) {
	sums := make([]float64, len(c.clusters))
	counts := make([]int, len(c.clusters))

	for id, score := range rec.Scores {
		if score < MinScore || score > MaxScore {
			return nil, fmt.Errorf("%w: question %s score %.2f", ErrScoreOutOfRange, id, score)
		}
		pos, err := c.ClusterOf(id)
		if err != nil {
			return nil, err
		}
		if c.Inverted(id) {
			score = invertedScoreBase - score
		}
		sums[pos] += score
		counts[pos]++
	}

	values := make([]float64, len(c.clusters))
	for i := range c.clusters {
		if counts[i] == 0 {
			return nil, fmt.Errorf("%w: cluster %q", ErrEmptyCluster, c.clusters[i].Name)
		}
		values[i] = math.Round(sums[i]/float64(counts[i])*10) / 10
	}
	return values, nil
}
