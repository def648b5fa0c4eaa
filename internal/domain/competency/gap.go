package competency

import (
	"sort"

	"github.com/okian/stufe/internal/domain/types"
)

// Differences computes the signed per-cluster delta a − b, sorted ascending
// so the greatest shortfall comes first. The same shape serves profile vs.
// role requirement and value-at-t2 vs. value-at-t1.
//
// An empty or mismatched input yields an empty table, never an error, so
// downstream rendering detects "no data" uniformly.
func Differences(names []string, a, b []float64) []types.Difference {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) || len(a) != len(names) {
		return nil
	}
	diffs := make([]types.Difference, len(a))
	for i := range a {
		diffs[i] = types.Difference{Cluster: names[i], Delta: a[i] - b[i]}
	}
	sortDifferences(diffs)
	return diffs
}

// DevelopmentGap subtracts a role's delta table from a profile's delta table,
// joining by cluster name. Input ordering is not guaranteed to match, so the
// join must be by identity, not position. Clusters present in only one table
// are dropped.
func DevelopmentGap(profileDeltas, roleDeltas []types.Difference) []types.Difference {
	if len(profileDeltas) == 0 || len(roleDeltas) == 0 {
		return nil
	}
	roleByCluster := make(map[string]float64, len(roleDeltas))
	for _, d := range roleDeltas {
		roleByCluster[d.Cluster] = d.Delta
	}

	gaps := make([]types.Difference, 0, len(profileDeltas))
	for _, p := range profileDeltas {
		r, ok := roleByCluster[p.Cluster]
		if !ok {
			continue
		}
		gaps = append(gaps, types.Difference{Cluster: p.Cluster, Delta: p.Delta - r})
	}
	if len(gaps) == 0 {
		return nil
	}
	sortDifferences(gaps)
	return gaps
}

// sortDifferences orders ascending by delta; ties break on cluster name for
// deterministic output.
func sortDifferences(diffs []types.Difference) {
	sort.SliceStable(diffs, func(i, j int) bool {
		if diffs[i].Delta != diffs[j].Delta {
			return diffs[i].Delta < diffs[j].Delta
		}
		return diffs[i].Cluster < diffs[j].Cluster
	})
}
