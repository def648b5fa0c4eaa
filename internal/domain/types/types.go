// Package types contains read shapes shared across engine, service and API layers.
package types

// Difference is a signed per-cluster delta between two competency vectors.
// Negative values mean shortfall relative to the reference vector.
type Difference struct {
	Cluster string  `json:"cluster"`
	Delta   float64 `json:"delta"`
}

// Match is one similarity ranking result.
type Match struct {
	Identity   string  `json:"identity"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity_pct"`
}
