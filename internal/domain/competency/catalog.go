// Package competency aggregates survey answers into per-cluster 1–5 vectors
// and computes signed differences between them.
package competency

import (
	"fmt"
	"time"
)

// Raw score bounds of the competency questionnaire.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Cluster is one competency grouping of the survey.
type Cluster struct {
	ID   int
	Name string
}

// Catalog is the fixed cluster layout of the competency model. Question ids
// encode their cluster as a leading numeric prefix ("3B07" belongs to
// cluster 3); items listed as inverted have their raw scores reflected
// before averaging.
type Catalog struct {
	clusters []Cluster
	index    map[int]int // cluster id -> position
	inverted map[string]bool
}

// NewCatalog builds a catalog from an ordered cluster list and the set of
// inverted item ids.
func NewCatalog(clusters []Cluster, invertedItems []string) (*Catalog, error) {
	if len(clusters) == 0 {
		return nil, fmt.Errorf("%w: catalog has no clusters", ErrInvalidCatalog)
	}
	c := &Catalog{
		clusters: clusters,
		index:    make(map[int]int, len(clusters)),
		inverted: make(map[string]bool, len(invertedItems)),
	}
	for i, cl := range clusters {
		if cl.Name == "" {
			return nil, fmt.Errorf("%w: cluster %d has empty name", ErrInvalidCatalog, cl.ID)
		}
		if _, dup := c.index[cl.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate cluster id %d", ErrInvalidCatalog, cl.ID)
		}
		c.index[cl.ID] = i
	}
	for _, id := range invertedItems {
		c.inverted[id] = true
	}
	return c, nil
}

// DefaultCatalog returns the eleven-cluster competency model.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Cluster{
		{ID: 1, Name: "Fachkompetenz"},
		{ID: 2, Name: "Methodenkompetenz"},
		{ID: 3, Name: "Sozialkompetenz"},
		{ID: 4, Name: "Selbstkompetenz"},
		{ID: 5, Name: "Digitale Grundfähigkeiten"},
		{ID: 6, Name: "Datenanalyse"},
		{ID: 7, Name: "Prozesswissen"},
		{ID: 8, Name: "Kommunikation"},
		{ID: 9, Name: "Führung"},
		{ID: 10, Name: "Veränderungsbereitschaft"},
		{ID: 11, Name: "Lernfähigkeit"},
	}, []string{"3B02", "4A03", "8B01", "10A02"})
	if err != nil {
		panic(err) // static catalog, cannot fail
	}
	return c
}

// Size returns the number of clusters.
func (c *Catalog) Size() int { return len(c.clusters) }

// Names returns cluster names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.clusters))
	for i, cl := range c.clusters {
		names[i] = cl.Name
	}
	return names
}

// Clusters returns the ordered cluster list.
func (c *Catalog) Clusters() []Cluster {
	out := make([]Cluster, len(c.clusters))
	copy(out, c.clusters)
	return out
}

// ClusterOf resolves the cluster position of a question id from its numeric
// prefix. Ids without a digit prefix or with an unknown cluster id are
// data-shape errors.
func (c *Catalog) ClusterOf(questionID string) (int, error) {
	n := 0
	i := 0
	for i < len(questionID) && questionID[i] >= '0' && questionID[i] <= '9' {
		n = n*10 + int(questionID[i]-'0')
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: question id %q has no cluster prefix", ErrUnknownCluster, questionID)
	}
	pos, ok := c.index[n]
	if !ok {
		return 0, fmt.Errorf("%w: question id %q names cluster %d", ErrUnknownCluster, questionID, n)
	}
	return pos, nil
}

// Inverted reports whether an item's raw score must be reflected (6 − score)
// before averaging.
func (c *Catalog) Inverted(questionID string) bool {
	return c.inverted[questionID]
}

// ResponseRecord is one competency survey submission: raw per-question
// scores 1–5 for a profile at a point in time.
type ResponseRecord struct {
	Profile string
	Role    string
	TakenAt time.Time
	Scores  map[string]float64
}
