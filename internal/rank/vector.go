// Package rank implements damped PageRank iteration over a linkgraph.Graph:
// the rank vector, the single-step update rule with sink-mass
// redistribution, and the threshold and fixed-count termination policies.
package rank

import (
	"gonum.org/v1/gonum/floats"

	"github.com/papapumpkin/pagerank/internal/linkgraph"
)

// Vector holds one score per page, aligned by index with the graph's page
// order. Two vectors built from the same graph are therefore aligned by
// page identifier.
type Vector []float64

// Initialize returns the uniform starting vector: every page scores 1/N.
func Initialize(g *linkgraph.Graph) Vector {
	n := g.Len()
	v := make(Vector, n)
	initial := 1.0 / float64(n)
	for i := range v {
		v[i] = initial
	}
	return v
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Sum returns the total rank mass of v.
func (v Vector) Sum() float64 {
	return floats.Sum(v)
}

// Distance returns the Euclidean (L2) distance between a and b. Both must
// come from the same graph.
func Distance(a, b Vector) float64 {
	return floats.Distance(a, b, 2)
}

// Map returns v keyed by page identifier.
func (v Vector) Map(g *linkgraph.Graph) map[string]float64 {
	m := make(map[string]float64, len(v))
	for i, id := range g.Pages() {
		m[id] = v[i]
	}
	return m
}

// Score returns the score of page id, and whether the page exists.
func (v Vector) Score(g *linkgraph.Graph, id string) (float64, bool) {
	i, ok := g.Index(id)
	if !ok {
		return 0, false
	}
	return v[i], true
}
