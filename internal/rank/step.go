package rank

import "github.com/papapumpkin/pagerank/internal/linkgraph"

// Step applies one damped PageRank update and returns the new vector.
// damping is the teleport probability: that share of mass is spread
// uniformly, and (1-damping) follows outbound edges. Mass held by sink
// pages is redistributed uniformly as well. old is not modified.
//
// Summation order is fixed: sinks are folded in ascending identifier
// order, and contributions are pushed page by page in page order, each
// page's targets in edge order.
func Step(g *linkgraph.Graph, old Vector, damping float64) Vector {
	nf := float64(g.Len())
	follow := 1 - damping

	var stranded float64
	for _, s := range g.Sinks() {
		stranded += old[s]
	}
	sinkMass := (follow / nf) * stranded

	next := make(Vector, len(old))
	base := damping/nf + sinkMass
	for i := range next {
		next[i] = base
	}

	for p := range next {
		targets := g.Outlinks(p)
		if len(targets) == 0 {
			continue
		}
		share := follow * old[p] / float64(len(targets))
		for _, t := range targets {
			next[t] += share
		}
	}
	return next
}
