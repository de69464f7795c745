package linkgraph

// InlinkCounts returns, aligned with page order, the number of edges that
// terminate at each page. Duplicate edges and self-loops each count once
// per occurrence.
func (g *Graph) InlinkCounts() []int {
	counts := make([]int, len(g.pages))
	for _, targets := range g.out {
		for _, t := range targets {
			counts[t]++
		}
	}
	return counts
}

// Inlinks returns the inlink table keyed by page identifier. Every page is
// present, including those with zero inbound edges.
func Inlinks(g *Graph) map[string]int {
	counts := g.InlinkCounts()
	table := make(map[string]int, len(counts))
	for i, c := range counts {
		table[g.pages[i]] = c
	}
	return table
}
