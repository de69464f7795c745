// Package linkgraph holds the directed page graph that PageRank iterates
// over. A Graph is built once from an edge stream and is read-only after
// that: every page seen as a source or target has an entry, sink pages
// (no outbound edges) carry an empty outbound list, and pages are indexed
// in a fixed order so that every fold over them is reproducible.
//
// Page order is: pages in order of first appearance as an edge source,
// followed by sink pages in ascending byte order.
package linkgraph

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/papapumpkin/pagerank/internal/edgefile"
)

// ErrEmptyGraph is returned when the edge stream contains no edges.
var ErrEmptyGraph = errors.New("graph has no pages")

// EdgeSource yields edges until it returns io.EOF.
type EdgeSource interface {
	Next() (edgefile.Edge, error)
}

// Graph is an immutable adjacency structure over page identifiers.
type Graph struct {
	pages []string
	index map[string]int
	// out maps page index → target indices, in edge order. Duplicate
	// targets are kept; each is one edge.
	out   [][]int
	sinks []int
	edges int
}

// Build consumes src until io.EOF and returns the resulting graph. Any
// other error from src aborts construction; no partial graph is returned.
func Build(src EdgeSource) (*Graph, error) {
	var (
		sources  []string
		srcIndex = make(map[string]int)
		outs     [][]string
		targets  = make(map[string]struct{})
		edges    int
	)

	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("building graph: %w", err)
		}
		i, ok := srcIndex[e.Source]
		if !ok {
			i = len(sources)
			srcIndex[e.Source] = i
			sources = append(sources, e.Source)
			outs = append(outs, nil)
		}
		outs[i] = append(outs[i], e.Target)
		targets[e.Target] = struct{}{}
		edges++
	}

	var sinkIDs []string
	for id := range targets {
		if _, ok := srcIndex[id]; !ok {
			sinkIDs = append(sinkIDs, id)
		}
	}
	sort.Strings(sinkIDs)

	pages := make([]string, 0, len(sources)+len(sinkIDs))
	pages = append(pages, sources...)
	pages = append(pages, sinkIDs...)
	if len(pages) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		pages: pages,
		index: make(map[string]int, len(pages)),
		out:   make([][]int, len(pages)),
		edges: edges,
	}
	for i, id := range pages {
		g.index[id] = i
	}
	for i, ids := range outs {
		links := make([]int, len(ids))
		for j, t := range ids {
			links[j] = g.index[t]
		}
		g.out[i] = links
	}
	for i := len(sources); i < len(pages); i++ {
		g.out[i] = []int{}
		g.sinks = append(g.sinks, i)
	}
	return g, nil
}

// sliceSource adapts an in-memory edge list to EdgeSource.
type sliceSource struct {
	edges []edgefile.Edge
	pos   int
}

func (s *sliceSource) Next() (edgefile.Edge, error) {
	if s.pos >= len(s.edges) {
		return edgefile.Edge{}, io.EOF
	}
	e := s.edges[s.pos]
	s.pos++
	return e, nil
}

// FromEdges builds a graph from an in-memory edge list.
func FromEdges(edges []edgefile.Edge) (*Graph, error) {
	return Build(&sliceSource{edges: edges})
}

// Len returns the number of distinct pages.
func (g *Graph) Len() int { return len(g.pages) }

// EdgeCount returns the number of edges, counting duplicates.
func (g *Graph) EdgeCount() int { return g.edges }

// Pages returns every page identifier in page order. The returned slice
// is shared with the graph and must not be modified.
func (g *Graph) Pages() []string { return g.pages }

// Page returns the identifier at index i.
func (g *Graph) Page(i int) string { return g.pages[i] }

// Index returns the index of page id, and whether it exists.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Outlinks returns the target indices of page i in edge order. The
// returned slice must not be modified.
func (g *Graph) Outlinks(i int) []int { return g.out[i] }

// OutDegree returns the number of outbound edges of page i.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// Outbound returns the target identifiers of page id in edge order, or nil
// if id is not in the graph.
func (g *Graph) Outbound(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	targets := make([]string, len(g.out[i]))
	for j, t := range g.out[i] {
		targets[j] = g.pages[t]
	}
	return targets
}

// Sinks returns the indices of pages with no outbound edges, in ascending
// identifier order. The returned slice must not be modified.
func (g *Graph) Sinks() []int { return g.sinks }

// SinkIDs returns the identifiers of sink pages in ascending order.
func (g *Graph) SinkIDs() []string {
	ids := make([]string, len(g.sinks))
	for j, i := range g.sinks {
		ids[j] = g.pages[i]
	}
	return ids
}

// IsSink reports whether page i has no outbound edges.
func (g *Graph) IsSink(i int) bool { return len(g.out[i]) == 0 }
