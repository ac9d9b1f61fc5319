// Package graph builds an adjacency index from an ingested layout.Model and
// answers single-source shortest-path queries over it. It wraps
// gonum.org/v1/gonum/graph's dense, already-indexed graph/path
// implementation rather than hand-rolling Dijkstra over string-keyed maps.
package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/junryge/ASAS/internal/layout"
)

// PathFinder answers shortest-path queries over a fixed address graph. The
// adjacency is built once and never mutated afterward; a PathFinder is safe
// for concurrent read-only use.
type PathFinder struct {
	g        *simple.WeightedDirectedGraph
	fromAddr map[int]int64
	toAddr   map[int64]int
}

// Build constructs the adjacency from model.Edges, using each edge's
// Distance as its weight. Edges are directed exactly as ingested; a
// bidirectional rail must already have been represented as two edges by the
// parser.
func Build(model *layout.Model) *PathFinder {
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	fromAddr := make(map[int]int64, len(model.Addresses))
	toAddr := make(map[int64]int, len(model.Addresses))
	next := int64(0)
	nodeFor := func(addrID int) int64 {
		if id, ok := fromAddr[addrID]; ok {
			return id
		}
		id := next
		next++
		fromAddr[addrID] = id
		toAddr[id] = addrID
		g.AddNode(simple.Node(id))
		return id
	}

	for id := range model.Addresses {
		nodeFor(id)
	}
	for _, e := range model.Edges {
		from := nodeFor(e.From)
		to := nodeFor(e.To)
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: e.Distance})
	}

	return &PathFinder{g: g, fromAddr: fromAddr, toAddr: toAddr}
}

// FindPath returns the shortest address sequence from start to end and its
// total cost, or an empty sequence and +Inf if end is unreachable from
// start. Ties among equal-cost paths are broken arbitrarily per gonum's
// extraction order.
func (pf *PathFinder) FindPath(start, end int) ([]int, float64) {
	startNode, ok := pf.fromAddr[start]
	if !ok {
		return nil, math.Inf(1)
	}
	endNode, ok := pf.fromAddr[end]
	if !ok {
		return nil, math.Inf(1)
	}
	if start == end {
		return []int{start}, 0
	}

	shortest := path.DijkstraFrom(simple.Node(startNode), pf.g)
	nodes, cost := shortest.To(endNode)
	if len(nodes) == 0 {
		return nil, math.Inf(1)
	}

	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = pf.toAddr[n.ID()]
	}
	return out, cost
}

// HasAddress reports whether addrID is a known node in the graph.
func (pf *PathFinder) HasAddress(addrID int) bool {
	_, ok := pf.fromAddr[addrID]
	return ok
}
