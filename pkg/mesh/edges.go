package mesh

import (
	"cmp"
	"slices"
)

// Edge is an undirected vertex pair stored with A < B.
type Edge struct {
	A, B int
}

// NewEdge returns the normalized edge between a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Edges derives the distinct undirected edges of tris, ordered by A then B.
// An edge shared by two triangles is reported once; self-loops are skipped.
func Edges(tris []Triangle) []Edge {
	set := make(map[Edge]struct{}, len(tris)*3/2)
	for _, t := range tris {
		for _, e := range [3]Edge{NewEdge(t[0], t[1]), NewEdge(t[0], t[2]), NewEdge(t[1], t[2])} {
			if e.A == e.B {
				continue
			}
			set[e] = struct{}{}
		}
	}

	edges := make([]Edge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return edges
}
