package mesh

import (
	"reflect"
	"testing"
)

func TestEdgesSingleTriangle(t *testing.T) {
	got := Edges([]Triangle{{0, 1, 2}})
	want := []Edge{{0, 1}, {0, 2}, {1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestEdgesSharedAcrossWindings(t *testing.T) {
	// Two triangles of a quad share edge {0,2}; the second lists it reversed.
	got := Edges([]Triangle{{0, 1, 2}, {2, 3, 0}})
	want := []Edge{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestEdgesCountMatchesDistinctPairs(t *testing.T) {
	// Closed tetrahedron: 4 faces, 6 edges.
	tris := []Triangle{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}}
	edges := Edges(tris)
	if len(edges) != 6 {
		t.Fatalf("expected 6 edges, got %d: %v", len(edges), edges)
	}
	seen := make(map[Edge]bool)
	for _, e := range edges {
		if e.A >= e.B {
			t.Errorf("edge %v not normalized", e)
		}
		if seen[e] {
			t.Errorf("edge %v emitted twice", e)
		}
		seen[e] = true
	}
}

func TestNewEdge(t *testing.T) {
	if NewEdge(5, 2) != NewEdge(2, 5) {
		t.Error("NewEdge should be order independent")
	}
}
