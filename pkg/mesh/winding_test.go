package mesh

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Faultbox/meshconv/pkg/math"
)

func windingMesh() *Mesh {
	m := New("winding")
	m.AddVertex(math.Vec3{0, 0, 0})
	m.AddVertex(math.Vec3{1, 0, 0})
	m.AddVertex(math.Vec3{0, 1, 0})
	m.AddVertex(math.Vec3{-1, 1, 0})
	m.AddVertex(math.Vec3{2, 0, 0})
	return m
}

func TestCorrectWinding(t *testing.T) {
	tests := []struct {
		name     string
		poly     []int
		ref      math.Vec3
		want     []int
		reversed bool
	}{
		{"agrees", []int{0, 1, 2}, math.Vec3{0, 0, 1}, []int{0, 1, 2}, false},
		{"opposes", []int{0, 1, 2}, math.Vec3{0, 0, -1}, []int{2, 1, 0}, true},
		{"quad opposes", []int{0, 1, 2, 3}, math.Vec3{0, 0, -1}, []int{3, 2, 1, 0}, true},
		{"perpendicular reference", []int{0, 1, 2}, math.Vec3{1, 0, 0}, []int{0, 1, 2}, false},
		{"degenerate keeps order", []int{0, 1, 4}, math.Vec3{0, 0, -1}, []int{0, 1, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := windingMesh()
			in := append([]int(nil), tt.poly...)
			got, reversed, err := m.CorrectWinding(in, tt.ref)
			if err != nil {
				t.Fatalf("CorrectWinding failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CorrectWinding() = %v, want %v", got, tt.want)
			}
			if reversed != tt.reversed {
				t.Errorf("reversed = %v, want %v", reversed, tt.reversed)
			}
			if !reflect.DeepEqual(in, tt.poly) {
				t.Errorf("input modified: %v", in)
			}
		})
	}
}

func TestCorrectWindingOutOfRange(t *testing.T) {
	m := windingMesh()
	_, _, err := m.CorrectWinding([]int{0, 1, 9}, math.Vec3{0, 0, 1})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
