package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/meshconv/pkg/math"
)

func TestUVClamp(t *testing.T) {
	tests := []struct {
		in, want UV
	}{
		{UV{0.25, 0.75}, UV{0.25, 0.75}},
		{UV{0, 1}, UV{0, 1}},
		{UV{1.5, 0.5}, UV{}},
		{UV{0.5, -0.1}, UV{}},
	}
	for _, tc := range tests {
		if got := tc.in.Clamp(); got != tc.want {
			t.Errorf("%v.Clamp() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTextureSetOrderAndLookup(t *testing.T) {
	s := NewTextureSet()
	s.Set("hull.png", 3, UV{0.5, 0.5})
	s.Set("engine.png", 1, UV{2, 2})
	s.Add("hull.png")

	names := s.Names()
	if len(names) != 2 || names[0] != "hull.png" || names[1] != "engine.png" {
		t.Errorf("unexpected names %v", names)
	}

	if uv, ok := s.Lookup("hull.png", 3); !ok || uv != (UV{0.5, 0.5}) {
		t.Errorf("Lookup(hull.png, 3) = %v, %v", uv, ok)
	}
	if uv, ok := s.Lookup("engine.png", 1); !ok || uv != (UV{}) {
		t.Errorf("out of range uv should clamp to zero, got %v, %v", uv, ok)
	}
	if _, ok := s.Lookup("hull.png", 1); ok {
		t.Error("expected no uv for vertex 1 of hull.png")
	}
	if _, ok := s.Lookup("missing.png", 0); ok {
		t.Error("expected no uv for unknown texture")
	}
}

func twoTriangleMesh() *Mesh {
	m := New("quad")
	m.AddVertex(math.Vec3{0, 0, 0})
	m.AddVertex(math.Vec3{1, 0, 0})
	m.AddVertex(math.Vec3{1, 1, 0})
	m.AddVertex(math.Vec3{0, 1, 0})
	m.Faces = []Face{
		{Tri: Triangle{0, 1, 2}, Texture: "a.png"},
		{Tri: Triangle{0, 2, 3}, Texture: "a.png"},
	}
	return m
}

func TestResolveUVsFullCoverage(t *testing.T) {
	m := twoTriangleMesh()
	m.Textures.Set("a.png", 0, UV{0, 0})
	m.Textures.Set("a.png", 1, UV{1, 0})
	m.Textures.Set("a.png", 2, UV{1, 1})
	m.Textures.Set("a.png", 3, UV{0, 1})

	uvs, err := m.ResolveUVs()
	if err != nil {
		t.Fatalf("ResolveUVs failed: %v", err)
	}
	if len(uvs) != 2 {
		t.Fatalf("expected 2 faces of uvs, got %d", len(uvs))
	}
	if uvs[1][2] != (UV{0, 1}) {
		t.Errorf("face 1 corner 2 = %v, want (0,1)", uvs[1][2])
	}
}

func TestResolveUVsPartialCoverageIsAllOrNothing(t *testing.T) {
	m := twoTriangleMesh()
	m.Textures.Set("a.png", 0, UV{0, 0})
	m.Textures.Set("a.png", 1, UV{1, 0})
	m.Textures.Set("a.png", 2, UV{1, 1})
	// vertex 3 has no uv: only the first triangle is covered

	uvs, err := m.ResolveUVs()
	if !errors.Is(err, ErrTextureCoverage) {
		t.Fatalf("expected ErrTextureCoverage, got %v", err)
	}
	if uvs != nil {
		t.Errorf("expected no uvs at all, got %v", uvs)
	}
}

func TestResolveUVsUntexturedFace(t *testing.T) {
	m := twoTriangleMesh()
	m.Faces[1].Texture = ""
	m.Faces[0].HasUV = true
	m.Faces[1].HasUV = true

	if _, err := m.ResolveUVs(); !errors.Is(err, ErrTextureCoverage) {
		t.Errorf("expected ErrTextureCoverage, got %v", err)
	}
}

func TestResolveUVsPrefersFaceUVs(t *testing.T) {
	m := twoTriangleMesh()
	for i := range m.Faces {
		m.Faces[i].HasUV = true
		m.Faces[i].UV = [3]UV{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}}
	}
	uvs, err := m.ResolveUVs()
	if err != nil {
		t.Fatalf("ResolveUVs failed: %v", err)
	}
	if uvs[0][1] != (UV{0.2, 0.2}) {
		t.Errorf("expected face uv, got %v", uvs[0][1])
	}
}

func TestResolveUVsClampsFaceUVs(t *testing.T) {
	m := twoTriangleMesh()
	for i := range m.Faces {
		m.Faces[i].HasUV = true
		m.Faces[i].UV = [3]UV{{1.5, 0.5}, {0.2, -0.1}, {0.3, 0.3}}
	}
	uvs, err := m.ResolveUVs()
	if err != nil {
		t.Fatalf("ResolveUVs failed: %v", err)
	}
	want := [3]UV{{0, 0}, {0, 0}, {0.3, 0.3}}
	if uvs[1] != want {
		t.Errorf("resolved uvs = %v, want %v", uvs[1], want)
	}
}

func TestUVIndexDedup(t *testing.T) {
	refs := []UV{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}
	x := NewUVIndex()
	var got []int
	for _, uv := range refs {
		got = append(got, x.Add(uv))
	}
	if x.Len() != 4 {
		t.Fatalf("expected 4 distinct uvs, got %d", x.Len())
	}
	want := []int{0, 1, 2, 0, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ref %d: index %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUVIndexKeysOnFormattedValue(t *testing.T) {
	x := NewUVIndex()
	a := x.Add(UV{0.1 + 0.2, 0.5})
	b := x.Add(UV{0.3, 0.5})
	if a != b {
		t.Errorf("pairs that print identically should share an index: %d vs %d", a, b)
	}
}

func TestUsedTextures(t *testing.T) {
	m := twoTriangleMesh()
	m.Faces = append(m.Faces, Face{Tri: Triangle{1, 2, 3}, Texture: "b.png"}, Face{Tri: Triangle{1, 2, 3}})
	got := m.UsedTextures()
	if len(got) != 2 || got[0] != "a.png" || got[1] != "b.png" {
		t.Errorf("UsedTextures() = %v", got)
	}
}
