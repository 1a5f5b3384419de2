// Package mesh holds the canonical triangle mesh shared by every format
// reader and writer, together with the topology, winding and texture
// helpers that operate on it.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshconv/pkg/math"
)

// ErrIndexOutOfRange is returned when a face references a vertex that does
// not exist.
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// Triangle is an ordered triple of vertex indices. The order defines the
// outward normal by the right-hand rule.
type Triangle [3]int

// DefaultColor is the flat grey used for faces without an authored colour.
var DefaultColor = [3]int{127, 127, 127}

// Face is one triangle of the mesh plus its per-face attributes.
type Face struct {
	Tri   Triangle
	Color [3]int

	// Texture is the texture bound to this face, empty when untextured.
	Texture string

	// UV holds per-corner coordinates when the source addresses UVs per
	// face rather than per vertex.
	UV    [3]UV
	HasUV bool
}

// Stats records recoverable events met while reading a file.
type Stats struct {
	Polygons      int // source polygons accepted, before triangulation
	Malformed     int // lines skipped for a wrong field count
	Degenerate    int // zero-area triangles dropped
	DeclaredVerts int // NVERTS header, -1 when absent
	DeclaredFaces int // NFACES header, -1 when absent

	// Warnings are non-fatal problems such as a missing material library.
	Warnings []string
}

// Mesh is the canonical in-memory mesh. One Mesh belongs to exactly one
// conversion job.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Faces    []Face
	Textures *TextureSet

	// Mirrored is set when the reader negated X to change handedness.
	// Computed normals are negated to compensate.
	Mirrored bool

	Stats Stats
}

// New returns an empty mesh with an empty texture set.
func New(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Textures: NewTextureSet(),
		Stats:    Stats{DeclaredVerts: -1, DeclaredFaces: -1},
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v math.Vec3) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face after bounds-checking its indices.
func (m *Mesh) AddFace(f Face) error {
	if err := m.CheckIndices(f.Tri[:]...); err != nil {
		return err
	}
	m.Faces = append(m.Faces, f)
	return nil
}

// CheckIndices returns ErrIndexOutOfRange for the first index that does not
// address an existing vertex.
func (m *Mesh) CheckIndices(indices ...int) error {
	for _, i := range indices {
		if i < 0 || i >= len(m.Vertices) {
			return fmt.Errorf("%w: %d (have %d vertices)", ErrIndexOutOfRange, i, len(m.Vertices))
		}
	}
	return nil
}

// Triangles returns the triangle of every face in order.
func (m *Mesh) Triangles() []Triangle {
	tris := make([]Triangle, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = f.Tri
	}
	return tris
}

// Corners returns the positions of a triangle's vertices.
func (m *Mesh) Corners(t Triangle) (a, b, c math.Vec3) {
	return m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
}

// FaceNormal computes the geometric normal of face i, negated for mirrored
// meshes. ok is false for a degenerate triangle.
func (m *Mesh) FaceNormal(i int) (math.Vec3, bool) {
	n, ok := math.FaceNormal(m.Corners(m.Faces[i].Tri))
	if !ok {
		return n, false
	}
	if m.Mirrored {
		n = math.Clean(n.Mul(-1))
	}
	return n, true
}

// Fan splits polygon (v0, v1, ..., vn-1) into (v0,v1,v2), (v0,v2,v3), ...,
// (v0,vn-2,vn-1). Polygons with fewer than three vertices yield nothing.
func Fan(poly []int) []Triangle {
	if len(poly) < 3 {
		return nil
	}
	tris := make([]Triangle, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		tris = append(tris, Triangle{poly[0], poly[i], poly[i+1]})
	}
	return tris
}

// FanUV splits per-corner UVs the same way Fan splits indices.
func FanUV(uvs []UV) [][3]UV {
	if len(uvs) < 3 {
		return nil
	}
	out := make([][3]UV, 0, len(uvs)-2)
	for i := 1; i+1 < len(uvs); i++ {
		out = append(out, [3]UV{uvs[0], uvs[i], uvs[i+1]})
	}
	return out
}
