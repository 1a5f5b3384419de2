package mesh

import (
	"errors"
	"fmt"
)

// ErrTextureCoverage is returned when textured export is not possible for
// the whole mesh. It is recoverable: the job falls back to geometry only.
var ErrTextureCoverage = errors.New("texture coverage incomplete")

// UVFormat is the textual form of a UV pair. Deduplication keys on it so
// that pairs that print identically share one index.
const UVFormat = "%.5f %.5f"

// UV is a texture-space coordinate, normally within [0,1]x[0,1].
type UV struct {
	U, V float64
}

// InRange reports whether both components lie in [0,1].
func (uv UV) InRange() bool {
	return uv.U >= 0 && uv.U <= 1 && uv.V >= 0 && uv.V <= 1
}

// Clamp returns uv unchanged when in range and (0,0) otherwise.
func (uv UV) Clamp() UV {
	if uv.InRange() {
		return uv
	}
	return UV{}
}

// FlipV returns (u, 1-v), converting between top-left and bottom-left
// texture origins.
func (uv UV) FlipV() UV {
	return UV{U: uv.U, V: 1 - uv.V}
}

// String formats the pair with UVFormat.
func (uv UV) String() string {
	return fmt.Sprintf(UVFormat, uv.U, uv.V)
}

// TextureSet maps texture names to sparse per-vertex UV tables. Names keep
// the order in which they were first registered.
type TextureSet struct {
	names []string
	uvs   map[string]map[int]UV
	sizes map[string][2]float64
}

// NewTextureSet creates an empty set.
func NewTextureSet() *TextureSet {
	return &TextureSet{
		uvs:   make(map[string]map[int]UV),
		sizes: make(map[string][2]float64),
	}
}

// Add registers a texture name. Registering twice is a no-op.
func (s *TextureSet) Add(name string) {
	if _, ok := s.uvs[name]; ok {
		return
	}
	s.names = append(s.names, name)
	s.uvs[name] = make(map[int]UV)
}

// Names returns the registered textures in first-seen order.
func (s *TextureSet) Names() []string {
	return s.names
}

// Len returns the number of registered textures.
func (s *TextureSet) Len() int {
	return len(s.names)
}

// Set stores the UV of vertex for texture name, clamping out-of-range
// pairs to (0,0).
func (s *TextureSet) Set(name string, vertex int, uv UV) {
	s.Add(name)
	s.uvs[name][vertex] = uv.Clamp()
}

// Lookup returns the UV of vertex for texture name.
func (s *TextureSet) Lookup(name string, vertex int) (UV, bool) {
	table, ok := s.uvs[name]
	if !ok {
		return UV{}, false
	}
	uv, ok := table[vertex]
	return uv, ok
}

// Vertices returns the number of vertices with a UV for texture name.
func (s *TextureSet) Vertices(name string) int {
	return len(s.uvs[name])
}

// SetSize records the nominal resolution a texture was authored against.
func (s *TextureSet) SetSize(name string, w, h float64) {
	s.Add(name)
	s.sizes[name] = [2]float64{w, h}
}

// Size returns the recorded nominal resolution of a texture.
func (s *TextureSet) Size(name string) (w, h float64, ok bool) {
	sz, ok := s.sizes[name]
	return sz[0], sz[1], ok
}

// ResolveUVs returns the three corner UVs of every face. Faces carrying
// their own UVs use them, clamped like the table; the rest look up the
// per-vertex table of their texture. If any face has no texture, or any corner has no UV, no UVs are
// returned at all and the error wraps ErrTextureCoverage.
func (m *Mesh) ResolveUVs() ([][3]UV, error) {
	if len(m.Faces) == 0 {
		return nil, fmt.Errorf("%w: mesh has no faces", ErrTextureCoverage)
	}

	out := make([][3]UV, len(m.Faces))
	for i, f := range m.Faces {
		if f.Texture == "" {
			return nil, fmt.Errorf("%w: face %d has no texture", ErrTextureCoverage, i)
		}
		if f.HasUV {
			for c, uv := range f.UV {
				out[i][c] = uv.Clamp()
			}
			continue
		}
		for c, v := range f.Tri {
			uv, ok := m.Textures.Lookup(f.Texture, v)
			if !ok {
				return nil, fmt.Errorf("%w: face %d vertex %d has no uv for %q", ErrTextureCoverage, i, v, f.Texture)
			}
			out[i][c] = uv
		}
	}
	return out, nil
}

// UsedTextures returns the textures referenced by faces, in first-use order.
func (m *Mesh) UsedTextures() []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range m.Faces {
		if f.Texture == "" || seen[f.Texture] {
			continue
		}
		seen[f.Texture] = true
		names = append(names, f.Texture)
	}
	return names
}

// UVIndex deduplicates UV pairs across a mesh. A pair gets an index the
// first time it is added and the same index on every later add.
type UVIndex struct {
	index map[string]int
	list  []UV
}

// NewUVIndex creates an empty index.
func NewUVIndex() *UVIndex {
	return &UVIndex{index: make(map[string]int)}
}

// Add returns the 0-based index of uv, allocating one on first occurrence.
func (x *UVIndex) Add(uv UV) int {
	key := uv.String()
	if i, ok := x.index[key]; ok {
		return i
	}
	i := len(x.list)
	x.index[key] = i
	x.list = append(x.list, uv)
	return i
}

// List returns the distinct pairs in index order.
func (x *UVIndex) List() []UV {
	return x.list
}

// Len returns the number of distinct pairs.
func (x *UVIndex) Len() int {
	return len(x.list)
}
