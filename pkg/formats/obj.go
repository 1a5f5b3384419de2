package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/meshconv/pkg/math"
	"github.com/Faultbox/meshconv/pkg/mesh"
)

// smoothingStart is the red channel value faces get before the first "s"
// record. Each "s" advances it by one, wrapping past 255 to 0.
const smoothingStart = 127

// OBJReadOptions controls ReadOBJ.
type OBJReadOptions struct {
	// OpenMaterialLib opens a library named by an mtllib record. Nil skips
	// material lookup, leaving usemtl names as texture names.
	OpenMaterialLib func(name string) (io.ReadCloser, error)
}

// objCorner is one "v/vt/vn" reference of a face record.
type objCorner struct {
	v     int
	uv    mesh.UV
	hasUV bool
}

// objReader holds the per-file state of ReadOBJ.
type objReader struct {
	parseState
	mesh      *mesh.Mesh
	materials map[string]string
	uvs       []mesh.UV
	smoothing int
}

// ReadOBJ parses a Wavefront OBJ file in four passes: material libraries,
// vertices (X negated), texture coordinates (V flipped) and faces.
//
// Texturing is all-or-nothing per mesh: once a face without UVs is met
// after a usemtl, faces stay untextured until the next usemtl, which makes
// the texture gate fail for the whole mesh on export.
func ReadOBJ(r io.Reader, name string, opts OBJReadOptions) (*mesh.Mesh, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = strings.Fields(line)
	}

	o := &objReader{
		mesh:      mesh.New(name),
		materials: make(map[string]string),
		smoothing: smoothingStart,
	}
	o.mesh.Mirrored = true

	passes := []func([]string) error{o.materialLibs(opts), o.vertex, o.texCoord, o.element}
	for _, pass := range passes {
		for i, fields := range records {
			if len(fields) == 0 {
				continue
			}
			o.line = i + 1
			if err := pass(fields); err != nil {
				return nil, err
			}
		}
	}
	return o.mesh, nil
}

func (o *objReader) materialLibs(opts OBJReadOptions) func([]string) error {
	return func(fields []string) error {
		if fields[0] != "mtllib" || opts.OpenMaterialLib == nil {
			return nil
		}
		for _, lib := range fields[1:] {
			if err := o.loadMaterialLib(lib, opts.OpenMaterialLib); err != nil {
				o.mesh.Stats.Warnings = append(o.mesh.Stats.Warnings, err.Error())
			}
		}
		return nil
	}
}

func (o *objReader) loadMaterialLib(lib string, open func(string) (io.ReadCloser, error)) error {
	rc, err := open(lib)
	if err != nil {
		return fmt.Errorf("material library %s: %w", lib, err)
	}
	defer rc.Close()

	textures, err := ParseMTL(rc)
	if err != nil {
		return fmt.Errorf("material library %s: %w", lib, err)
	}
	for mat, tex := range textures {
		o.materials[mat] = tex
	}
	return nil
}

// vertex parses "v x y z [w]", negating x.
func (o *objReader) vertex(fields []string) error {
	if fields[0] != "v" {
		return nil
	}
	if len(fields) < 4 {
		o.mesh.Stats.Malformed++
		return nil
	}
	xyz, err := o.floats(fields[1:4])
	if err != nil {
		return err
	}
	o.mesh.AddVertex(math.Clean(math.Vec3{-xyz[0], xyz[1], xyz[2]}))
	return nil
}

// texCoord parses "vt u v [w]", flipping v.
func (o *objReader) texCoord(fields []string) error {
	if fields[0] != "vt" {
		return nil
	}
	if len(fields) < 3 {
		o.mesh.Stats.Malformed++
		return nil
	}
	uv, err := o.floats(fields[1:3])
	if err != nil {
		return err
	}
	o.uvs = append(o.uvs, mesh.UV{U: uv[0], V: uv[1]}.FlipV())
	return nil
}

// element handles the records that build faces: s, usemtl and f.
func (o *objReader) element(fields []string) error {
	switch fields[0] {
	case "s":
		o.smoothing++
		if o.smoothing > 255 {
			o.smoothing = 0
		}
	case "usemtl":
		if len(fields) < 2 {
			o.mesh.Stats.Malformed++
			return nil
		}
		tex := fields[1]
		if mapped, ok := o.materials[tex]; ok {
			tex = mapped
		}
		o.texture = tex
		o.textured = true
		o.mesh.Textures.Add(tex)
	case "f":
		return o.face(fields[1:])
	}
	return nil
}

// objIndex resolves a 1-based or negative relative reference into a list
// of n elements.
func objIndex(ref, n int) int {
	if ref < 0 {
		return n + ref
	}
	return ref - 1
}

func (o *objReader) corner(tok string) (objCorner, error) {
	parts := strings.Split(tok, "/")
	ref, err := o.int(parts[0])
	if err != nil {
		return objCorner{}, err
	}
	c := objCorner{v: objIndex(ref, len(o.mesh.Vertices))}
	if err := o.mesh.CheckIndices(c.v); err != nil {
		return objCorner{}, fmt.Errorf("line %d: %w", o.line, err)
	}
	if len(parts) < 2 || parts[1] == "" {
		return c, nil
	}

	ref, err = o.int(parts[1])
	if err != nil {
		return objCorner{}, err
	}
	t := objIndex(ref, len(o.uvs))
	if t < 0 || t >= len(o.uvs) {
		return objCorner{}, fmt.Errorf("line %d: %w: uv %d (have %d)", o.line, ErrIndexOutOfRange, t, len(o.uvs))
	}
	c.uv = o.uvs[t]
	c.hasUV = true
	return c, nil
}

// face fan-triangulates an "f" record. Zero-area triangles are dropped.
func (o *objReader) face(toks []string) error {
	if len(toks) < 3 {
		o.mesh.Stats.Malformed++
		return nil
	}
	corners := make([]objCorner, len(toks))
	allUV := true
	for i, tok := range toks {
		c, err := o.corner(tok)
		if err != nil {
			return err
		}
		corners[i] = c
		allUV = allUV && c.hasUV
	}
	if !allUV {
		o.textured = false
	}
	o.mesh.Stats.Polygons++

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		tri := mesh.Triangle{a.v, b.v, c.v}
		if _, ok := math.FaceNormal(o.mesh.Corners(tri)); !ok {
			o.mesh.Stats.Degenerate++
			continue
		}
		f := mesh.Face{Tri: tri, Color: [3]int{o.smoothing, 127, 127}}
		if o.textured {
			f.Texture = o.texture
			f.UV = [3]mesh.UV{a.uv.Clamp(), b.uv.Clamp(), c.uv.Clamp()}
			f.HasUV = true
			for k, v := range tri {
				o.mesh.Textures.Set(o.texture, v, f.UV[k])
			}
		}
		o.mesh.Faces = append(o.mesh.Faces, f)
	}
	return nil
}

// OBJOptions controls WriteOBJ.
type OBJOptions struct {
	// Source is the name of the file the mesh was read from.
	Source string

	// MaterialLib is the file name referenced by mtllib when textured.
	MaterialLib string

	// UVs are the resolved per-face UVs. Nil writes untextured geometry.
	UVs [][3]mesh.UV
}

// WriteOBJ encodes m as a Wavefront OBJ file. X is negated back to OBJ
// handedness; meshes that were not read mirrored get their winding reversed
// to stay outward. Textured faces are grouped per texture, one material
// each (see WriteMTL), and reference mesh-wide deduplicated UVs.
func WriteOBJ(w io.Writer, m *mesh.Mesh, opts OBJOptions) error {
	if opts.UVs != nil && len(opts.UVs) != len(m.Faces) {
		return fmt.Errorf("obj: %d uv triples for %d faces", len(opts.UVs), len(m.Faces))
	}

	tris := m.Triangles()
	uvs := make([][3]mesh.UV, len(opts.UVs))
	copy(uvs, opts.UVs)
	if !m.Mirrored {
		for i := range tris {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
		for i := range uvs {
			uvs[i][1], uvs[i][2] = uvs[i][2], uvs[i][1]
		}
	}

	textures := m.UsedTextures()
	index := mesh.NewUVIndex()
	uvRefs := make([][3]int, len(uvs))
	if opts.UVs != nil {
		for _, tex := range textures {
			for i, f := range m.Faces {
				if f.Texture != tex {
					continue
				}
				for c := range uvRefs[i] {
					uvRefs[i][c] = index.Add(uvs[i][c].FlipV())
				}
			}
		}
	}

	bw := bufio.NewWriter(w)
	name := m.Name
	if name == "" {
		name = "exported_mesh"
	}
	fmt.Fprintf(bw, "# exported by meshconv\n")
	if opts.Source != "" {
		fmt.Fprintf(bw, "# original file: %q\n", opts.Source)
	}
	if opts.UVs != nil && opts.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", opts.MaterialLib)
	}
	fmt.Fprintf(bw, "o %s\n", name)
	fmt.Fprintf(bw, "# number of vertices %d\n", len(m.Vertices))
	fmt.Fprintf(bw, "# number of faces %d\n", len(m.Faces))
	fmt.Fprintf(bw, "# number of texture uvs %d\n", index.Len())

	fmt.Fprintf(bw, "# vertices...\n")
	for _, v := range m.Vertices {
		v = math.Clean(math.Vec3{-v[0], v[1], v[2]})
		fmt.Fprintf(bw, "v %.5f %.5f %.5f\n", v[0], v[1], v[2])
	}
	if index.Len() > 0 {
		fmt.Fprintf(bw, "# texture uvs...\n")
		for _, uv := range index.List() {
			fmt.Fprintf(bw, "vt %s\n", uv)
		}
	}

	fmt.Fprintf(bw, "# groups...\n")
	if opts.UVs == nil {
		fmt.Fprintf(bw, "g group_1\n")
		for _, t := range tris {
			fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
		}
		return bw.Flush()
	}

	for g, tex := range textures {
		fmt.Fprintf(bw, "g group_%d\n", g+1)
		fmt.Fprintf(bw, "usemtl %s\n", MaterialName(g))
		fmt.Fprintf(bw, "# uses texture '%s'\n", tex)
		for i, f := range m.Faces {
			if f.Texture != tex {
				continue
			}
			t, r := tris[i], uvRefs[i]
			fmt.Fprintf(bw, "f %d/%d %d/%d %d/%d\n", t[0]+1, r[0]+1, t[1]+1, r[1]+1, t[2]+1, r[2]+1)
		}
	}
	return bw.Flush()
}
