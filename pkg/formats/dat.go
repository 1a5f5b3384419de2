package formats

import (
	"bufio"
	"fmt"
	"io"
	stdmath "math"
	"slices"
	"strings"

	"github.com/Faultbox/meshconv/pkg/math"
	"github.com/Faultbox/meshconv/pkg/mesh"
)

// DefaultTextureSize is the nominal texture resolution DAT UVs are scaled
// by when nothing better is known.
const DefaultTextureSize = 256

// datPolygon remembers where a source polygon landed in the face list so
// that its TEXTURES record can be attached later.
type datPolygon struct {
	first    int // index of the first face fanned from this polygon
	count    int // number of faces
	corners  int // polygon vertex count
	reversed bool
	skipped  bool // malformed FACES line; its TEXTURES record is ignored
}

// datReader holds the per-file state of ReadDAT.
type datReader struct {
	parseState
	mesh     *mesh.Mesh
	polygons []datPolygon
	texLine  int // TEXTURES records consumed
}

// ReadDAT parses a DAT file. Polygons are winding-corrected against their
// authored normal and fan-triangulated.
func ReadDAT(r io.Reader, name string) (*mesh.Mesh, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	d := &datReader{mesh: mesh.New(name)}
	for i, line := range lines {
		d.line = i + 1
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		keyword, err := d.keyword(line)
		if err != nil {
			return nil, err
		}
		if keyword {
			continue
		}

		switch d.mode {
		case modeVertex:
			err = d.vertex(line)
		case modeFaces:
			err = d.face(line)
		case modeTexture:
			err = d.texture(line)
		}
		if err != nil {
			return nil, err
		}
	}
	return d.mesh, nil
}

// keyword switches mode on a section line and reports whether line was one.
func (d *datReader) keyword(line string) (bool, error) {
	switch {
	case strings.HasPrefix(line, "NVERTS"), strings.HasPrefix(line, "NFACES"):
		d.mode = modeSkip
		fields := strings.Fields(line)
		if len(fields) != 2 {
			d.mesh.Stats.Malformed++
			return true, nil
		}
		n, err := d.int(fields[1])
		if err != nil {
			return true, err
		}
		if fields[0] == "NVERTS" {
			d.mesh.Stats.DeclaredVerts = n
		} else {
			d.mesh.Stats.DeclaredFaces = n
		}
	case strings.HasPrefix(line, "VERTEX"):
		d.mode = modeVertex
	case strings.HasPrefix(line, "FACES"):
		d.mode = modeFaces
	case strings.HasPrefix(line, "TEXTURES"):
		d.mode = modeTexture
	case strings.HasPrefix(line, "END"):
		d.mode = modeSkip
	default:
		return false, nil
	}
	return true, nil
}

func (d *datReader) vertex(line string) error {
	fields := splitList(line)
	if len(fields) != 3 {
		d.mesh.Stats.Malformed++
		return nil
	}
	xyz, err := d.floats(fields)
	if err != nil {
		return err
	}
	d.mesh.AddVertex(math.Vec3{xyz[0], xyz[1], xyz[2]})
	return nil
}

// face parses "r,g,b, nx,ny,nz, n, i0,...,in-1".
func (d *datReader) face(line string) error {
	fields := splitList(line)
	if len(fields) < 10 {
		d.skipPolygon()
		return nil
	}
	n, err := d.int(fields[6])
	if err != nil {
		return err
	}
	if n < 3 || len(fields) != 7+n {
		d.skipPolygon()
		return nil
	}

	rgb, err := d.floats(fields[0:3])
	if err != nil {
		return err
	}
	ref, err := d.floats(fields[3:6])
	if err != nil {
		return err
	}
	poly, err := d.ints(fields[7:])
	if err != nil {
		return err
	}

	poly, reversed, err := d.mesh.CorrectWinding(poly, math.Vec3{ref[0], ref[1], ref[2]})
	if err != nil {
		return fmt.Errorf("line %d: %w", d.line, err)
	}

	d.mesh.Stats.Polygons++
	color := [3]int{int(stdmath.Round(rgb[0])), int(stdmath.Round(rgb[1])), int(stdmath.Round(rgb[2]))}
	tris := mesh.Fan(poly)
	d.polygons = append(d.polygons, datPolygon{
		first:    len(d.mesh.Faces),
		count:    len(tris),
		corners:  n,
		reversed: reversed,
	})
	for _, t := range tris {
		if err := d.mesh.AddFace(mesh.Face{Tri: t, Color: color}); err != nil {
			return fmt.Errorf("line %d: %w", d.line, err)
		}
	}
	return nil
}

// skipPolygon counts a malformed FACES line. A placeholder keeps TEXTURES
// record k paired with FACES line k.
func (d *datReader) skipPolygon() {
	d.mesh.Stats.Malformed++
	d.polygons = append(d.polygons, datPolygon{skipped: true})
}

// texture parses "name W H u0 v0 ... un-1 vn-1" for the next polygon.
func (d *datReader) texture(line string) error {
	k := d.texLine
	d.texLine++
	if k >= len(d.polygons) {
		d.mesh.Stats.Malformed++
		return nil
	}
	poly := d.polygons[k]
	if poly.skipped {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) != 3+2*poly.corners {
		d.mesh.Stats.Malformed++
		return nil
	}
	nums, err := d.floats(fields[1:])
	if err != nil {
		return err
	}
	w, h := nums[0], nums[1]
	if w <= 0 || h <= 0 {
		d.mesh.Stats.Malformed++
		return nil
	}

	uvs := make([]mesh.UV, poly.corners)
	for i := range uvs {
		uvs[i] = mesh.UV{U: nums[2+2*i] / w, V: nums[3+2*i] / h}.Clamp()
	}
	if poly.reversed {
		slices.Reverse(uvs)
	}

	name := fields[0]
	d.mesh.Textures.SetSize(name, w, h)
	for j, corners := range mesh.FanUV(uvs) {
		f := &d.mesh.Faces[poly.first+j]
		f.Texture = name
		f.UV = corners
		f.HasUV = true
		for c, v := range f.Tri {
			d.mesh.Textures.Set(name, v, corners[c])
		}
	}
	return nil
}

// DATOptions controls WriteDAT.
type DATOptions struct {
	// Source is the name of the file the mesh was read from, reported in
	// the header comment.
	Source string

	// UVs are the resolved per-face UVs. Nil writes no TEXTURES block.
	UVs [][3]mesh.UV

	// TextureSize returns the nominal resolution of a texture whose size
	// was not recorded when reading. Nil uses DefaultTextureSize.
	TextureSize func(name string) (w, h float64)
}

func (o DATOptions) size(m *mesh.Mesh, name string) (float64, float64) {
	if w, h, ok := m.Textures.Size(name); ok {
		return w, h
	}
	if o.TextureSize != nil {
		return o.TextureSize(name)
	}
	return DefaultTextureSize, DefaultTextureSize
}

// WriteDAT encodes m as a DAT file. Face normals are recomputed from the
// triangle winding; degenerate faces get a zero normal.
func WriteDAT(w io.Writer, m *mesh.Mesh, opts DATOptions) error {
	if opts.UVs != nil && len(opts.UVs) != len(m.Faces) {
		return fmt.Errorf("dat: %d uv triples for %d faces", len(opts.UVs), len(m.Faces))
	}
	bw := bufio.NewWriter(w)

	size := math.Size(m.Vertices)
	fmt.Fprintf(bw, "// converted by meshconv\n")
	fmt.Fprintf(bw, "// \n")
	if opts.Source != "" {
		fmt.Fprintf(bw, "// original file: %q\n", opts.Source)
		fmt.Fprintf(bw, "// \n")
	}
	fmt.Fprintf(bw, "// model size: %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
	fmt.Fprintf(bw, "// \n")
	if opts.UVs != nil {
		fmt.Fprintf(bw, "// textures used: %s\n", strings.Join(m.UsedTextures(), ", "))
		fmt.Fprintf(bw, "// \n")
	}
	fmt.Fprintf(bw, "NVERTS %d\n", len(m.Vertices))
	fmt.Fprintf(bw, "NFACES %d\n", len(m.Faces))
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "VERTEX\n")
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%.6f, %.6f, %.6f\n", v[0], v[1], v[2])
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "FACES\n")
	for i, f := range m.Faces {
		n, _ := m.FaceNormal(i)
		c := f.Color
		fmt.Fprintf(bw, "%d,%d,%d,\t%.5f,%.5f,%.5f,\t3,\t%d,%d,%d\n",
			c[0], c[1], c[2], n[0], n[1], n[2], f.Tri[0], f.Tri[1], f.Tri[2])
	}
	fmt.Fprintf(bw, "\n")

	if opts.UVs != nil {
		fmt.Fprintf(bw, "TEXTURES\n")
		for i, f := range m.Faces {
			sw, sh := opts.size(m, f.Texture)
			uv := opts.UVs[i]
			fmt.Fprintf(bw, "%s\t%g %g\t%.5f %.5f\t%.5f %.5f\t%.5f %.5f\n", f.Texture, sw, sh,
				uv[0].U*sw, uv[0].V*sh, uv[1].U*sw, uv[1].V*sh, uv[2].U*sw, uv[2].V*sh)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "END\n")

	return bw.Flush()
}
