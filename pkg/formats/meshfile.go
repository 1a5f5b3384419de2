package formats

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Faultbox/meshconv/pkg/math"
	"github.com/Faultbox/meshconv/pkg/mesh"
)

// MESH material records.
const (
	meshPlaceholderMaterial = "MATERIAL\t65535\t65535\t65535\t0\t0\t0"

	// A textured material has 15 tab-separated fields; the first holds
	// "MATERIAL <texture>" and the sixth is the texture flag.
	meshTexturedFields = 15
	meshTextureFlag    = "4"
)

// meshFillerMaterials pads the palette to the minimum size MESH consumers
// expect.
var meshFillerMaterials = [7]string{
	"MATERIAL\t0\t0\t65535\t0\t0\t0",
	"MATERIAL\t0\t65535\t0\t0\t0\t0",
	"MATERIAL\t0\t65535\t65535\t0\t0\t0",
	"MATERIAL\t65535\t0\t0\t0\t0\t0",
	"MATERIAL\t65535\t0\t65535\t0\t0\t0",
	"MATERIAL\t65535\t65535\t0\t0\t0\t0",
	"MATERIAL\t32768\t32768\t32768\t0\t0\t0",
}

// meshReader holds the per-file state of ReadMESH.
type meshReader struct {
	parseState
	mesh    *mesh.Mesh
	unnamed int // textured materials without a name seen so far
}

// ReadMESH parses a MESH file. EDGES records are only bounds-checked;
// edges are derived from the triangles whenever they are needed.
func ReadMESH(r io.Reader, name string) (*mesh.Mesh, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	mr := &meshReader{mesh: mesh.New(name)}
	for i, line := range lines {
		mr.line = i + 1
		if mr.keyword(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch mr.mode {
		case modeVertex:
			err = mr.vertex(fields)
		case modeEdges:
			err = mr.edge(fields)
		case modeFaces:
			err = mr.face(fields)
		case modeTexture:
			err = mr.uv(fields)
		}
		if err != nil {
			return nil, err
		}
	}
	return mr.mesh, nil
}

func (mr *meshReader) keyword(line string) bool {
	switch {
	case strings.HasPrefix(line, "VERTICES"):
		mr.mode = modeVertex
	case strings.HasPrefix(line, "MATERIAL"):
		mr.mode = modeFaces
		mr.material(line)
	case strings.HasPrefix(line, "EDGES"):
		mr.mode = modeEdges
	case strings.HasPrefix(line, "END"), strings.HasPrefix(line, "Mesh"):
		mr.mode = modeSkip
	case strings.HasPrefix(line, "UVS"):
		if mr.textured {
			mr.mode = modeTexture
		} else {
			mr.mode = modeSkip
		}
	default:
		return false
	}
	return true
}

// material starts a new material record, textured or not.
func (mr *meshReader) material(line string) {
	mr.textured = false
	fields := strings.Split(line, "\t")
	if len(fields) != meshTexturedFields {
		return
	}
	name := fmt.Sprintf("texture%d.png", mr.unnamed)
	if parts := strings.Fields(fields[0]); len(parts) > 1 {
		name = parts[1]
	} else {
		mr.unnamed++
	}
	if strings.TrimSpace(fields[5]) != meshTextureFlag {
		return
	}
	mr.textured = true
	mr.texture = name
	mr.mesh.Textures.Add(name)
}

// vertex parses "index x y z". Vertices are numbered in order of appearance.
func (mr *meshReader) vertex(fields []string) error {
	if len(fields) != 4 {
		mr.mesh.Stats.Malformed++
		return nil
	}
	if _, err := mr.int(fields[0]); err != nil {
		return err
	}
	xyz, err := mr.floats(fields[1:])
	if err != nil {
		return err
	}
	mr.mesh.AddVertex(math.Vec3{xyz[0], xyz[1], xyz[2]})
	return nil
}

// edge checks "a b" against the vertices read so far.
func (mr *meshReader) edge(fields []string) error {
	if len(fields) != 2 {
		mr.mesh.Stats.Malformed++
		return nil
	}
	ab, err := mr.ints(fields)
	if err != nil {
		return err
	}
	if err := mr.mesh.CheckIndices(ab...); err != nil {
		return fmt.Errorf("line %d: edge: %w", mr.line, err)
	}
	return nil
}

// face parses "v0 v1 v2".
func (mr *meshReader) face(fields []string) error {
	if len(fields) != 3 {
		mr.mesh.Stats.Malformed++
		return nil
	}
	idx, err := mr.ints(fields)
	if err != nil {
		return err
	}
	f := mesh.Face{Tri: mesh.Triangle{idx[0], idx[1], idx[2]}, Color: mesh.DefaultColor}
	if mr.textured {
		f.Texture = mr.texture
	}
	if err := mr.mesh.AddFace(f); err != nil {
		return fmt.Errorf("line %d: %w", mr.line, err)
	}
	mr.mesh.Stats.Polygons++
	return nil
}

// uv parses "vertex u v" for the active texture.
func (mr *meshReader) uv(fields []string) error {
	if len(fields) != 3 {
		mr.mesh.Stats.Malformed++
		return nil
	}
	v, err := mr.int(fields[0])
	if err != nil {
		return err
	}
	uv, err := mr.floats(fields[1:])
	if err != nil {
		return err
	}
	if err := mr.mesh.CheckIndices(v); err != nil {
		return fmt.Errorf("line %d: %w", mr.line, err)
	}
	mr.mesh.Textures.Set(mr.texture, v, mesh.UV{U: uv[0], V: uv[1]})
	return nil
}

// MESHOptions controls WriteMESH.
type MESHOptions struct {
	// UVs are the resolved per-face UVs. Nil writes a single placeholder
	// material and no UVS blocks.
	UVs [][3]mesh.UV
}

// WriteMESH encodes m as a MESH file with "\r" line ends. Mirrored meshes
// have their winding reversed so that the file's winding is outward.
func WriteMESH(w io.Writer, m *mesh.Mesh, opts MESHOptions) error {
	if opts.UVs != nil && len(opts.UVs) != len(m.Faces) {
		return fmt.Errorf("mesh: %d uv triples for %d faces", len(opts.UVs), len(m.Faces))
	}
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r", args...)
	}

	tris := m.Triangles()
	uvs := slices.Clone(opts.UVs)
	if m.Mirrored {
		for i := range tris {
			tris[i][1], tris[i][2] = tris[i][2], tris[i][1]
		}
		for i := range uvs {
			uvs[i][1], uvs[i][2] = uvs[i][2], uvs[i][1]
		}
	}

	line("Mesh\t1\t1")
	line("VERTICES")
	for i, v := range m.Vertices {
		line("%d\t%f\t%f\t%f", i, v[0], v[1], v[2])
	}
	line("EDGES")
	for _, e := range mesh.Edges(tris) {
		line("%d\t%d", e.A, e.B)
	}

	if uvs == nil {
		line("%s", meshPlaceholderMaterial)
		for _, t := range tris {
			line("%d\t%d\t%d", t[0], t[1], t[2])
		}
	} else {
		for _, name := range m.UsedTextures() {
			line("MATERIAL %s\t65535\t65535\t65535\t0\t%s\t0\t0\t0\t0\t0\t0\t0\t0\t0", name, meshTextureFlag)

			table := make(map[int]mesh.UV)
			for i, f := range m.Faces {
				if f.Texture != name {
					continue
				}
				t := tris[i]
				line("%d\t%d\t%d", t[0], t[1], t[2])
				for c, v := range t {
					// A vertex has one UV per texture here; the first wins.
					if _, ok := table[v]; !ok {
						table[v] = uvs[i][c]
					}
				}
			}

			line("UVS")
			vertices := make([]int, 0, len(table))
			for v := range table {
				vertices = append(vertices, v)
			}
			slices.Sort(vertices)
			for _, v := range vertices {
				line("%d\t%f\t%f", v, table[v].U, table[v].V)
			}
		}
	}

	for _, mat := range meshFillerMaterials {
		line("%s", mat)
	}
	line("END")

	return bw.Flush()
}
