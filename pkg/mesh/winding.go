package mesh

import (
	"slices"

	"github.com/Faultbox/meshconv/pkg/math"
)

// CorrectWinding checks polygon poly against an authored reference normal.
// The geometric normal is taken from the first three vertices; when it
// opposes ref on any axis the polygon is returned in reverse order.
// A degenerate leading triangle leaves the order untouched.
//
// The input slice is never modified.
func (m *Mesh) CorrectWinding(poly []int, ref math.Vec3) (out []int, reversed bool, err error) {
	if len(poly) < 3 {
		return slices.Clone(poly), false, nil
	}
	if err := m.CheckIndices(poly...); err != nil {
		return nil, false, err
	}

	n, ok := math.FaceNormal(m.Vertices[poly[0]], m.Vertices[poly[1]], m.Vertices[poly[2]])
	out = slices.Clone(poly)
	if !ok || !math.Opposes(n, ref) {
		return out, false, nil
	}
	slices.Reverse(out)
	return out, true, nil
}
