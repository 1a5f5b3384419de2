// Package math provides the vector primitives used by the mesh converters.
package math

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector in double precision.
type Vec3 = mgl64.Vec3

// epsilon below which a cross product is treated as zero length.
const epsilon = 1e-12

// FaceNormal returns the unit normal of the triangle a, b, c computed as
// (b-a) x (c-b). ok is false when the points are collinear or coincident,
// in which case the normal is undefined and the zero vector is returned.
func FaceNormal(a, b, c Vec3) (n Vec3, ok bool) {
	cross := b.Sub(a).Cross(c.Sub(b))
	l := cross.Len()
	if l < epsilon {
		return Vec3{}, false
	}
	return Clean(cross.Mul(1 / l)), true
}

// Clean replaces negative zero components with positive zero so that
// values print as "0" rather than "-0".
func Clean(v Vec3) Vec3 {
	for i := range v {
		if v[i] == 0 {
			v[i] = 0
		}
	}
	return v
}

// Opposes reports whether n points away from ref on any axis, i.e. the
// pairwise product of some component is negative.
func Opposes(n, ref Vec3) bool {
	return n[0]*ref[0] < 0 || n[1]*ref[1] < 0 || n[2]*ref[2] < 0
}

// Bounds returns the component-wise extents of points. The origin is always
// included, matching the model size reported in DAT headers.
func Bounds(points []Vec3) (lo, hi Vec3) {
	for _, p := range points {
		for i := 0; i < 3; i++ {
			if p[i] < lo[i] {
				lo[i] = p[i]
			}
			if p[i] > hi[i] {
				hi[i] = p[i]
			}
		}
	}
	return lo, hi
}

// Size returns the extent of points along each axis.
func Size(points []Vec3) Vec3 {
	lo, hi := Bounds(points)
	return hi.Sub(lo)
}
