package geometry

import "math"

// Transform3D is a 4x4 homogeneous matrix (row-major) describing a rigid
// frame: rotation in the upper-left 3x3 block, translation in the last
// column.
type Transform3D struct {
	M [4][4]float64 `json:"matrix" yaml:"matrix"`
}

// Identity returns the multiplicative unit.
func Identity() Transform3D {
	return Transform3D{M: [4][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}}
}

// Translation returns a pure translation by v.
func Translation(v Vec3) Transform3D {
	t := Identity()
	t.M[0][3], t.M[1][3], t.M[2][3] = v.X, v.Y, v.Z
	return t
}

// FromBasis builds a frame whose rotation columns are x, y, z and whose
// origin is o.
func FromBasis(x, y, z, o Vec3) Transform3D {
	return Transform3D{M: [4][4]float64{
		{x.X, y.X, z.X, o.X},
		{x.Y, y.Y, z.Y, o.Y},
		{x.Z, y.Z, z.Z, o.Z},
		{0, 0, 0, 1},
	}}
}

// Compose returns t * other: other is expressed in t's frame.
func (t Transform3D) Compose(other Transform3D) Transform3D {
	var out Transform3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += t.M[i][k] * other.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// TransformPoint applies t to p with an implicit w of 1. No perspective
// divide is needed for rigid frames.
func (t Transform3D) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: t.M[0][0]*p.X + t.M[0][1]*p.Y + t.M[0][2]*p.Z + t.M[0][3],
		Y: t.M[1][0]*p.X + t.M[1][1]*p.Y + t.M[1][2]*p.Z + t.M[1][3],
		Z: t.M[2][0]*p.X + t.M[2][1]*p.Y + t.M[2][2]*p.Z + t.M[2][3],
	}
}

// Origin returns the translation part.
func (t Transform3D) Origin() Vec3 {
	return Vec3{t.M[0][3], t.M[1][3], t.M[2][3]}
}

// Column returns rotation column i (0 = X axis, 1 = Y axis, 2 = Z axis).
func (t Transform3D) Column(i int) Vec3 {
	return Vec3{t.M[0][i], t.M[1][i], t.M[2][i]}
}

// ApproxEqual compares every matrix entry within tol.
func (t Transform3D) ApproxEqual(other Transform3D, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(t.M[i][j]-other.M[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
