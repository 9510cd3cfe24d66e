package common

import "github.com/go-gl/mathgl/mgl32"

// QuatFromXYZW converts a quaternion stored as (x, y, z, w), the layout used by
// glTF, into an mgl32.Quat.
func QuatFromXYZW(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// Mat4FromColumns converts a matrix stored as four columns into an mgl32.Mat4.
//
// Parameters:
//   - c: the matrix columns, c[i] being column i
//
// Returns:
//   - mgl32.Mat4: the column-major matrix
func Mat4FromColumns(c [4][4]float32) mgl32.Mat4 {
	var m mgl32.Mat4
	for col := range 4 {
		for row := range 4 {
			m[col*4+row] = c[col][row]
		}
	}
	return m
}

// Mat4FromFloat64 narrows a column-major float64 matrix into an mgl32.Mat4.
func Mat4FromFloat64(a [16]float64) mgl32.Mat4 {
	var m mgl32.Mat4
	for i, v := range a {
		m[i] = float32(v)
	}
	return m
}

// ComposeTRS builds Translation * Rotation * Scale.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion (normalised by the caller)
//   - s: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major transform
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// DecomposeTRS splits a column-major affine matrix into translation, rotation and scale.
// Shear is not represented; a matrix with shear decomposes to its closest TRS. A negative
// determinant is folded into the X scale.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - mgl32.Vec3: the translation (column 3)
//   - mgl32.Quat: the normalised rotation
//   - mgl32.Vec3: the per-axis scale
func DecomposeTRS(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := mgl32.Vec3{m[12], m[13], m[14]}

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	s := mgl32.Vec3{sx, sy, sz}

	// Degenerate axes keep their column unscaled so the rotation stays finite.
	if mgl32.Abs(sx) < 1e-4 {
		sx = 1
	}
	if sy < 1e-4 {
		sy = 1
	}
	if sz < 1e-4 {
		sz = 1
	}

	rot := mgl32.Ident4()
	rot.SetCol(0, m.Col(0).Mul(1/sx))
	rot.SetCol(1, m.Col(1).Mul(1/sy))
	rot.SetCol(2, m.Col(2).Mul(1/sz))
	rot[3], rot[7], rot[11] = 0, 0, 0
	rot[12], rot[13], rot[14], rot[15] = 0, 0, 0, 1

	return t, mgl32.Mat4ToQuat(rot).Normalize(), s
}
