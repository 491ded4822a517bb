package common

import (
	"math"
)

// Vec3 is a point or direction in world space.
type Vec3 [3]float32

// Mat4 is a 4x4 matrix in OpenGL's column-major layout: element (row, col) is at index col*4+row.
// A *Mat4 converts to the *float32 expected by UniformMatrix4fv via &m[0].
type Mat4 [16]float32

// Identity returns the identity matrix.
//
// Returns:
//   - Mat4: the identity
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Mul returns m * b.
//
// Parameters:
//   - b: right-hand matrix
//
// Returns:
//   - Mat4: the product
func (m Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += m[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Row returns row i of m.
func (m Mat4) Row(i int) [4]float32 {
	return [4]float32{m[i], m[4+i], m[8+i], m[12+i]}
}

// Transform returns m * v for a homogeneous vector v.
func (m Mat4) Transform(v [4]float32) [4]float32 {
	var out [4]float32
	for row := range 4 {
		r := m.Row(row)
		out[row] = r[0]*v[0] + r[1]*v[1] + r[2]*v[2] + r[3]*v[3]
	}
	return out
}

// Perspective returns a right-handed projection that maps view depth [-near, -far] into
// OpenGL clip space [-1, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / float32(math.Tan(float64(fovY)/2))
	depth := near - far
	return Mat4{
		0:  f / aspect,
		5:  f,
		10: (far + near) / depth,
		11: -1,
		14: 2 * far * near / depth,
	}
}

// LookAt returns a view matrix placing the eye at eye and looking toward center.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point
//   - up: up direction, typically (0, 1, 0)
//
// Returns:
//   - Mat4: the view matrix
func LookAt(eye, center, up Vec3) Mat4 {
	back := eye.Sub(center).Normalize()
	right := up.Cross(back).Normalize()
	top := back.Cross(right)
	return Mat4{
		right[0], top[0], back[0], 0,
		right[1], top[1], back[1], 0,
		right[2], top[2], back[2], 0,
		-right.Dot(eye), -top.Dot(eye), -back.Dot(eye), 1,
	}
}

// Model returns translate(pos) * Ry * Rx * Rz * scale(scale).
//
// Parameters:
//   - pos: translation in world space
//   - rot: Euler angles in radians around X, Y and Z
//   - scale: scale factors along each axis
//
// Returns:
//   - Mat4: the model matrix
func Model(pos, rot, scale Vec3) Mat4 {
	sx, cx := sincos(rot[0])
	sy, cy := sincos(rot[1])
	sz, cz := sincos(rot[2])
	return Mat4{
		(cy*cz + sy*sx*sz) * scale[0], cx * sz * scale[0], (cy*sx*sz - sy*cz) * scale[0], 0,
		(sy*sx*cz - cy*sz) * scale[1], cx * cz * scale[1], (sy*sz + cy*sx*cz) * scale[1], 0,
		sy * cx * scale[2], -sx * scale[2], cy * cx * scale[2], 0,
		pos[0], pos[1], pos[2], 1,
	}
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}
}
