package common

// Plane is the set of points p with Normal·p + Distance = 0. Points with a positive signed
// distance lie on the inner side.
type Plane struct {
	Normal   Vec3
	Distance float32
}

// SignedDistance returns Normal·p + Distance.
func (p Plane) SignedDistance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum holds six inward-facing planes in the order left, right, bottom, top, near, far.
type Frustum [6]Plane

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// FrustumFromMatrix extracts normalized frustum planes from a projection * view matrix by adding
// and subtracting the first three rows from the fourth (Gribb/Hartmann). Near and far follow the
// OpenGL clip range [-w, w].
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined view-projection matrix
//
// Returns:
//   - Frustum: the normalized planes
func FrustumFromMatrix(viewProj Mat4) Frustum {
	w := viewProj.Row(3)
	var f Frustum
	for axis := range 3 {
		r := viewProj.Row(axis)
		for side, sign := range [2]float32{1, -1} {
			var eq [4]float32
			for k := range eq {
				eq[k] = w[k] + sign*r[k]
			}
			f[axis*2+side] = normalizePlane(eq)
		}
	}
	return f
}

func normalizePlane(eq [4]float32) Plane {
	p := Plane{Normal: Vec3{eq[0], eq[1], eq[2]}, Distance: eq[3]}
	if l := p.Normal.Length(); l > 0 {
		p.Normal = Vec3{p.Normal[0] / l, p.Normal[1] / l, p.Normal[2] / l}
		p.Distance /= l
	}
	return p
}

// ContainsSphere reports whether a bounding sphere intersects or lies inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere is entirely outside one of the planes
func (f *Frustum) ContainsSphere(center Vec3, radius float32) bool {
	for _, p := range f {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}
