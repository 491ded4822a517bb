package common

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func point(m Mat4, p Vec3) [4]float32 {
	return m.Transform([4]float32{p[0], p[1], p[2], 1})
}

func TestMul_Identity(t *testing.T) {
	m := Model(Vec3{1, 2, 3}, Vec3{0.3, 0.2, 0.1}, Vec3{2, 2, 2})
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
}

func TestModel_TranslatesAndScales(t *testing.T) {
	m := Model(Vec3{1, 2, 3}, Vec3{}, Vec3{2, 3, 4})
	got := point(m, Vec3{1, 1, 1})
	want := [4]float32{3, 5, 7, 1}
	if got != want {
		t.Errorf("transformed = %v, want %v", got, want)
	}
}

func TestPerspective_MapsNearAndFarToClipRange(t *testing.T) {
	m := Perspective(math.Pi/2, 1, 1, 10)
	for _, tc := range []struct {
		z, ndc float32
	}{
		{-1, -1},
		{-10, 1},
	} {
		v := point(m, Vec3{0, 0, tc.z})
		if got := v[2] / v[3]; !near(got, tc.ndc) {
			t.Errorf("z=%v maps to %v, want %v", tc.z, got, tc.ndc)
		}
	}
}

func TestLookAt_MovesEyeToOrigin(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	eye := point(m, Vec3{0, 0, 5})
	target := point(m, Vec3{})
	if !near(eye[0], 0) || !near(eye[1], 0) || !near(eye[2], 0) {
		t.Errorf("eye in view space = %v, want origin", eye)
	}
	if !near(target[2], -5) {
		t.Errorf("target view z = %v, want -5", target[2])
	}
}

func TestVec3(t *testing.T) {
	x, y := Vec3{1, 0, 0}, Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("x cross y = %v", got)
	}
	if got := (Vec3{3, 4, 0}).Normalize(); !near(got[0], 0.6) || !near(got[1], 0.8) {
		t.Errorf("Normalize = %v", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(0) = %v", got)
	}
}

func TestFrustum_ContainsSphere(t *testing.T) {
	vp := Perspective(math.Pi/2, 1, 0.1, 100).Mul(LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0}))
	f := FrustumFromMatrix(vp)

	tests := []struct {
		name   string
		center Vec3
		r      float32
		want   bool
	}{
		{"center", Vec3{0, 0, 0}, 1, true},
		{"behind eye", Vec3{0, 0, 20}, 1, false},
		{"beyond far", Vec3{0, 0, -200}, 1, false},
		{"left of view", Vec3{-50, 0, 0}, 1, false},
		{"straddles left plane", Vec3{-5.5, 0, 0}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsSphere(tt.center, tt.r); got != tt.want {
				t.Errorf("ContainsSphere = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrustumFromMatrix_PlaneOrder(t *testing.T) {
	f := FrustumFromMatrix(Perspective(math.Pi/2, 1, 1, 10))
	// Looking down -Z from the origin: the left plane faces +X, the near plane faces -Z.
	if n := f[FrustumLeft].Normal; n[0] <= 0 {
		t.Errorf("left normal = %v, want +X component", n)
	}
	if n := f[FrustumNear].Normal; !near(n[2], -1) || !near(f[FrustumNear].Distance, -1) {
		t.Errorf("near plane = %+v, want normal -Z at distance -1", f[FrustumNear])
	}
}
