package math

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := LookAt(Vec3{3, -4, 12}, Vec3{1, 2, 0}, Vec3{0, 1, 0})
	result := m.Mul(Identity())

	for i := range 16 {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 6) // 30 degrees, the default view angle
	aspect := float32(400.0 / 350.0)

	m := Perspective(fov, aspect, 0.1, 1000)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
	if abs(m[5]/m[0]-aspect) > 1e-5 {
		t.Errorf("Perspective x/y focal ratio = %f, want %f", m[5]/m[0], aspect)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := Vec3{10, 5, 40}
	center := Vec3{10, 5, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	got := m.TransformPoint(eye)
	if got.Length() > 1e-4 {
		t.Errorf("eye in view space = %v, want origin", got)
	}

	// The focal point lies straight ahead on -Z.
	got = m.TransformPoint(center)
	if abs(got.X) > 1e-4 || abs(got.Y) > 1e-4 || abs(got.Z+40) > 1e-3 {
		t.Errorf("center in view space = %v, want (0, 0, -40)", got)
	}
}

func TestFromR3(t *testing.T) {
	got := FromR3(r3.Vec{X: 1.5, Y: -2, Z: 0.25})
	want := Vec3{1.5, -2, 0.25}
	if got != want {
		t.Errorf("FromR3() = %v, want %v", got, want)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
