// Package camera computes the default viewpoint for an elevation surface.
package camera

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/heightmesh/pkg/math"
)

// Params describes the fixed framing applied to every surface.
type Params struct {
	// Tilt is the elevation applied after the top-down view, in degrees.
	// Negative values swing the camera toward -Y.
	Tilt float64
	// PullIn is the fraction of the way the camera moves toward the focal point.
	PullIn float64
	// ViewAngle is the vertical field of view in degrees.
	ViewAngle float64
}

// DefaultParams returns a -10 degree tilt, a 35% pull-in and a 30 degree view angle.
func DefaultParams() Params {
	return Params{
		Tilt:      -10,
		PullIn:    0.35,
		ViewAngle: 30,
	}
}

// Pose is a camera placement. It is a value; every operation returns a new Pose.
type Pose struct {
	Position   r3.Vec
	FocalPoint r3.Vec
	ViewUp     r3.Vec
	ViewAngle  float64 // degrees
}

// Frame places the camera for bounds: top-down view, then the tilt,
// then the pull-in toward the focal point.
func Frame(bounds r3.Box, params Params) Pose {
	return TopDown(bounds, params.ViewAngle).
		Elevation(params.Tilt).
		PullIn(params.PullIn)
}

// TopDown looks straight down -Z at the centre of bounds with +Y up, far
// enough back that the bounding sphere fills the view angle.
func TopDown(bounds r3.Box, viewAngle float64) Pose {
	center := r3.Scale(0.5, r3.Add(bounds.Min, bounds.Max))

	radius := r3.Norm(r3.Sub(bounds.Max, bounds.Min)) / 2
	if radius == 0 {
		radius = 0.5
	}
	distance := radius / gomath.Sin(radians(viewAngle)/2)

	return Pose{
		Position:   r3.Add(center, r3.Vec{Z: distance}),
		FocalPoint: center,
		ViewUp:     r3.Vec{Y: 1},
		ViewAngle:  viewAngle,
	}
}

// Elevation rotates the camera about the focal point around its right axis.
// Positive angles move the camera toward the view-up direction. ViewUp is
// rotated too, which keeps it orthogonal and yields the same view matrix as
// the unrotated up vector.
func (p Pose) Elevation(degrees float64) Pose {
	if degrees == 0 {
		return p
	}
	right := r3.Unit(r3.Cross(p.Direction(), p.ViewUp))
	rot := r3.NewRotation(radians(degrees), r3.Scale(-1, right))

	out := p
	out.Position = r3.Add(p.FocalPoint, rot.Rotate(r3.Sub(p.Position, p.FocalPoint)))
	out.ViewUp = r3.Unit(rot.Rotate(p.ViewUp))
	return out
}

// PullIn moves the camera ratio of the way toward the focal point:
// position' = (1-ratio)*position + ratio*focal.
func (p Pose) PullIn(ratio float64) Pose {
	out := p
	out.Position = r3.Add(
		r3.Scale(1-ratio, p.Position),
		r3.Scale(ratio, p.FocalPoint),
	)
	return out
}

// Direction returns the unit vector from the camera toward the focal point.
func (p Pose) Direction() r3.Vec {
	return r3.Unit(r3.Sub(p.FocalPoint, p.Position))
}

// Distance returns the camera to focal point distance.
func (p Pose) Distance() float64 {
	return r3.Norm(r3.Sub(p.FocalPoint, p.Position))
}

// ViewMatrix returns the float32 view matrix for this pose.
func (p Pose) ViewMatrix() math.Mat4 {
	return math.LookAt(math.FromR3(p.Position), math.FromR3(p.FocalPoint), math.FromR3(p.ViewUp))
}

// Projection returns a perspective matrix using the pose's view angle.
func (p Pose) Projection(aspect, near, far float32) math.Mat4 {
	return math.Perspective(float32(radians(p.ViewAngle)), aspect, near, far)
}

func radians(deg float64) float64 {
	return deg * gomath.Pi / 180
}
