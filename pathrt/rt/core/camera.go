package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ReferenceConvention selects the image-plane distance used for ray generation.
type ReferenceConvention uint32

const (
	// ReferenceUnit places the image plane at distance 1 from the eye.
	ReferenceUnit ReferenceConvention = iota
	// ReferenceNearPlane places the image plane on the near clip plane.
	ReferenceNearPlane
)

func (c ReferenceConvention) String() string {
	switch c {
	case ReferenceNearPlane:
		return "near-plane"
	default:
		return "unit"
	}
}

// Camera is the renderable projection state of a view. The camera looks down
// its local -Z axis with +Y up.
type Camera struct {
	Transform   Transform
	FieldOfView float32 // vertical, degrees
	Near        float32
	Far         float32
}

func NewCamera(fov float32) Camera {
	return Camera{
		Transform:   NewTransform(),
		FieldOfView: fov,
		Near:        0.1,
		Far:         1000,
	}
}

// LookAt orients the camera at target from its current position.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	c.Transform.Rotation = LookRotation(target.Sub(c.Transform.Position), up)
}

// LookRotation returns the world orientation that turns local -Z towards dir
// while keeping local +Y as close to up as possible.
func LookRotation(dir, up mgl32.Vec3) mgl32.Quat {
	if dir.Len() == 0 {
		return mgl32.QuatIdent()
	}
	dir = dir.Normalize()
	rotDir := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, -1}, dir)

	right := dir.Cross(up)
	if right.Len() == 0 {
		return rotDir
	}
	trueUp := right.Normalize().Cross(dir)
	rotUp := mgl32.QuatBetweenVectors(rotDir.Rotate(mgl32.Vec3{0, 1, 0}), trueUp)
	return rotUp.Mul(rotDir).Normalize()
}

// ReferenceDistance resolves the convention against this camera's clip planes.
func (c Camera) ReferenceDistance(conv ReferenceConvention) float32 {
	if conv == ReferenceNearPlane {
		return c.Near
	}
	return 1
}

// ViewParams holds the ray-generation parameters consumed by the kernel.
type ViewParams struct {
	HalfWidth         float32
	HalfHeight        float32
	ReferenceDistance float32
	LocalToWorld      mgl32.Mat4
}

// ComputeViewParams derives the frustum half extents at referenceDistance.
// Inputs are not validated; a degenerate fov or aspect yields NaN/Inf.
func ComputeViewParams(fovDegrees, aspect float32, localToWorld mgl32.Mat4, referenceDistance float32) ViewParams {
	halfHeight := referenceDistance * float32(math.Tan(float64(fovDegrees)*0.5*math.Pi/180.0))
	return ViewParams{
		HalfWidth:         halfHeight * aspect,
		HalfHeight:        halfHeight,
		ReferenceDistance: referenceDistance,
		LocalToWorld:      localToWorld,
	}
}

// ViewParams computes this camera's parameters for the given aspect ratio.
func (c Camera) ViewParams(aspect float32, conv ReferenceConvention) ViewParams {
	return ComputeViewParams(c.FieldOfView, aspect, c.Transform.ObjectToWorld(), c.ReferenceDistance(conv))
}
