package lumen

import (
	"math"

	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent describes a view into the scene. The first non-preview
// camera drives the primary view; Preview cameras render the editor view.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Fov      float32 // vertical, degrees
	Near     float32
	Far      float32
	Preview  bool
}

func NewCameraComponent(position, lookAt mgl32.Vec3, fov float32) CameraComponent {
	c := CameraComponent{
		Position: position,
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      fov,
		Near:     0.1,
		Far:      1000,
	}
	c.AimAt(lookAt)
	return c
}

// AimAt points the camera at target and keeps Yaw/Pitch in agreement so a
// flying camera continues from the same orientation.
func (c *CameraComponent) AimAt(target mgl32.Vec3) {
	c.LookAt = target
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.X()), float64(-dir.Z()))))
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1)))))
}

// ToCore resolves the look-at description into a camera transform.
func (c CameraComponent) ToCore() core.Camera {
	cam := core.NewCamera(c.Fov)
	if c.Near > 0 {
		cam.Near = c.Near
	}
	if c.Far > 0 {
		cam.Far = c.Far
	}
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	cam.Transform.Position = c.Position
	cam.LookAt(c.LookAt, up)
	return cam
}
