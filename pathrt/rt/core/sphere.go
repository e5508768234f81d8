package core

import "github.com/go-gl/mathgl/mgl32"

type Sphere struct {
	Position mgl32.Vec3
	Radius   float32
	Material Material
}

// SphereFromTransform derives a sphere from its placement: the X scale is the
// diameter, rotation is irrelevant.
func SphereFromTransform(t Transform, m Material) Sphere {
	return Sphere{
		Position: t.Position,
		Radius:   t.Scale.X() * 0.5,
		Material: m,
	}
}
