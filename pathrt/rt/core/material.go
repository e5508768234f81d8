package core

import "github.com/go-gl/mathgl/mgl32"

// Material is the flat color/emission description shared by spheres and meshes.
type Material struct {
	Color            mgl32.Vec3
	Emission         mgl32.Vec3
	EmissionStrength float32
}

// DefaultMaterial is white, non-emissive.
func DefaultMaterial() Material {
	return Material{
		Color:            mgl32.Vec3{1, 1, 1},
		Emission:         mgl32.Vec3{0, 0, 0},
		EmissionStrength: 0,
	}
}

func NewEmissiveMaterial(color, emission mgl32.Vec3, strength float32) Material {
	return Material{
		Color:            color,
		Emission:         emission,
		EmissionStrength: strength,
	}
}
