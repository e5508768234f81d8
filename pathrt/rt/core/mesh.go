package core

import "github.com/go-gl/mathgl/mgl32"

// Mesh is shared, read-only triangle geometry. Indices are consumed as
// consecutive triples.
type Mesh struct {
	Vertices []mgl32.Vec3
	Normals  []mgl32.Vec3
	Indices  []uint32
}

// HasNormals reports whether the mesh carries exactly one normal per vertex.
func (m *Mesh) HasNormals() bool {
	return m != nil && len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// TriangleCount ignores trailing indices that do not form a full triple.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// MeshInstance places a shared mesh in the world. A nil Mesh means the
// instance has no valid backing resource.
type MeshInstance struct {
	Mesh      *Mesh
	Transform Transform
	Material  Material
}
