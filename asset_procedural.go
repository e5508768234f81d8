package lumen

import (
	"math"

	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

const defaultSphereSegments = 16

// CreateQuadMesh builds a two-triangle quad in the XY plane facing +Z.
func (server *AssetServer) CreateQuadMesh(width, height float32) AssetId {
	return server.storeMesh(MeshSource{Shape: MeshShapeQuad, Size: mgl32.Vec3{width, height, 0}}, QuadMesh(width, height))
}

func QuadMesh(width, height float32) *core.Mesh {
	hx, hy := width*0.5, height*0.5
	n := mgl32.Vec3{0, 0, 1}
	return &core.Mesh{
		Vertices: []mgl32.Vec3{{-hx, -hy, 0}, {hx, -hy, 0}, {hx, hy, 0}, {-hx, hy, 0}},
		Normals:  []mgl32.Vec3{n, n, n, n},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

// CreateCubeMesh builds a box centred on the origin. Vertices are not shared
// between faces so each face keeps a flat normal.
func (server *AssetServer) CreateCubeMesh(sizeX, sizeY, sizeZ float32) AssetId {
	return server.storeMesh(MeshSource{Shape: MeshShapeCube, Size: mgl32.Vec3{sizeX, sizeY, sizeZ}}, CubeMesh(sizeX, sizeY, sizeZ))
}

func CubeMesh(sizeX, sizeY, sizeZ float32) *core.Mesh {
	h := mgl32.Vec3{sizeX * 0.5, sizeY * 0.5, sizeZ * 0.5}
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	mesh := &core.Mesh{}
	for _, f := range faces {
		base := uint32(len(mesh.Vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1]))
			mesh.Vertices = append(mesh.Vertices, mgl32.Vec3{p.X() * h.X(), p.Y() * h.Y(), p.Z() * h.Z()})
			mesh.Normals = append(mesh.Normals, f.normal)
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// CreateSphereMesh builds a UV sphere. segments below 3 use the default.
func (server *AssetServer) CreateSphereMesh(radius float32, segments int) AssetId {
	if segments < 3 {
		segments = defaultSphereSegments
	}
	return server.storeMesh(MeshSource{Shape: MeshShapeSphere, Size: mgl32.Vec3{radius, radius, radius}, Segments: segments}, SphereMesh(radius, segments))
}

func SphereMesh(radius float32, segments int) *core.Mesh {
	if segments < 3 {
		segments = defaultSphereSegments
	}
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}

	mesh := &core.Mesh{}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			mesh.Vertices = append(mesh.Vertices, n.Mul(radius))
			mesh.Normals = append(mesh.Normals, n)
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			// counter-clockwise seen from outside
			if r != 0 {
				mesh.Indices = append(mesh.Indices, a, a+1, b)
			}
			if r != uint32(rings)-1 {
				mesh.Indices = append(mesh.Indices, a+1, b+1, b)
			}
		}
	}
	return mesh
}

// CreateFromSource rebuilds a procedural mesh. Custom sources cannot be
// rebuilt and return false.
func (server *AssetServer) CreateFromSource(src MeshSource) (AssetId, bool) {
	switch src.Shape {
	case MeshShapeQuad:
		return server.CreateQuadMesh(src.Size.X(), src.Size.Y()), true
	case MeshShapeCube:
		return server.CreateCubeMesh(src.Size.X(), src.Size.Y(), src.Size.Z()), true
	case MeshShapeSphere:
		return server.CreateSphereMesh(src.Size.X(), src.Segments), true
	}
	return "", false
}
