package lumen

import (
	"testing"

	"github.com/gekko3d/lumen/pathrt/rt/collect"
	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_CreateMesh(t *testing.T) {
	server := NewAssetServer()
	mesh := &core.Mesh{Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, Indices: []uint32{0, 1, 2}}

	id := server.CreateMesh(mesh)
	got, err := server.Mesh(id)
	require.NoError(t, err)
	assert.Same(t, mesh, got)

	asset, ok := server.MeshAsset(id)
	require.True(t, ok)
	assert.Equal(t, MeshShapeCustom, asset.Source.Shape)
	assert.NotEqual(t, id, server.CreateMesh(mesh), "ids are unique")
	assert.Equal(t, 2, server.MeshCount())
}

func TestAssetServer_UnknownMesh(t *testing.T) {
	server := NewAssetServer()

	_, err := server.Mesh("nope")
	assert.ErrorIs(t, err, ErrUnknownMesh)
	assert.ErrorIs(t, server.ReplaceMesh("nope", &core.Mesh{}), ErrUnknownMesh)
}

func TestAssetServer_ReplaceMesh(t *testing.T) {
	server := NewAssetServer()
	id := server.CreateCubeMesh(1, 1, 1)
	replacement := QuadMesh(1, 1)

	require.NoError(t, server.ReplaceMesh(id, replacement))
	got, err := server.Mesh(id)
	require.NoError(t, err)
	assert.Same(t, replacement, got)

	asset, _ := server.MeshAsset(id)
	assert.Equal(t, uint(1), asset.version)
	assert.Equal(t, MeshShapeCustom, asset.Source.Shape)
}

func TestProceduralMeshes_Counts(t *testing.T) {
	quad := QuadMesh(2, 2)
	assert.Equal(t, 2, quad.TriangleCount())
	assert.True(t, quad.HasNormals())

	cube := CubeMesh(1, 2, 3)
	assert.Equal(t, 12, cube.TriangleCount())
	assert.Len(t, cube.Vertices, 24)
	assert.True(t, cube.HasNormals())

	sphere := SphereMesh(1, 8)
	// 4 rings of 8 segments, the two polar rings contribute one triangle per segment.
	assert.Equal(t, 8*(2*4-2), sphere.TriangleCount())
	assert.True(t, sphere.HasNormals())
	for _, v := range sphere.Vertices {
		assert.InDelta(t, 1, v.Len(), 1e-5)
	}
}

func TestCubeMesh_Extents(t *testing.T) {
	cube := CubeMesh(2, 4, 6)
	var lo, hi mgl32.Vec3
	for _, v := range cube.Vertices {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	assert.Equal(t, mgl32.Vec3{-1, -2, -3}, lo)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, hi)
}

// Every procedural triangle must wind counter-clockwise seen from outside,
// so its face normal agrees with the vertex normals.
func TestProceduralMeshes_WindingFacesOutward(t *testing.T) {
	for name, mesh := range map[string]*core.Mesh{
		"quad":   QuadMesh(1, 1),
		"cube":   CubeMesh(1, 1, 1),
		"sphere": SphereMesh(1, 12),
	} {
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			face := collect.FaceNormal(mesh.Vertices[i0], mesh.Vertices[i1], mesh.Vertices[i2])
			avg := mesh.Normals[i0].Add(mesh.Normals[i1]).Add(mesh.Normals[i2])
			assert.Positive(t, face.Dot(avg), "%s triangle %d faces inward", name, i/3)
		}
	}
}

func TestAssetServer_CreateFromSource(t *testing.T) {
	server := NewAssetServer()

	id, ok := server.CreateFromSource(MeshSource{Shape: MeshShapeSphere, Size: mgl32.Vec3{2, 2, 2}, Segments: 6})
	require.True(t, ok)
	asset, _ := server.MeshAsset(id)
	assert.Equal(t, 6, asset.Source.Segments)
	assert.Equal(t, float32(2), asset.Source.Size.X())

	_, ok = server.CreateFromSource(MeshSource{Shape: MeshShapeCustom})
	assert.False(t, ok)
	_, ok = server.CreateFromSource(MeshSource{Shape: "torus"})
	assert.False(t, ok)
}

func TestAssetServerModule_Install(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	assert.NotNil(t, Resource[AssetServer](app))
}
