package lumen

import (
	"path/filepath"
	"testing"

	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetSerialization(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}, HierarchyModule{}).Build()
	cmd := app.Commands()
	server := Resource[AssetServer](app)

	custom := server.CreateMesh(&core.Mesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  []uint32{0, 1, 2},
	})
	cube := server.CreateCubeMesh(1, 2, 3)

	cam := NewCameraComponent(mgl32.Vec3{0, 1, 5}, mgl32.Vec3{0, 1, 0}, 45)
	cmd.AddEntity(&cam, &FlyingCameraComponent{})
	cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&SphereComponent{Color: mgl32.Vec3{1, 0, 0}, Emission: mgl32.Vec3{1, 1, 1}, EmissionStrength: 3},
	)
	rot := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec3{-1, 0, 0}, Rotation: rot, Scale: mgl32.Vec3{2, 2, 2}},
		&MeshRendererComponent{Mesh: cube, Color: mgl32.Vec3{0, 1, 0}},
	)
	cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&MeshRendererComponent{Mesh: custom, Color: mgl32.Vec3{0, 0, 1}},
	)
	cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&MeshRendererComponent{Mesh: "missing"},
	)
	app.FlushCommands()

	file := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, SavePreset(cmd, server, file))

	loaded, err := LoadSceneFile(file)
	require.NoError(t, err)

	require.NotNil(t, loaded.Camera)
	assert.Equal(t, mgl32.Vec3{0, 1, 5}, loaded.Camera.Position)
	assert.Equal(t, float32(45), loaded.Camera.Fov)
	assert.True(t, loaded.Camera.Flying)

	require.Len(t, loaded.Spheres, 1)
	assert.Equal(t, float32(0.5), loaded.Spheres[0].Radius)
	assert.Equal(t, float32(3), loaded.Spheres[0].EmissionStrength)

	require.Len(t, loaded.Meshes, 2, "the mesh with an unknown asset is dropped")
	assert.Equal(t, MeshShapeCube, loaded.Meshes[0].Shape)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, loaded.Meshes[0].Size)
	assert.InDelta(t, rot.W, loaded.Meshes[0].Rotation.Quat().W, 1e-6)
	assert.Equal(t, MeshShapeCustom, loaded.Meshes[1].Shape)
	assert.Equal(t, []uint32{0, 1, 2}, loaded.Meshes[1].Indices)

	// Load into a fresh app and capture again.
	app2 := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	cmd2 := app2.Commands()
	server2 := Resource[AssetServer](app2)
	ids, err := LoadPreset(cmd2, server2, file)
	require.NoError(t, err)
	assert.Len(t, ids, 4)
	app2.FlushCommands()

	again := CaptureScene(cmd2, server2)
	assert.Equal(t, loaded.Spheres, again.Spheres)
	assert.Equal(t, loaded.Meshes, again.Meshes)
	assert.Equal(t, loaded.Camera, again.Camera)
}

func TestCaptureScene_KeepsLifetime(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	cmd := app.Commands()
	server := Resource[AssetServer](app)

	_, err := SpawnScene(cmd, server, &SceneDef{
		Spheres: []SphereDef{{Radius: 1, Lifetime: 2.5}, {Radius: 1}},
		Meshes:  []MeshDef{{Shape: MeshShapeCube, Size: mgl32.Vec3{1, 1, 1}, Lifetime: 4}},
	})
	require.NoError(t, err)
	app.FlushCommands()

	captured := CaptureScene(cmd, server)
	require.Len(t, captured.Spheres, 2)
	require.Len(t, captured.Meshes, 1)

	var lifetimes []float32
	for _, s := range captured.Spheres {
		lifetimes = append(lifetimes, s.Lifetime)
	}
	assert.ElementsMatch(t, []float32{2.5, 0}, lifetimes)
	assert.Equal(t, float32(4), captured.Meshes[0].Lifetime)
}
