package lumen

import (
	"testing"

	"github.com/gekko3d/lumen/pathrt/rt/app"
	"github.com/gekko3d/lumen/pathrt/rt/core"
	"github.com/gekko3d/lumen/pathrt/rt/gpu"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type traceTarget struct{ w, h uint32 }

func (t *traceTarget) Width() uint32  { return t.w }
func (t *traceTarget) Height() uint32 { return t.h }

type traceBuffer struct {
	count, stride int
	released      *int
}

func (b *traceBuffer) Count() int  { return b.count }
func (b *traceBuffer) Stride() int { return b.stride }
func (b *traceBuffer) Release()    { *b.released++ }

type traceDevice struct {
	allocs, releases, writes int
}

func (d *traceDevice) Allocate(label string, count, stride int) (gpu.Buffer, error) {
	d.allocs++
	return &traceBuffer{count: count, stride: stride, released: &d.releases}, nil
}

func (d *traceDevice) Write(buf gpu.Buffer, data []byte) error {
	d.writes++
	return nil
}

type traceKernel struct {
	dispatches []core.KernelParams
	released   bool
}

func (k *traceKernel) BindGeometry(spheres, triangles gpu.Binding) error { return nil }

func (k *traceKernel) Dispatch(params core.KernelParams, dst app.Target) error {
	k.dispatches = append(k.dispatches, params)
	return nil
}

func (k *traceKernel) Release() { k.released = true }

type traceBackend struct {
	device  traceDevice
	kernels []*traceKernel
	copies  int
}

func (b *traceBackend) BufferDevice() gpu.Device { return &b.device }

func (b *traceBackend) NewKernel() (app.Kernel, error) {
	k := &traceKernel{}
	b.kernels = append(b.kernels, k)
	return k, nil
}

func (b *traceBackend) Copy(src, dst app.Target) error {
	b.copies++
	return nil
}

func (b *traceBackend) lastDispatch(t *testing.T) core.KernelParams {
	t.Helper()
	require.NotEmpty(t, b.kernels)
	k := b.kernels[len(b.kernels)-1]
	require.NotEmpty(t, k.dispatches)
	return k.dispatches[len(k.dispatches)-1]
}

func newTracerApp(t *testing.T, cfg app.Config) (*App, *traceBackend) {
	t.Helper()
	backend := &traceBackend{}
	a := NewAppBuilder().UseModule(
		AssetServerModule{},
		HierarchyModule{},
		PathTracerModule{
			Config:      cfg,
			Backend:     backend,
			Source:      &traceTarget{w: 64, h: 32},
			Destination: &traceTarget{w: 64, h: 32},
		},
	).Build()
	return a, backend
}

func spawnTestScene(a *App) {
	cmd := a.Commands()
	assets := Resource[AssetServer](a)

	cam := NewCameraComponent(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 60)
	cmd.AddEntity(&cam)
	cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec3{0, 1, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{2, 2, 2}},
		&SphereComponent{Color: mgl32.Vec3{1, 1, 1}},
	)
	cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&MeshRendererComponent{Mesh: assets.CreateCubeMesh(1, 1, 1), Color: mgl32.Vec3{0.5, 0.5, 0.5}},
	)
	a.FlushCommands()
}

func TestPathTracer_TracesScene(t *testing.T) {
	a, backend := newTracerApp(t, app.DefaultConfig())
	spawnTestScene(a)

	a.Step()

	state := Resource[PathTracerState](a)
	require.NotNil(t, state)
	assert.Equal(t, app.ModeTracing, state.LastMode())
	assert.Equal(t, uint64(1), state.Frames())

	params := backend.lastDispatch(t)
	assert.Equal(t, uint32(1), params.NumSpheres)
	assert.Equal(t, uint32(12), params.NumTriangles)
	assert.Equal(t, [2]float32{64, 32}, params.NumPixels)
	assert.Equal(t, uint32(0), params.FrameIndex)
	assert.InDelta(t, 2*params.View.HalfHeight, params.View.HalfWidth, 1e-5, "aspect follows the destination")

	a.Step()
	assert.Equal(t, uint32(1), backend.lastDispatch(t).FrameIndex, "static scene accumulates")
	assert.Len(t, backend.kernels, 1)
}

func TestPathTracer_SyncsSphereRadius(t *testing.T) {
	a, _ := newTracerApp(t, app.DefaultConfig())
	cmd := a.Commands()
	eid := cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{3, 1, 1}},
		&SphereComponent{},
	)
	a.FlushCommands()

	a.Step()

	found := false
	for _, c := range cmd.GetAllComponents(eid) {
		if s, ok := c.(SphereComponent); ok {
			found = true
			assert.Equal(t, float32(1.5), s.Radius)
		}
	}
	assert.True(t, found)
	spheres := Resource[PathTracerState](a).Scene().Spheres()
	require.Len(t, spheres, 1)
	assert.Equal(t, float32(1.5), spheres[0].Radius)
}

func TestPathTracer_UnknownMeshIsSkipped(t *testing.T) {
	a, backend := newTracerApp(t, app.DefaultConfig())
	cmd := a.Commands()
	cmd.AddEntity(
		&TransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&MeshRendererComponent{Mesh: "gone"},
	)
	a.FlushCommands()

	a.Step()

	instances := Resource[PathTracerState](a).Scene().MeshInstances()
	require.Len(t, instances, 1)
	assert.Nil(t, instances[0].Mesh)
	assert.Equal(t, uint32(0), backend.lastDispatch(t).NumTriangles)
	assert.Equal(t, app.ModeTracing, Resource[PathTracerState](a).LastMode())
}

func TestPathTracer_CameraMoveRestartsAccumulation(t *testing.T) {
	a, backend := newTracerApp(t, app.DefaultConfig())
	spawnTestScene(a)
	a.Step()
	a.Step()
	require.Equal(t, uint32(1), backend.lastDispatch(t).FrameIndex)

	MakeQuery1[CameraComponent](a.Commands()).Map(func(_ EntityId, cam *CameraComponent) bool {
		cam.Position = cam.Position.Add(mgl32.Vec3{0.1, 0, 0})
		return true
	})
	a.Step()
	assert.Equal(t, uint32(0), backend.lastDispatch(t).FrameIndex)
}

func TestPathTracer_PreviewCamera(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.TraceInPreview = false
	a, backend := newTracerApp(t, cfg)

	cam := NewCameraComponent(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 60)
	cam.Preview = true
	a.Commands().AddEntity(&cam)
	a.FlushCommands()

	a.Step()
	assert.Equal(t, app.ModePassthrough, Resource[PathTracerState](a).LastMode())
	assert.Equal(t, 1, backend.copies)
	assert.Empty(t, backend.kernels, "passthrough frames never build the kernel")

	primary := NewCameraComponent(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, 60)
	a.Commands().AddEntity(&primary)
	a.FlushCommands()

	a.Step()
	assert.Equal(t, app.ModeTracing, Resource[PathTracerState](a).LastMode())
}

func TestPathTracer_NoCameraUsesDefault(t *testing.T) {
	a, backend := newTracerApp(t, app.DefaultConfig())
	a.Step()

	assert.Equal(t, app.ModeTracing, Resource[PathTracerState](a).LastMode())
	assert.Equal(t, mgl32.Ident4(), backend.lastDispatch(t).View.LocalToWorld)
}

func TestPathTracer_Lifecycle(t *testing.T) {
	a, backend := newTracerApp(t, app.DefaultConfig())
	spawnTestScene(a)
	a.Step()
	require.Equal(t, 2, backend.device.allocs)

	a.Disable()
	assert.Equal(t, 2, backend.device.releases, "disable releases geometry buffers")
	a.Step()
	assert.Equal(t, app.ModePassthrough, Resource[PathTracerState](a).LastMode())

	a.Enable()
	a.Step()
	assert.Equal(t, app.ModeTracing, Resource[PathTracerState](a).LastMode())
	assert.Equal(t, uint32(0), backend.lastDispatch(t).FrameIndex)

	a.Shutdown()
	assert.True(t, backend.kernels[0].released)
	assert.Equal(t, 4, backend.device.releases)
}

func TestPathTracer_RendererGuard(t *testing.T) {
	a := NewAppBuilder().Build()
	a.addResources(&RendererTag{Name: "other"})

	assert.Panics(t, func() {
		a.UseModules(PathTracerModule{Backend: &traceBackend{}})
	})
}

func TestPathTracer_InstallsAssetServer(t *testing.T) {
	a := NewAppBuilder().UseModule(PathTracerModule{Backend: &traceBackend{}}).Build()
	assert.NotNil(t, Resource[AssetServer](a))
	assert.Equal(t, string(RendererPathTracer), Resource[RendererTag](a).Name)
}

func TestPathTracer_SeesHierarchyOfTheSameFrame(t *testing.T) {
	backend := &traceBackend{}
	a := NewAppBuilder().UseModule(
		PathTracerModule{
			Config:      app.DefaultConfig(),
			Backend:     backend,
			Source:      &traceTarget{w: 8, h: 8},
			Destination: &traceTarget{w: 8, h: 8},
		},
		HierarchyModule{},
	).Build()
	cmd := a.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	cmd.AddEntity(
		&Parent{Entity: parent},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 5, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
		&SphereComponent{},
	)
	a.FlushCommands()

	a.Step()

	spheres := Resource[PathTracerState](a).Scene().Spheres()
	require.Len(t, spheres, 1)
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, spheres[0].Position)
	assert.Equal(t, float32(0.5), spheres[0].Radius)
}
