package lumen

import (
	"github.com/gekko3d/lumen/pathrt/rt/app"
	"github.com/gekko3d/lumen/pathrt/rt/collect"
	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

const defaultCameraFov = 60

// SphereComponent renders an analytic sphere at the entity's transform.
// Radius follows the transform (half the X scale) and is rewritten each frame.
type SphereComponent struct {
	Color            mgl32.Vec3
	Emission         mgl32.Vec3
	EmissionStrength float32
	Radius           float32
}

func (s SphereComponent) material() core.Material {
	return core.NewEmissiveMaterial(s.Color, s.Emission, s.EmissionStrength)
}

// MeshRendererComponent renders a shared mesh asset at the entity's transform.
type MeshRendererComponent struct {
	Mesh             AssetId
	Color            mgl32.Vec3
	Emission         mgl32.Vec3
	EmissionStrength float32
}

func (m MeshRendererComponent) material() core.Material {
	return core.NewEmissiveMaterial(m.Color, m.Emission, m.EmissionStrength)
}

// PathTracerModule traces the scene every frame. With a nil Backend it runs on
// the shared window's GPU; otherwise Source and Destination are used as the
// frame targets and nothing is presented.
type PathTracerModule struct {
	Config app.Config

	Backend     app.Backend
	Source      app.Target
	Destination app.Target
}

// PathTracerState is the per-app tracer resource.
type PathTracerState struct {
	Dispatcher *app.Dispatcher

	Source      app.Target
	Destination app.Target

	scene     collect.SliceScene
	camera    core.Camera
	view      app.ViewKind
	hasCamera bool

	lastMode app.Mode
	frames   uint64

	surface *surfacePresenter
}

func (s *PathTracerState) LastMode() app.Mode { return s.lastMode }
func (s *PathTracerState) Frames() uint64     { return s.frames }

// Scene is the snapshot taken by the last sync.
func (s *PathTracerState) Scene() collect.Scene { return &s.scene }

func (m PathTracerModule) Install(a *App, cmd *Commands) {
	ensureSingleRenderer(a, string(RendererPathTracer))
	if Resource[AssetServer](a) == nil {
		a.addResources(NewAssetServer())
	}

	cfg := m.Config.Normalize()
	state := &PathTracerState{
		Source:      m.Source,
		Destination: m.Destination,
	}

	backend := m.Backend
	if backend == nil {
		ensureWindowResource(a, int(cfg.Width), int(cfg.Height), "")
		presenter, err := newSurfacePresenter(Resource[WindowState](a), a.Logger())
		if err != nil {
			a.Logger().Errorf("path tracer: %v", err)
			panic(err)
		}
		a.addResources(presenter.gpu)
		state.surface = presenter
		backend = presenter.backend
	}
	state.Dispatcher = app.NewDispatcher(cfg, backend, a.Logger())

	cmd.AddResources(state)
	a.UseSystem(System(pathTracerSyncSystem).InStage(PreRender))
	a.UseSystem(System(pathTracerRenderSystem).InStage(Render))

	a.Logger().Infof("path tracer installed: %d spheres, %d triangles, %d bounces, %d rays/pixel",
		cfg.MaxSpheres, cfg.MaxTriangles, cfg.MaxBounces, cfg.RaysPerPixel)
}

func (m PathTracerModule) OnEnable(a *App) {
	if state := Resource[PathTracerState](a); state != nil {
		state.Dispatcher.Enable()
	}
}

func (m PathTracerModule) OnDisable(a *App) {
	if state := Resource[PathTracerState](a); state != nil {
		state.Dispatcher.Disable()
	}
}

func (m PathTracerModule) OnShutdown(a *App) {
	state := Resource[PathTracerState](a)
	if state == nil {
		return
	}
	state.Dispatcher.Destroy()
	if state.surface != nil {
		state.surface.Release()
		state.surface = nil
	}
}

// pathTracerSyncSystem snapshots renderable components into the tracer's scene.
func pathTracerSyncSystem(cmd *Commands, state *PathTracerState, assets *AssetServer) {
	state.scene.SphereList = state.scene.SphereList[:0]
	state.scene.InstanceList = state.scene.InstanceList[:0]

	MakeQuery2[TransformComponent, SphereComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, sph *SphereComponent) bool {
		sphere := core.SphereFromTransform(tr.ToCore(), sph.material())
		sph.Radius = sphere.Radius
		state.scene.SphereList = append(state.scene.SphereList, sphere)
		return true
	})

	MakeQuery2[TransformComponent, MeshRendererComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, mr *MeshRendererComponent) bool {
		mesh, err := assets.Mesh(mr.Mesh)
		if err != nil {
			cmd.App().Logger().Debugf("entity %v: %v", eid, err)
		}
		state.scene.InstanceList = append(state.scene.InstanceList, core.MeshInstance{
			Mesh:      mesh,
			Transform: tr.ToCore(),
			Material:  mr.material(),
		})
		return true
	})

	// The first primary camera wins; a preview camera is used only when no
	// primary camera exists.
	state.hasCamera = false
	var preview *CameraComponent
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		if cam.Preview {
			if preview == nil {
				c := *cam
				preview = &c
			}
			return true
		}
		state.camera = cam.ToCore()
		state.view = app.ViewPrimary
		state.hasCamera = true
		return false
	})
	if !state.hasCamera && preview != nil {
		state.camera = preview.ToCore()
		state.view = app.ViewPreview
		state.hasCamera = true
	}
}

func pathTracerRenderSystem(cmd *Commands, state *PathTracerState) {
	if err := state.renderFrame(); err != nil {
		cmd.App().Logger().Errorf("path tracer frame %d: %v", state.frames, err)
	}
}

func (s *PathTracerState) renderFrame() error {
	if s.surface != nil {
		ready, err := s.surface.begin(s)
		if err != nil || !ready {
			return err
		}
	}

	camera := s.camera
	view := s.view
	if !s.hasCamera {
		camera = core.NewCamera(defaultCameraFov)
		view = app.ViewPrimary
	}

	mode, err := s.Dispatcher.RenderFrame(app.Frame{
		View:        view,
		Camera:      camera,
		Scene:       &s.scene,
		Source:      s.Source,
		Destination: s.Destination,
	})
	s.lastMode = mode
	s.frames++
	if err != nil {
		return err
	}

	if s.surface != nil {
		return s.surface.end()
	}
	return nil
}
