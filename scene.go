package lumen

import (
	"fmt"
	"os"

	"github.com/gekko3d/lumen/pathrt/rt/app"
	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// SceneDef is the on-disk description of a scene and its tracer settings.
type SceneDef struct {
	Tracer  *TracerDef  `yaml:"tracer,omitempty"`
	Camera  *CameraDef  `yaml:"camera,omitempty"`
	Spheres []SphereDef `yaml:"spheres,omitempty"`
	Meshes  []MeshDef   `yaml:"meshes,omitempty"`
}

// TracerDef overrides app.Config fields. Zero values keep the config's value.
type TracerDef struct {
	MaxSpheres     int    `yaml:"max_spheres,omitempty"`
	MaxTriangles   int    `yaml:"max_triangles,omitempty"`
	MaxBounces     uint32 `yaml:"max_bounces,omitempty"`
	RaysPerPixel   uint32 `yaml:"rays_per_pixel,omitempty"`
	Width          uint32 `yaml:"width,omitempty"`
	Height         uint32 `yaml:"height,omitempty"`
	TraceInPreview *bool  `yaml:"trace_in_preview,omitempty"`
	Accumulate     *bool  `yaml:"accumulate,omitempty"`
	Reference      string `yaml:"reference,omitempty"` // unit | near-plane
}

type CameraDef struct {
	Position mgl32.Vec3 `yaml:"position"`
	LookAt   mgl32.Vec3 `yaml:"look_at"`
	Fov      float32    `yaml:"fov,omitempty"`
	Near     float32    `yaml:"near,omitempty"`
	Far      float32    `yaml:"far,omitempty"`
	Preview  bool       `yaml:"preview,omitempty"`
	Flying   bool       `yaml:"flying,omitempty"`
}

type MaterialDef struct {
	Color            mgl32.Vec3 `yaml:"color"`
	Emission         mgl32.Vec3 `yaml:"emission,omitempty"`
	EmissionStrength float32    `yaml:"emission_strength,omitempty"`
}

type SphereDef struct {
	Position    mgl32.Vec3 `yaml:"position"`
	Radius      float32    `yaml:"radius"`
	Lifetime    float32    `yaml:"lifetime,omitempty"`
	MaterialDef `yaml:",inline"`
}

// MeshDef places a procedural or inline mesh. Custom meshes carry their
// geometry; the other shapes are rebuilt from Size and Segments.
type MeshDef struct {
	Shape    MeshShape    `yaml:"shape"`
	Size     mgl32.Vec3   `yaml:"size,omitempty"`
	Segments int          `yaml:"segments,omitempty"`
	Vertices []mgl32.Vec3 `yaml:"vertices,omitempty"`
	Normals  []mgl32.Vec3 `yaml:"normals,omitempty"`
	Indices  []uint32     `yaml:"indices,omitempty"`

	Position    mgl32.Vec3 `yaml:"position"`
	Rotation    QuatDef    `yaml:"rotation,omitempty"`
	Scale       mgl32.Vec3 `yaml:"scale,omitempty"`
	Lifetime    float32    `yaml:"lifetime,omitempty"`
	MaterialDef `yaml:",inline"`
}

// QuatDef is a quaternion as [w, x, y, z]. The zero value is identity.
type QuatDef [4]float32

func NewQuatDef(q mgl32.Quat) QuatDef {
	return QuatDef{q.W, q.V.X(), q.V.Y(), q.V.Z()}
}

func (q QuatDef) Quat() mgl32.Quat {
	if q == (QuatDef{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: q[0], V: mgl32.Vec3{q[1], q[2], q[3]}}
}

func (m MaterialDef) material() core.Material {
	return core.NewEmissiveMaterial(m.Color, m.Emission, m.EmissionStrength)
}

// Apply overlays the tracer settings on cfg.
func (t *TracerDef) Apply(cfg app.Config) (app.Config, error) {
	if t == nil {
		return cfg, nil
	}
	if t.MaxSpheres > 0 {
		cfg.MaxSpheres = t.MaxSpheres
	}
	if t.MaxTriangles > 0 {
		cfg.MaxTriangles = t.MaxTriangles
	}
	if t.MaxBounces > 0 {
		cfg.MaxBounces = t.MaxBounces
	}
	if t.RaysPerPixel > 0 {
		cfg.RaysPerPixel = t.RaysPerPixel
	}
	if t.Width > 0 {
		cfg.Width = t.Width
	}
	if t.Height > 0 {
		cfg.Height = t.Height
	}
	if t.TraceInPreview != nil {
		cfg.TraceInPreview = *t.TraceInPreview
	}
	if t.Accumulate != nil {
		cfg.Accumulate = *t.Accumulate
	}
	switch t.Reference {
	case "":
	case core.ReferenceUnit.String():
		cfg.Reference = core.ReferenceUnit
	case core.ReferenceNearPlane.String():
		cfg.Reference = core.ReferenceNearPlane
	default:
		return cfg, fmt.Errorf("unknown reference convention %q", t.Reference)
	}
	return cfg, nil
}

func ParseScene(data []byte) (*SceneDef, error) {
	var scene SceneDef
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &scene, nil
}

func LoadSceneFile(filename string) (*SceneDef, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	scene, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scene, nil
}

func SaveSceneFile(filename string, scene *SceneDef) error {
	data, err := yaml.Marshal(scene)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// SpawnScene queues an entity per scene object and returns their ids in
// file order: camera first, then spheres, then meshes.
func SpawnScene(cmd *Commands, assets *AssetServer, scene *SceneDef) ([]EntityId, error) {
	var spawned []EntityId

	if scene.Camera != nil {
		spawned = append(spawned, spawnCamera(cmd, *scene.Camera))
	}

	for _, def := range scene.Spheres {
		comps := withLifetime(def.Lifetime,
			&TransformComponent{
				Position: def.Position,
				Rotation: mgl32.QuatIdent(),
				Scale:    mgl32.Vec3{def.Radius * 2, def.Radius * 2, def.Radius * 2},
			},
			&SphereComponent{
				Color:            def.Color,
				Emission:         def.Emission,
				EmissionStrength: def.EmissionStrength,
				Radius:           def.Radius,
			},
		)
		spawned = append(spawned, cmd.AddEntity(comps...))
	}

	for i, def := range scene.Meshes {
		id, err := meshFromDef(assets, def)
		if err != nil {
			return spawned, fmt.Errorf("mesh %d: %w", i, err)
		}
		scale := def.Scale
		if scale == (mgl32.Vec3{}) {
			scale = mgl32.Vec3{1, 1, 1}
		}
		comps := withLifetime(def.Lifetime,
			&TransformComponent{
				Position: def.Position,
				Rotation: def.Rotation.Quat(),
				Scale:    scale,
			},
			&MeshRendererComponent{
				Mesh:             id,
				Color:            def.Color,
				Emission:         def.Emission,
				EmissionStrength: def.EmissionStrength,
			},
		)
		spawned = append(spawned, cmd.AddEntity(comps...))
	}
	return spawned, nil
}

// withLifetime appends a LifetimeComponent when seconds is positive.
func withLifetime(seconds float32, comps ...any) []any {
	if seconds > 0 {
		comps = append(comps, &LifetimeComponent{TimeLeft: seconds})
	}
	return comps
}

func spawnCamera(cmd *Commands, def CameraDef) EntityId {
	fov := def.Fov
	if fov <= 0 {
		fov = defaultCameraFov
	}
	cam := NewCameraComponent(def.Position, def.LookAt, fov)
	if def.Near > 0 {
		cam.Near = def.Near
	}
	if def.Far > 0 {
		cam.Far = def.Far
	}
	cam.Preview = def.Preview

	comps := []any{&cam}
	if def.Flying {
		comps = append(comps, &FlyingCameraComponent{})
	}
	return cmd.AddEntity(comps...)
}

func meshFromDef(assets *AssetServer, def MeshDef) (AssetId, error) {
	if def.Shape == MeshShapeCustom {
		if len(def.Indices)%3 != 0 {
			return "", fmt.Errorf("custom mesh has %d indices, not a multiple of 3", len(def.Indices))
		}
		return assets.CreateMesh(&core.Mesh{
			Vertices: def.Vertices,
			Normals:  def.Normals,
			Indices:  def.Indices,
		}), nil
	}
	id, ok := assets.CreateFromSource(MeshSource{Shape: def.Shape, Size: def.Size, Segments: def.Segments})
	if !ok {
		return "", fmt.Errorf("unknown mesh shape %q", def.Shape)
	}
	return id, nil
}

// DemoScene is a small lit room: a floor, a back wall, an emissive sphere
// and two diffuse objects.
func DemoScene() *SceneDef {
	floor := mgl32.QuatRotate(mgl32.DegToRad(-90), mgl32.Vec3{1, 0, 0})
	return &SceneDef{
		Camera: &CameraDef{
			Position: mgl32.Vec3{0, 1.5, 6},
			LookAt:   mgl32.Vec3{0, 1, 0},
			Fov:      50,
			Flying:   true,
		},
		Spheres: []SphereDef{
			{Position: mgl32.Vec3{0, 4, 0}, Radius: 0.8, MaterialDef: MaterialDef{
				Color: mgl32.Vec3{1, 1, 1}, Emission: mgl32.Vec3{1, 0.9, 0.7}, EmissionStrength: 6,
			}},
			{Position: mgl32.Vec3{-1.2, 0.75, 0}, Radius: 0.75, MaterialDef: MaterialDef{
				Color: mgl32.Vec3{0.9, 0.2, 0.2},
			}},
		},
		Meshes: []MeshDef{
			{Shape: MeshShapeQuad, Size: mgl32.Vec3{10, 10, 0}, Rotation: NewQuatDef(floor), MaterialDef: MaterialDef{
				Color: mgl32.Vec3{0.8, 0.8, 0.8},
			}},
			{Shape: MeshShapeQuad, Size: mgl32.Vec3{10, 6, 0}, Position: mgl32.Vec3{0, 3, -3}, MaterialDef: MaterialDef{
				Color: mgl32.Vec3{0.2, 0.4, 0.8},
			}},
			{Shape: MeshShapeCube, Size: mgl32.Vec3{1, 1, 1}, Position: mgl32.Vec3{1.3, 0.5, 0.3},
				Rotation: NewQuatDef(mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0})), MaterialDef: MaterialDef{
					Color: mgl32.Vec3{0.9, 0.9, 0.3},
				}},
		},
	}
}
