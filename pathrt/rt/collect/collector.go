package collect

import (
	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultMaxSpheres   = 64
	DefaultMaxTriangles = 8192
)

// Scene is the capability the collector reads renderable state through.
// Both methods must enumerate in a stable order for a given scene snapshot.
type Scene interface {
	Spheres() []core.Sphere
	MeshInstances() []core.MeshInstance
}

// SliceScene is a Scene backed by plain slices.
type SliceScene struct {
	SphereList   []core.Sphere
	InstanceList []core.MeshInstance
}

func (s *SliceScene) Spheres() []core.Sphere             { return s.SphereList }
func (s *SliceScene) MeshInstances() []core.MeshInstance { return s.InstanceList }

// Collector flattens a scene into capped, ordered record sequences. It keeps
// its output slices between calls; results are valid until the next Collect.
// A Collector must not be used from more than one goroutine.
type Collector struct {
	MaxSpheres   int
	MaxTriangles int

	spheres   []core.SphereRecord
	triangles []core.TriangleRecord

	// Diagnostics from the last Collect call.
	SkippedInstances int
	TruncatedSpheres int
	TriangleCapHit   bool
}

func NewCollector(maxSpheres, maxTriangles int) *Collector {
	if maxSpheres <= 0 {
		maxSpheres = DefaultMaxSpheres
	}
	if maxTriangles <= 0 {
		maxTriangles = DefaultMaxTriangles
	}
	return &Collector{
		MaxSpheres:   maxSpheres,
		MaxTriangles: maxTriangles,
		spheres:      make([]core.SphereRecord, 0, maxSpheres),
		triangles:    make([]core.TriangleRecord, 0, 256),
	}
}

// Collect gathers sphere and triangle records from the scene. Overflow is
// truncated silently; instances without a mesh are skipped.
//
// The returned slices alias the collector's buffers and are overwritten by
// the next Collect call. Copy them to keep a frame's records.
func (c *Collector) Collect(scene Scene) ([]core.SphereRecord, []core.TriangleRecord) {
	c.spheres = c.spheres[:0]
	c.triangles = c.triangles[:0]
	c.SkippedInstances = 0
	c.TruncatedSpheres = 0
	c.TriangleCapHit = false

	if scene == nil {
		return c.spheres, c.triangles
	}

	c.collectSpheres(scene.Spheres())
	c.collectTriangles(scene.MeshInstances())

	return c.spheres, c.triangles
}

func (c *Collector) collectSpheres(spheres []core.Sphere) {
	n := min(len(spheres), c.MaxSpheres)
	for i := 0; i < n; i++ {
		c.spheres = append(c.spheres, core.NewSphereRecord(spheres[i]))
	}
	c.TruncatedSpheres = len(spheres) - n
}

func (c *Collector) collectTriangles(instances []core.MeshInstance) {
	for i := range instances {
		if len(c.triangles) >= c.MaxTriangles {
			c.TriangleCapHit = true
			return
		}

		inst := &instances[i]
		if inst.Mesh == nil {
			c.SkippedInstances++
			continue
		}
		c.appendMesh(inst)
	}
}

func (c *Collector) appendMesh(inst *core.MeshInstance) {
	mesh := inst.Mesh
	verts := mesh.Vertices
	hasNormals := mesh.HasNormals()
	t := inst.Transform
	nVerts := uint32(len(verts))

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		if len(c.triangles) >= c.MaxTriangles {
			c.TriangleCapHit = true
			return
		}

		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		if i0 >= nVerts || i1 >= nVerts || i2 >= nVerts {
			continue
		}

		v0 := t.TransformPoint(verts[i0])
		v1 := t.TransformPoint(verts[i1])
		v2 := t.TransformPoint(verts[i2])

		var n mgl32.Vec3
		if hasNormals {
			n0 := t.TransformDirection(mesh.Normals[i0])
			n1 := t.TransformDirection(mesh.Normals[i1])
			n2 := t.TransformDirection(mesh.Normals[i2])
			n = n0.Add(n1).Add(n2).Mul(1.0 / 3.0)
		} else {
			n = FaceNormal(v0, v1, v2)
		}

		c.triangles = append(c.triangles, core.NewTriangleRecord(v0, v1, v2, n, inst.Material))
	}
}

// FaceNormal is the normalized cross product of the two edges leaving v0.
// Degenerate triangles get a zero normal.
func FaceNormal(v0, v1, v2 mgl32.Vec3) mgl32.Vec3 {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl32.Vec3{}
}
