package lumen

import (
	"testing"
	"time"

	"github.com/gekko3d/lumen/pathrt/rt/app"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifetime_ExpiredEntitiesLeaveTheTracedScene(t *testing.T) {
	backend := &traceBackend{}
	a := NewAppBuilder().UseModule(
		LifecycleModule{},
		PathTracerModule{
			Config:      app.DefaultConfig(),
			Backend:     backend,
			Source:      &traceTarget{w: 8, h: 8},
			Destination: &traceTarget{w: 8, h: 8},
		},
	).Build()
	// A fixed frame delta instead of the wall clock.
	a.addResources(&Time{Dt: 600 * time.Millisecond})

	scene := &SceneDef{
		Spheres: []SphereDef{
			{Position: mgl32.Vec3{0, 0, -3}, Radius: 1},
			{Position: mgl32.Vec3{2, 0, -3}, Radius: 1, Lifetime: 1},
		},
		Meshes: []MeshDef{{
			Shape:    MeshShapeCustom,
			Vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Indices:  []uint32{0, 1, 2},
			Lifetime: 1,
		}},
	}
	ids, err := SpawnScene(a.Commands(), Resource[AssetServer](a), scene)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	a.FlushCommands()

	state := Resource[PathTracerState](a)

	a.Step()
	assert.Len(t, state.Scene().Spheres(), 2)
	assert.Len(t, state.Scene().MeshInstances(), 1)
	assert.Equal(t, uint32(1), backend.lastDispatch(t).NumTriangles)

	a.Step()
	assert.Len(t, state.Scene().Spheres(), 1)
	assert.Empty(t, state.Scene().MeshInstances())
	assert.Equal(t, uint32(1), backend.lastDispatch(t).NumSpheres)
	assert.Equal(t, uint32(0), backend.lastDispatch(t).NumTriangles)

	assert.NotNil(t, a.Commands().GetAllComponents(ids[0]))
	assert.Nil(t, a.Commands().GetAllComponents(ids[1]))
	assert.Nil(t, a.Commands().GetAllComponents(ids[2]))
}

func TestLifetime_ZeroDeltaKeepsEntities(t *testing.T) {
	a := NewAppBuilder().UseModule(LifecycleModule{}).Build()
	a.addResources(&Time{})
	eid := a.Commands().AddEntity(&LifetimeComponent{TimeLeft: 0.1})
	a.FlushCommands()

	a.Step()

	assert.NotNil(t, a.Commands().GetAllComponents(eid))
}
