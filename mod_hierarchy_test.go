package lumen

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worldOf(t *testing.T, cmd *Commands, eid EntityId) TransformComponent {
	t.Helper()
	tr, ok := worldTransformOf(cmd, eid)
	require.True(t, ok, "entity %v has no TransformComponent", eid)
	return tr
}

func TestTransformHierarchy(t *testing.T) {
	app := NewAppBuilder().UseModule(HierarchyModule{}).Build()
	cmd := app.Commands()

	parent := cmd.AddEntity(
		&TransformComponent{
			Position: mgl32.Vec3{10, 0, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
	)
	child := cmd.AddEntity(
		&Parent{Entity: parent},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 5, 0},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
	)
	grandchild := cmd.AddEntity(
		&Parent{Entity: child},
		&LocalTransformComponent{
			Position: mgl32.Vec3{0, 0, 2},
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&TransformComponent{},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	assert.Equal(t, mgl32.Vec3{10, 5, 0}, worldOf(t, cmd, child).Position)
	assert.Equal(t, mgl32.Vec3{10, 5, 2}, worldOf(t, cmd, grandchild).Position)

	// Parent at (10, 0, 0) rotated 90 deg about Y; child local (5, 0, 0)
	// lands at (10, 0, -5).
	parentTr := worldOf(t, cmd, parent)
	parentTr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	cmd.AddComponents(parent, parentTr)
	cmd.AddComponents(child, LocalTransformComponent{
		Position: mgl32.Vec3{5, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	got := worldOf(t, cmd, child).Position
	assert.InDelta(t, 0, got.Sub(mgl32.Vec3{10, 0, -5}).Len(), 1e-4, "got %v", got)
}

func TestTransformHierarchy_ScalePropagates(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{2, -1, 1},
	})
	child := cmd.AddEntity(
		&Parent{Entity: parent},
		&LocalTransformComponent{Position: mgl32.Vec3{1, 1, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{0.5, 1, 3}},
		&TransformComponent{},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	w := worldOf(t, cmd, child)
	assert.Equal(t, mgl32.Vec3{2, -1, 0}, w.Position)
	assert.Equal(t, mgl32.Vec3{1, -1, 3}, w.Scale)
}

func TestTransformHierarchy_RootLocalFollowsWorld(t *testing.T) {
	app := NewAppBuilder().Build()
	cmd := app.Commands()

	root := cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&LocalTransformComponent{},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	for _, c := range cmd.GetAllComponents(root) {
		if local, ok := c.(LocalTransformComponent); ok {
			assert.Equal(t, mgl32.Vec3{1, 2, 3}, local.Position)
			return
		}
	}
	t.Fatal("root lost its LocalTransformComponent")
}

func TestTransformComponent_ToCore(t *testing.T) {
	tr := NewTransformComponent(mgl32.Vec3{1, 2, 3}, 4)
	c := tr.ToCore()

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Position)
	assert.Equal(t, mgl32.Vec3{4, 4, 4}, c.Scale)
	assert.Equal(t, mgl32.QuatIdent(), c.Rotation)
}
