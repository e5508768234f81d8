package lumen

import (
	"github.com/gekko3d/lumen/pathrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is the world placement of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransformComponent(position mgl32.Vec3, scale float32) TransformComponent {
	return TransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{scale, scale, scale},
	}
}

func (t TransformComponent) ToCore() core.Transform {
	return core.Transform{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

// LocalTransformComponent is the placement relative to Parent.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate),
	)
}

const maxHierarchyPasses = 8

func TransformHierarchySystem(cmd *Commands) {
	// Roots are authoritative in world space.
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).Without(Parent{}).Map(func(eid EntityId, local *LocalTransformComponent, tr *TransformComponent) bool {
		local.Position = tr.Position
		local.Rotation = tr.Rotation
		local.Scale = tr.Scale
		return true
	})

	// Deep hierarchies converge over several passes.
	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := worldTransformOf(cmd, parent.Entity)
			if !ok {
				return true
			}

			// Component-wise so negative scales survive.
			scaledLocalPos := mgl32.Vec3{
				local.Position.X() * parentWorld.Scale.X(),
				local.Position.Y() * parentWorld.Scale.Y(),
				local.Position.Z() * parentWorld.Scale.Z(),
			}
			newPos := parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaledLocalPos))
			newRot := parentWorld.Rotation.Mul(local.Rotation).Normalize()
			newScale := mgl32.Vec3{
				parentWorld.Scale.X() * local.Scale.X(),
				parentWorld.Scale.Y() * local.Scale.Y(),
				parentWorld.Scale.Z() * local.Scale.Z(),
			}

			if newPos != world.Position || newRot != world.Rotation || newScale != world.Scale {
				world.Position = newPos
				world.Rotation = newRot
				world.Scale = newScale
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

func worldTransformOf(cmd *Commands, eid EntityId) (TransformComponent, bool) {
	for _, c := range cmd.GetAllComponents(eid) {
		if tr, ok := c.(TransformComponent); ok {
			return tr, true
		}
	}
	return TransformComponent{}, false
}
