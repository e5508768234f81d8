package lumen

// LifecycleHooks is implemented by modules that own resources tied to the
// app being enabled, such as GPU buffers.
type LifecycleHooks interface {
	OnEnable(app *App)
	OnDisable(app *App)
	OnShutdown(app *App)
}

// LifetimeComponent allows an entity to automatically be removed after a set duration.
type LifetimeComponent struct {
	TimeLeft float32
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate),
	)
}

func lifetimeSystem(time *Time, cmd *Commands) {
	dt := time.Seconds()
	if dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			cmd.App().Logger().Debugf("lifetime expired for entity %v", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
