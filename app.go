package lumen

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/gekko3d/lumen/logging"
)

type systemFn any

type App struct {
	modules          []Module
	stages           []Stage
	systemsStateless map[string][]systemFn
	resources        map[reflect.Type]any
	ecs              *Ecs
	logger           logging.Logger

	enabled bool
	quit    bool
	frame   uint64

	// Command Buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompChange
	pendingCompRemovals []pendingCompChange
}

type Module interface {
	Install(app *App, cmd *Commands)
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompChange struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) Frame() uint64  { return app.frame }
func (app *App) Enabled() bool  { return app.enabled }
func (app *App) Quitting() bool { return app.quit }

// Step runs every stage once.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systemsStateless[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
	app.frame++
}

// Run steps until a system calls Commands.Quit, then shuts the modules down.
func (app *App) Run() {
	app.Logger().Infof("running %d modules, %d stages", len(app.modules), len(app.stages))
	for !app.quit {
		app.Step()
	}
	app.Shutdown()
}

// Enable and Disable forward to modules implementing LifecycleHooks.
func (app *App) Enable() {
	if app.enabled {
		return
	}
	app.enabled = true
	for _, m := range app.modules {
		if h, ok := m.(LifecycleHooks); ok {
			h.OnEnable(app)
		}
	}
}

func (app *App) Disable() {
	if !app.enabled {
		return
	}
	app.enabled = false
	for _, m := range app.modules {
		if h, ok := m.(LifecycleHooks); ok {
			h.OnDisable(app)
		}
	}
}

// Shutdown disables the app and lets modules release what they own, in
// reverse install order.
func (app *App) Shutdown() {
	app.Disable()
	for i := len(app.modules) - 1; i >= 0; i-- {
		if h, ok := app.modules[i].(LifecycleHooks); ok {
			h.OnShutdown(app)
		}
	}
	app.quit = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType == nil || resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource must be a pointer, got %v", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T, or nil.
func Resource[T any](app *App) *T {
	if app == nil {
		return nil
	}
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil
	}
	return r.(*T)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.panicUnresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.panicUnresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) panicUnresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	// Removals first so nothing is added to a dead entity.
	for _, eid := range app.pendingRemovals {
		app.Logger().Debugf("removing entity %v", eid)
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rm := range app.pendingCompRemovals {
		app.ecs.removeComponents(rm.eid, rm.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
