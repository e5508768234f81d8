package lumen

import (
	"reflect"
	"slices"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	ecs := MakeEcs()
	app := &App{
		stages:           slices.Clone(defaultStages),
		systemsStateless: make(map[string][]systemFn),
		resources:        make(map[reflect.Type]any),
		ecs:              &ecs,
	}
	for _, stage := range app.stages {
		app.systemsStateless[stage.Name] = make([]systemFn, 0)
	}
	return &AppBuilder{app: app}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs the modules in order and enables the app.
func (b *AppBuilder) Build() *App {
	app := b.app
	app.UseModules(b.modules...)
	app.FlushCommands()
	app.Enable()

	return app
}

// UseModules installs modules on a live app, in order.
func (app *App) UseModules(modules ...Module) *App {
	commands := &Commands{app: app}
	for _, module := range modules {
		module.Install(app, commands)
		app.modules = append(app.modules, module)
	}
	return app
}
