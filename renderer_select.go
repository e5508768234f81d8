package lumen

import (
	"github.com/gekko3d/lumen/pathrt/rt/app"
)

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererPathTracer RendererName = "pathtracer"
)

// ensureWindowResource guarantees a single shared WindowState resource exists.
// If missing, it creates one with provided overrides or sensible defaults.
func ensureWindowResource(a *App, width, height int, title string) {
	if Resource[WindowState](a) != nil {
		return
	}
	m := NewPlatformWindow(width, height, title)
	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		a.Logger().Errorf("%v", err)
		panic(err)
	}
	a.addResources(ws)
	a.Logger().Infof("Created shared window (%dx%d) '%s'", m.Width, m.Height, m.Title)
}

// UseRenderer installs exactly one renderer module, enforcing exclusivity via ensureSingleRenderer.
func (a *App) UseRenderer(name RendererName, mod Module) *App {
	ensureSingleRenderer(a, string(name))
	a.Logger().Infof("Renderer selected: %s", name)
	a.UseModules(mod)
	return a
}

// UsePathTracer opens a window of the configured resolution and installs the
// path tracer on its GPU.
func (a *App) UsePathTracer(cfg app.Config, title string) *App {
	cfg = cfg.Normalize()
	ensureWindowResource(a, int(cfg.Width), int(cfg.Height), title)
	return a.UseRenderer(RendererPathTracer, PathTracerModule{Config: cfg})
}
