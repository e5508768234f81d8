package main

import (
	"os"

	"github.com/gekko3d/lumen"
	"github.com/gekko3d/lumen/pathrt/rt/app"

	"github.com/urfave/cli"
)

const statsEveryFrames = 240

func runScene(ctx *cli.Context) error {
	verbose := ctx.GlobalBool("v") || ctx.GlobalBool("vv")

	scene := lumen.DemoScene()
	if file := ctx.String("scene"); file != "" {
		var err error
		if scene, err = lumen.LoadSceneFile(file); err != nil {
			return err
		}
	}

	cfg, err := scene.Tracer.Apply(app.DefaultConfig())
	if err != nil {
		return err
	}
	cfg = applyFlags(ctx, cfg).Normalize()

	modules := []lumen.Module{
		lumen.LoggingModule{Module: "lumen", Debug: verbose},
		lumen.TimeModule{},
		lumen.NewPlatformWindow(int(cfg.Width), int(cfg.Height), "lumen"),
		lumen.InputModule{},
		lumen.AssetServerModule{},
		lumen.HierarchyModule{},
		lumen.LifecycleModule{},
		lumen.FlyingCameraModule{},
		lumen.PathTracerModule{Config: cfg},
		sceneModule{scene: scene},
		controlsModule{stats: ctx.GlobalBool("vv")},
	}

	a := lumen.NewAppBuilder().UseModule(modules...).Build()
	a.Run()
	return nil
}

func applyFlags(ctx *cli.Context, cfg app.Config) app.Config {
	if ctx.IsSet("width") {
		cfg.Width = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		cfg.Height = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("spp") {
		cfg.RaysPerPixel = uint32(ctx.Int("spp"))
	}
	if ctx.IsSet("bounces") {
		cfg.MaxBounces = uint32(ctx.Int("bounces"))
	}
	if ctx.Bool("no-preview-trace") {
		cfg.TraceInPreview = false
	}
	return cfg
}

// sceneModule spawns a scene definition at startup.
type sceneModule struct {
	scene *lumen.SceneDef
}

func (m sceneModule) Install(a *lumen.App, cmd *lumen.Commands) {
	ids, err := lumen.SpawnScene(cmd, lumen.Resource[lumen.AssetServer](a), m.scene)
	if err != nil {
		a.Logger().Errorf("scene: %v", err)
		panic(err)
	}
	a.Logger().Infof("scene spawned with %d entities", len(ids))
}

type controlsModule struct {
	stats bool
}

func (m controlsModule) Install(a *lumen.App, cmd *lumen.Commands) {
	a.UseSystem(lumen.System(controlsSystem).InStage(lumen.Update))
	if m.stats {
		a.UseSystem(lumen.System(statsSystem).InStage(lumen.PostRender))
	}
}

func controlsSystem(input *lumen.Input, cmd *lumen.Commands) {
	a := cmd.App()
	if input.JustPressed[lumen.KeyEscape] {
		cmd.Quit()
	}
	if input.JustPressed[lumen.KeyP] {
		if a.Enabled() {
			a.Disable()
			a.Logger().Infof("tracing paused")
		} else {
			a.Enable()
			a.Logger().Infof("tracing resumed")
		}
	}
}

func statsSystem(state *lumen.PathTracerState) {
	if state.Frames()%statsEveryFrames != 0 {
		return
	}
	state.Dispatcher.Profiler.WriteTable(os.Stdout)
}
