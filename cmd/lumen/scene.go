package main

import (
	"github.com/gekko3d/lumen"

	"github.com/urfave/cli"
)

func writeDemoScene(ctx *cli.Context) error {
	out := ctx.String("out")
	if err := lumen.SaveSceneFile(out, lumen.DemoScene()); err != nil {
		return err
	}
	logger.Infof("demo scene written to %s", out)
	return nil
}
