package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "progressive GPU path tracing of simple scenes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable verbose logging and periodic frame stats",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open a window and trace a scene interactively",
			Description: `
Load a YAML scene (or the built-in demo scene) and trace it progressively.
Tab captures the mouse for the flying camera, P toggles tracing and Escape quits.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "YAML scene file; the demo scene is used when empty",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "window width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "window height",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "rays per pixel per frame",
				},
				cli.IntFlag{
					Name:  "bounces",
					Usage: "maximum bounces per ray",
				},
				cli.BoolFlag{
					Name:  "no-preview-trace",
					Usage: "pass preview views through instead of tracing them",
				},
			},
			Action: runScene,
		},
		{
			Name:  "demo-scene",
			Usage: "write the built-in demo scene as YAML",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "demo.yaml",
					Usage: "output file",
				},
			},
			Action: writeDemoScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
