package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/spica-project/spica/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "spica"
	app.Usage = "stochastic radiometric observation of 3-d scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render the demo emitter with a perspective camera",
			Description: `
Observe an analytic checkerboard emitter with a pinhole camera and
write the per-pixel mean radiance as a grayscale png.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "image width in pixels",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "image height in pixels",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 16,
					Usage: "samples per pixel per spectral pass",
				},
				cli.IntFlag{
					Name:  "rays",
					Value: 1,
					Usage: "number of spectral passes",
				},
				cli.IntFlag{
					Name:  "bins",
					Value: 21,
					Usage: "wavelength bins per pass",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "parallel workers (0 renders synchronously)",
				},
				cli.StringFlag{
					Name:  "out",
					Value: "frame.png",
					Usage: "output png file",
				},
			},
			Action: cmd.RenderImage,
		},
		{
			Name:  "probe",
			Usage: "observe the demo emitter with a fibre-optic probe",
			Flags: []cli.Flag{
				cli.Float64Flag{
					Name:  "acceptance",
					Value: 10,
					Usage: "acceptance cone half angle in degrees",
				},
				cli.Float64Flag{
					Name:  "radius",
					Value: 0.0005,
					Usage: "fibre face radius in meters",
				},
				cli.IntFlag{
					Name:  "samples",
					Value: 1000,
					Usage: "samples per spectral pass",
				},
				cli.IntFlag{
					Name:  "bins",
					Value: 500,
					Usage: "wavelength bins per pass",
				},
			},
			Action: cmd.ProbeScene,
		},
	}

	app.Run(os.Args)
}
