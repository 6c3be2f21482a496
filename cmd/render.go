package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/spica-project/spica/observer"
	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/render"
)

// Render an image of the demo emitter wall with a perspective camera.
func RenderImage(ctx *cli.Context) error {
	setupLogging(ctx)

	radiance := pipeline.NewRadiance()
	power := pipeline.NewPower()

	cam, err := observer.NewPinhole("camera", []pipeline.Pipeline{radiance, power})
	if err != nil {
		return err
	}

	if err = cam.SetPixels(ctx.Int("width"), ctx.Int("height")); err != nil {
		return err
	}
	if err = cam.SetPixelSamples(ctx.Int("spp")); err != nil {
		return err
	}
	if err = cam.SetSpectralRays(ctx.Int("rays")); err != nil {
		return err
	}
	if err = cam.SetSpectralBins(ctx.Int("bins")); err != nil {
		return err
	}
	if err = cam.SetWorkers(ctx.Int("workers")); err != nil {
		return err
	}

	if err = cam.OnProgress(func(done, total int) {
		if done%32 == 0 || done == total {
			logger.Infof("rendered %d of %d chunks", done, total)
		}
	}); err != nil {
		return err
	}

	wall := checkerWall(5.0, 1.0, 1.0, 0.1)
	if err = cam.Observe(context.Background(), wall); err != nil {
		return err
	}

	if err = writeImage(ctx.String("out"), radiance.Finalize()); err != nil {
		return err
	}
	logger.Noticef("wrote %s", ctx.String("out"))

	displayRenderStats(cam.Stats())
	return nil
}

// writeImage maps per-pixel means to an 8-bit grayscale PNG,
// normalized to the brightest element.
func writeImage(path string, res *pipeline.Result) error {
	w, h := res.Layout.Width, res.Layout.Height

	var peak float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := res.Mean(x, y); v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(255 * res.Mean(x, y) / peak)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func displayRenderStats(stats render.Stats) {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Chunks", "Elements", "Busy"})
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Worker),
			fmt.Sprintf("%d", stat.Chunks),
			fmt.Sprintf("%d", stat.Elements),
			fmt.Sprintf("%s", stat.Busy),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
