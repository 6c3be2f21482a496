package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/spica-project/spica/observer"
	"github.com/spica-project/spica/pipeline"
)

// Observe the demo emitter wall with a fibre-optic probe and report
// every pipeline estimate with its standard error.
func ProbeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	pipes := []pipeline.Pipeline{
		pipeline.NewSpectralPower(),
		pipeline.NewSpectralRadiance(),
		pipeline.NewPower(),
		pipeline.NewRadiance(),
	}

	fibre, err := observer.NewFibre("fibre", pipes)
	if err != nil {
		return err
	}

	if err = fibre.SetAcceptanceAngle(ctx.Float64("acceptance")); err != nil {
		return err
	}
	if err = fibre.SetRadius(ctx.Float64("radius")); err != nil {
		return err
	}
	if err = fibre.SetPixelSamples(ctx.Int("samples")); err != nil {
		return err
	}
	if err = fibre.SetSpectralBins(ctx.Int("bins")); err != nil {
		return err
	}

	wall := checkerWall(5.0, 1.0, 1.0, 1.0)
	if err = fibre.Observe(context.Background(), wall); err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pipeline", "Mean", "Std error", "Samples"})
	for _, p := range pipes {
		res := p.Finalize()
		table.Append([]string{
			res.Name,
			fmt.Sprintf("%.6g", res.Mean(0, 0)),
			fmt.Sprintf("%.3g", res.StdErr(0, 0)),
			fmt.Sprintf("%d", res.Samples(0, 0)),
		})
	}
	table.Render()

	logger.Noticef("fibre observation (etendue %.4g m^2 sr)\n%s", fibre.Etendue(), buf.String())
	return nil
}
