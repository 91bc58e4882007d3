package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/pipeline"
	"github.com/matzehuels/radials/pkg/render"
)

// layoutCommand creates the layout command that writes the descriptor
// bundle of a data file as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		chart   chartFlags
		output  string
		noCache bool
		width   float64
		height  float64
	)

	cmd := &cobra.Command{
		Use:   "layout [data.csv|data.json]",
		Short: "Compute the arcs, labels and threshold ring of a chart as JSON",
		Long: `Compute the descriptor bundle of a radial chart.

The bundle lists one arc per record (angles in radians clockwise from
12 o'clock, radii in pixels), label anchors outside the chart and the
optional threshold ring. Use "-o -" to write to stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, roles, cfg, err := chart.loadChart(cmd, args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Rows:   tbl.Rows,
				Roles:  roles,
				Config: cfg,
				Width:  width,
				Height: height,
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	chart.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&width, "width", pipeline.DefaultWidth, "surface width")
	cmd.Flags().Float64Var(&height, "height", pipeline.DefaultHeight, "surface height")

	return cmd
}

// runLayout computes the bundle and writes it out.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	bundle, stats, cacheHit, err := runner.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	data, err := render.RenderJSON(bundle)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}
	if err := errors.ValidatePath(outputPath); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(stats, cacheHit)
	printNewline()
	printNextStep("Explore", appName+" inspect "+input)

	return nil
}
