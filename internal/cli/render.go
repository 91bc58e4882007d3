package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string // output base path (one input) or directory (several)
	formats  []string
	width    float64
	height   float64
	title    string
	noLabels bool
	noCache  bool
	jobs     int
}

// renderOutcome is what one input produced.
type renderOutcome struct {
	input  string
	files  []string
	result *pipeline.Result
}

// renderCommand creates the render command for generating chart files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		chart      chartFlags
		formatsStr string
	)
	opts := renderOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
		jobs:   runtime.NumCPU(),
	}

	cmd := &cobra.Command{
		Use:   "render [data...]",
		Short: "Render data files to SVG, PDF or JSON",
		Long: `Render one or more data files as radial charts.

With a single input, -o names the output file (its extension is replaced
per format). With several inputs, -o names an output directory and every
chart is written as <name>.<format>. Inputs are rendered in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args, &chart, &opts)
		},
	}

	chart.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (one input) or directory (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "surface width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "surface height")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit slice labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of inputs rendered concurrently")

	return cmd
}

// runRender renders every input, at most opts.jobs at a time. The first
// failure cancels the remaining inputs.
func (c *CLI) runRender(cmd *cobra.Command, inputs []string, chart *chartFlags, opts *renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if len(inputs) > 1 && opts.output != "" {
		if err := errors.ValidatePath(opts.output); err != nil {
			return err
		}
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Rendering 0/%d...", len(inputs)))
	spinner.Start()

	outcomes := make([]renderOutcome, len(inputs))
	var finished atomic.Int32

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.jobs, 1))
	for i, input := range inputs {
		g.Go(func() error {
			ctx := withLogger(ctx, c.Logger.With("input", filepath.Base(input)))
			out, err := c.renderOne(ctx, cmd, runner, input, outputBase(opts.output, input, len(inputs)), chart, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outcomes[i] = out
			spinner.SetMessage(fmt.Sprintf("Rendering %d/%d...", finished.Add(1), len(inputs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	for _, out := range outcomes {
		printSuccess("Rendered %s", out.input)
		for _, f := range out.files {
			printFile(f)
		}
		printStats(out.result.Stats.Stats, out.result.CacheInfo.LayoutHit)
	}
	prog.done(fmt.Sprintf("Rendered %d chart(s)", len(inputs)))
	return nil
}

func (c *CLI) renderOne(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, input, base string, chart *chartFlags, opts *renderOpts) (renderOutcome, error) {
	logger := loggerFromContext(ctx)
	tbl, roles, cfg, err := chart.loadChart(cmd, input)
	if err != nil {
		return renderOutcome{}, err
	}

	result, err := runner.Execute(ctx, pipeline.Options{
		Rows:     tbl.Rows,
		Roles:    roles,
		Config:   cfg,
		Width:    opts.width,
		Height:   opts.height,
		Formats:  opts.formats,
		Title:    opts.title,
		NoLabels: opts.noLabels,
		Logger:   logger,
	})
	if err != nil {
		return renderOutcome{}, err
	}

	out := renderOutcome{input: input, result: result}
	for _, format := range opts.formats {
		path := base + "." + format
		if err := errors.ValidatePath(path); err != nil {
			return out, err
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return out, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote artifact", "path", path, "bytes", len(result.Artifacts[format]))
		out.files = append(out.files, path)
	}
	return out, nil
}

// outputBase picks the extensionless output path of one input.
func outputBase(output, input string, inputs int) string {
	if inputs > 1 && output != "" {
		return filepath.Join(output, filepath.Base(basePath("", input)))
	}
	return basePath(output, input)
}
