package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/pipeline"
)

// renderCommand creates the render command, which draws the support graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw the support graph of a settled snapshot",
		Long: `Draw the support graph of a snapshot after settling.

Every brick becomes a box, bricks at the same height share a row, and arrows
point from each brick to the bricks resting on it. Bricks that cannot be
removed safely are filled and the brick that topples the most others is
outlined.

Formats: svg, png, dot (Graphviz source) and json (the analysis report).
Default formats come from the [render] section of the config file.`,
		Example: `  brickfall render snapshot.txt
  brickfall render -f svg,dot -o tower snapshot.txt
  brickfall render -f dot -o - snapshot.txt | dot -Tpdf > tower.pdf`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr, c.Config.Render.Formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if !cmd.Flags().Changed("detailed") {
				opts.Detailed = c.Config.Render.Detailed
			}
			if output == stdinArg && len(opts.Formats) > 1 {
				return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
			}
			if err := inputOptions(args, cmd.InOrStdin(), &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label bricks with their height and chain reaction")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runRender executes the pipeline with rendering and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, stdout io.Writer) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.CacheTTL = c.Config.Cache.TTL.Duration

	spin := startSpinner(ctx, "Rendering support graph...")

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.fail("Render failed")
		return err
	}
	spin.stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    output,
		stdout:    stdout,
		bricks:    res.Report.Bricks,
		edges:     res.Stats.EdgeCount,
		cacheHit:  res.CacheInfo.RenderHit,
	})
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stdout    io.Writer
	bricks    int
	edges     int
	cacheHit  bool
}

// writeArtifacts writes each rendered format to its file, or the single
// format to stdout when output is "-".
func writeArtifacts(p artifactWriteParams) error {
	if p.output == stdinArg {
		_, err := p.stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	multi := len(p.formats) > 1
	var paths []string
	for _, format := range p.formats {
		path := outputPath(p.input, p.output, format, multi)
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	out := newPrinter(p.stdout)
	out.success("Rendered support graph")
	out.summary(p.bricks, p.edges, p.cacheHit)
	for _, path := range paths {
		out.file(path)
	}
	return nil
}
