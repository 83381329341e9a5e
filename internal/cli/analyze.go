package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/pipeline"
	"github.com/matzehuels/brickfall/pkg/render"
)

// analyzeOpts holds the output flags of the analyze command.
type analyzeOpts struct {
	list   bool   // list the bricks that can be removed safely
	json   bool   // print the report as JSON instead of text
	output string // also write the JSON report to this file
	brick  string // show the chain reaction of this brick
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var out analyzeOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Settle a snapshot and count safe removals and chain reactions",
		Long: `Settle a snapshot and analyze its support structure.

Each line of the snapshot is a brick given by two opposite corners, for
example "1,0,1~1,2,1". With no file, or with "-", the snapshot is read from
standard input.

The report counts the bricks that can be removed without any other brick
falling, and sums, over every brick, how many others would fall if it alone
were removed. Results are cached locally for faster subsequent runs.`,
		Example: `  brickfall analyze snapshot.txt
  brickfall analyze --list --details snapshot.txt
  brickfall analyze --brick 1,0,1~1,2,1 snapshot.txt
  cat snapshot.txt | brickfall analyze --json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := inputOptions(args, cmd.InOrStdin(), &opts); err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), opts, out, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.Details, "details", "d", false, "show how many bricks each unsafe brick topples")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&out.list, "list", "l", false, "list the bricks that can be removed safely")
	cmd.Flags().BoolVar(&out.json, "json", false, "print the report as JSON")
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "also write the JSON report to a file")
	cmd.Flags().StringVarP(&out.brick, "brick", "b", "", "show which bricks fall when this one is removed")

	return cmd
}

// runAnalyze executes the pipeline and prints the report to w.
func (c *CLI) runAnalyze(ctx context.Context, opts pipeline.Options, out analyzeOpts, w io.Writer) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.CacheTTL = c.Config.Cache.TTL.Duration
	if out.list || out.json {
		// Listing needs the per-brick details.
		opts.Details = true
	}

	start := time.Now()
	spin := startSpinner(ctx, "Settling bricks...")

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.fail("Analysis failed")
		return err
	}
	spin.stop()
	logDone(c.Logger, start, "analyzed snapshot", "bricks", res.Report.Bricks, "safe", res.Report.Safe)

	if out.output != "" {
		if err := render.ExportReportJSON(res.Report, out.output); err != nil {
			return err
		}
	}
	var chain pipeline.Chain
	if out.brick != "" {
		if chain, err = res.Chain(out.brick); err != nil {
			return err
		}
	}
	if out.json {
		if out.brick != "" {
			return writeJSON(w, chain)
		}
		return render.WriteReportJSON(w, res.Report)
	}

	p := newPrinter(w)
	p.success("Settled %d bricks", len(res.Settled))
	p.summary(len(res.Bricks), res.Stats.EdgeCount, res.CacheInfo.ReportHit)
	p.blank()
	p.report(res.Report, res.Stats.Moved)

	if res.Report.Safe == 0 {
		p.blank()
		p.warn("No brick can be removed safely")
	}
	if out.list && res.Report.Safe > 0 {
		p.blank()
		p.removable(res.Report)
	}
	if opts.Details && len(res.Report.Unsafe()) > 0 {
		p.blank()
		p.unsafe(res.Report)
	}
	if out.brick != "" {
		p.blank()
		p.chain(chain)
	}
	if out.output != "" {
		p.blank()
		p.file(out.output)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
