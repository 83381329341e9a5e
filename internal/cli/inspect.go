package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/pipeline"
)

// inspectCommand creates the inspect command, an interactive browser over
// the settled bricks and their chain reactions.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := pipeline.Options{Details: true}

	cmd := &cobra.Command{
		Use:               "inspect <file>",
		Short:             "Browse settled bricks and their chain reactions interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return c.runInspect(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	opts.CacheTTL = c.Config.Cache.TTL.Duration

	spin := startSpinner(ctx, "Settling bricks...")
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spin.fail("Analysis failed")
		return err
	}
	spin.stop()

	p := tea.NewProgram(NewInspectModel(res.Graph, res.Report), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
