package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/brick"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/render"
	"github.com/matzehuels/brickfall/pkg/settle"
)

// settleCommand creates the settle command, which writes the settled
// snapshot without analyzing it.
func (c *CLI) settleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "settle [file]",
		Short: "Let every brick fall and write the settled snapshot",
		Long: `Let every brick fall until it rests on the ground or on another brick, and
write the settled bricks in snapshot form, lowest first.

The output is itself a valid snapshot, so it can be piped into 'analyze' or
'render'.`,
		Example: `  brickfall settle snapshot.txt -o settled.txt
  brickfall settle snapshot.txt | brickfall analyze`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) > 0 && args[0] != stdinArg {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			return c.runSettle(cmd.Context(), data, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// runSettle settles data and writes the result to output, or to w when
// output is empty.
func (c *CLI) runSettle(ctx context.Context, data []byte, output string, w io.Writer) error {
	if err := errors.ValidateInput(data); err != nil {
		return err
	}
	bricks, err := brick.ReadAll(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse snapshot")
	}
	c.Logger.Info("parsed snapshot", "bricks", len(bricks))
	if err := ctx.Err(); err != nil {
		return err
	}

	moved := 0
	settled, err := settle.SettleWithOptions(bricks, settle.Options{
		OnSettle: func(before, after brick.Brick) {
			if before.Z != after.Z {
				moved++
				c.Logger.Debug("brick fell", "brick", before.Ref, "from", before.Z, "to", after.Z)
			}
		},
	})
	if stderrors.Is(err, settle.ErrOverlap) {
		return errors.Wrap(errors.ErrCodeOverlap, err, "settle")
	}
	if err != nil {
		return err
	}
	c.Logger.Info("settled snapshot", "bricks", len(settled), "moved", moved)

	if output == "" {
		return render.WriteSettled(w, settled)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()
	if err := render.WriteSettled(f, settled); err != nil {
		return err
	}
	p := newPrinter(w)
	p.success("Settled %d bricks (%d moved)", len(settled), moved)
	p.file(output)
	p.nextStep("Analyze it", appName+" analyze "+output)
	return nil
}
