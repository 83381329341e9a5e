package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/cache"
)

// cacheCommand groups the subcommands that manage the local file cache.
// Shared Redis and MongoDB caches are left to their TTLs.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every locally cached result",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fc, err := openFileCache()
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear %s: %w", fc.Dir(), err)
				}
				p := newPrinter(cmd.OutOrStdout())
				if n == 0 {
					p.info("Cache is empty")
					return nil
				}
				p.success("Cleared %d cached entries", n)
				p.file(fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show how many results are cached locally",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fc, err := openFileCache()
				if err != nil {
					return err
				}
				u, err := fc.Usage()
				if err != nil {
					return fmt.Errorf("scan %s: %w", fc.Dir(), err)
				}
				p := newPrinter(cmd.OutOrStdout())
				p.field("Directory", StyleValue.Render(fc.Dir()))
				p.field("Entries", StyleNumber.Render(fmt.Sprint(u.Entries)))
				p.field("Size", StyleNumber.Render(formatBytes(u.Bytes)))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("locate cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache: %w", err)
	}
	return cache.NewFileCache(dir)
}

// formatBytes renders n with a binary unit, e.g. "1.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
