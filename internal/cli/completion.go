package cli

import (
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// snapshotExts are offered when completing a snapshot argument.
var snapshotExts = []string{"txt", "in", "snapshot"}

// completeSnapshot limits file completion to snapshot files for the one
// positional argument commands take.
func completeSnapshot(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return snapshotExts, cobra.ShellCompDirectiveFilterFileExt
}

// completionScripts generates a completion script per supported shell.
var completionScripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionScripts))
	for sh := range completionScripts {
		shells = append(shells, sh)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for bash, zsh, fish or powershell.

Load it for the current session, for example:

  source <(brickfall completion bash)
  brickfall completion fish | source

or install it where your shell looks for completions, for example:

  brickfall completion zsh > "${fpath[1]}/_brickfall"

Snapshot arguments complete to .txt, .in and .snapshot files.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionScripts[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}
