package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickfall/pkg/buildinfo"
	"github.com/matzehuels/brickfall/pkg/cache"
	"github.com/matzehuels/brickfall/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the config file (from --config, or
// $XDG_CONFIG_HOME/brickfall/config.toml when present) and attaches the
// logger to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Brickfall settles falling bricks and finds the safe ones to remove",
		Long: `Brickfall reads a snapshot of axis-aligned bricks, lets every brick fall
until it rests on the ground or on another brick, and analyzes the resulting
support structure: which bricks can be removed without anything falling, and
how many bricks a removal would bring down.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(log.WithContext(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/brickfall/config.toml)")
	flags.StringVar(&c.cacheBackend, "cache", "", "cache backend: file, redis, mongo, none (overrides config)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.settleCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the config file and validates the cache flag.
func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
		}
		path = p
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)

	if c.cacheBackend != "" {
		return errors.ValidateBackend(c.cacheBackend, cache.Backends)
	}
	return nil
}
