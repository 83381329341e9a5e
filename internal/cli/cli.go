package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brickfall/pkg/cache"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/pipeline"
)

const (
	appName  = "brickfall"
	stdinArg = "-" // read the snapshot from standard input
)

// Levels accepted by [New] and [CLI.SetLogLevel].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is the state the commands share: the logger, the loaded config and the
// persistent flags.
type CLI struct {
	Logger *log.Logger
	Config Config

	configFile   string // --config
	cacheBackend string // --cache
	noCache      bool   // --no-cache
}

// New returns a CLI logging to w at level, configured with the defaults until
// the root command's pre-run loads the config file.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: defaultConfig()}
}

// SetLogLevel changes the logger's level, e.g. for --verbose.
func (c *CLI) SetLogLevel(level log.Level) { c.Logger.SetLevel(level) }

// newRunner returns a runner over the configured cache, scoping keys when a
// prefix is configured.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	backend := c.Config.Cache.Backend
	if c.cacheBackend != "" {
		backend = c.cacheBackend
	}
	if c.noCache || backend == cache.BackendNone {
		return cache.NewNullCache(), nil
	}

	cfg := c.Config.cacheConfig("")
	cfg.Backend = backend
	if backend == cache.BackendFile {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}

	cc, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCache, err, "open %s cache", backend)
	}
	c.Logger.Debug("cache ready", "backend", backend)
	return cc, nil
}

// inputOptions fills the input fields of opts from a command argument. No
// argument or "-" reads the snapshot from r.
func inputOptions(args []string, r io.Reader, opts *pipeline.Options) error {
	if len(args) > 0 && args[0] != stdinArg {
		opts.Input = args[0]
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	opts.Snapshot = data
	return nil
}

// parseFormats splits a --format value on commas. An empty value yields
// fallback.
func parseFormats(s string, fallback []string) []string {
	if s == "" {
		return fallback
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputPath returns the file an artifact is written to. With several
// formats, output is treated as a base path and the format becomes the
// extension. Without output, the name derives from the input file.
func outputPath(input, output, format string, multi bool) string {
	if output != "" {
		if !multi {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	base := "snapshot"
	if input != "" && input != stdinArg {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return base + "." + format
}
