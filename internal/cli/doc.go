// Package cli is the brickfall command line.
//
// Every command reads a snapshot (a file argument, or standard input when the
// argument is missing or "-"), runs it through [pipeline.Runner] and prints
// the result:
//
//	analyze    safe removals, chain reaction total, one brick's chain (--brick)
//	settle     the snapshot after every brick has fallen
//	render     the support graph as DOT, SVG, PNG or JSON
//	inspect    a terminal browser over bricks and their chain reactions
//	serve      the HTTP API
//	cache      clear or locate the local result cache
//
// Human output goes through a lipgloss-styled printer; machine output
// (JSON, DOT, settled snapshots) is written unstyled. Diagnostics go to a
// charmbracelet/log logger on stderr, which --verbose lowers to debug level.
//
// Settings come from a TOML file, $XDG_CONFIG_HOME/brickfall/config.toml or
// the path given by --config. Flags win over the file.
//
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/pipeline#Runner
package cli
