// Package pkg provides the libraries behind brickfall.
//
// # Overview
//
// Brickfall reads a snapshot of axis-aligned bricks hanging in the air, lets
// them fall until each rests on the ground or on another brick, and then asks
// two questions of the settled pile: which bricks can be removed without
// anything else falling, and how many bricks would fall if each one were
// pulled out.
//
// # Architecture
//
// The data flow through brickfall:
//
//	Snapshot text
//	     ↓
//	[brick] (parse "x,y,z~x,y,z" lines)
//	     ↓
//	[settle] (drop every brick to its resting height)
//	     ↓
//	[support] (who rests on whom)
//	     ↓
//	[analysis] (safe removals, chain reactions)
//	     ↓
//	[render] (DOT, SVG, PNG, JSON)
//
// [pipeline] runs these stages with caching and is shared by the CLI and the
// HTTP [server].
//
// # Quick Start
//
//	bricks, _ := brick.ReadAll(strings.NewReader(snapshot))
//	settled, _ := settle.Settle(bricks)
//	g := support.Build(settled)
//
//	report := analysis.Analyze(g)
//	fmt.Println(report.Safe, report.ChainTotal)
//
//	dot := render.ToDOT(g, report, render.Options{})
//	svg, _ := render.RenderSVG(ctx, dot)
//
// Or, with caching and stage timings:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{Snapshot: data, Formats: []string{"svg"}})
//
// # Main Packages
//
// [brick] - The Brick type, overlap tests and the snapshot line format.
//
// [settle] - Single-pass gravity. Also checks the snapshot is overlap-free.
//
// [support] - The support graph over settled bricks, stored as an arena of
// integer IDs with edges in both directions.
//
// [analysis] - Safe-removal and chain-reaction queries and the [analysis.Report]
// summary.
//
// [render] - Graphviz output of the support graph and JSON export of reports.
//
// ## Infrastructure
//
// [cache] - Result caching with file, Redis, MongoDB and no-op backends.
//
// [observability] - Pipeline, cache and HTTP hooks, with a Prometheus
// implementation.
//
// [errors] - Coded errors shared by the CLI and the server.
//
// [buildinfo] - Version information stamped at build time.
//
// [brick]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/brick
// [settle]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/settle
// [support]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/support
// [analysis]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/analysis
// [analysis.Report]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/analysis#Report
// [render]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/brickfall/pkg/buildinfo
package pkg
