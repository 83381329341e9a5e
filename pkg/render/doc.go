// Package render draws support graphs and serializes analysis results.
//
// # Overview
//
// A settled configuration is drawn as a node-link diagram: each brick is a
// box, bricks resting at the same height share a rank, and an arrow points
// from every supporter to the brick it holds up. Graphviz lays the diagram
// out bottom to top so the ground sits at the bottom of the picture.
//
//	dot := render.ToDOT(g, report, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Bricks that cannot be removed safely are filled; the brick whose removal
// topples the most others gets a bold outline.
//
// # Serialization
//
// [WriteReportJSON] encodes an [analysis.Report] and [WriteSettled] writes
// settled bricks back out in the snapshot text format, so a settled
// configuration can be fed to the other commands.
//
// # Dependencies
//
// DOT rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz
// and needs no system installation.
package render
