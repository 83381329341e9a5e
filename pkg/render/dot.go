package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/support"
)

// Options configures support graph rendering.
type Options struct {
	// Detailed adds the settled height and chain reaction size to each label.
	// When false, only the brick reference is shown.
	Detailed bool
}

// ToDOT converts a support graph to Graphviz DOT source. The report must be
// the result of [analysis.Analyze] on g; it decides which bricks are drawn
// as unsafe. A zero Report draws every brick plainly.
func ToDOT(g *support.Graph, report analysis.Report, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, layer := range g.Layers() {
		buf.WriteString("  { rank=same;")
		for _, id := range layer {
			fmt.Fprintf(&buf, " %s;", nodeName(id))
		}
		buf.WriteString(" }\n")
	}
	buf.WriteString("\n")

	for _, id := range g.IDs() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g, report, id, opts.Detailed))}
		attrs = append(attrs, fmtStyle(report, id)...)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.IDs() {
		for _, up := range g.Supports(id) {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeName(id), nodeName(up))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Refs are free text, so nodes are named by ID and labelled by ref.
func nodeName(id support.ID) string {
	return "b" + strconv.Itoa(int(id))
}

func fmtLabel(g *support.Graph, report analysis.Report, id support.ID, detailed bool) string {
	b := g.Brick(id)
	label := b.Ref
	if label == "" {
		label = b.String()
	}
	if !detailed {
		return label
	}
	parts := []string{label, fmt.Sprintf("z: %d-%d", b.Z, b.Top()-1)}
	if d, ok := detail(report, id); ok {
		parts = append(parts, fmt.Sprintf("falls: %d", d.Falls))
	}
	return strings.Join(parts, "\n")
}

func fmtStyle(report analysis.Report, id support.ID) []string {
	d, ok := detail(report, id)
	if !ok {
		return nil
	}
	var attrs []string
	if !d.Safe {
		attrs = append(attrs, "fillcolor=\"#f4a6a6\"")
	}
	if report.Worst != nil && report.Worst.ID == id {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func detail(report analysis.Report, id support.ID) (analysis.BrickReport, bool) {
	if int(id) < 0 || int(id) >= len(report.Details) || report.Details[id].ID != id {
		return analysis.BrickReport{}, false
	}
	return report.Details[id], true
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based size attributes with a
// zero-origin viewBox so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
