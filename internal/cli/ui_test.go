package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/brickfall/pkg/analysis"
)

func TestPrinterSummary(t *testing.T) {
	tests := []struct {
		name         string
		bricks, edge int
		cached       bool
		want         []string
		absent       string
	}{
		{"fresh", 7, 9, false, []string{"7 bricks", "9 supports", "fresh"}, "cached"},
		{"cached", 7, 9, true, []string{"7 bricks", "cached"}, "fresh"},
		{"no supports", 3, 0, false, []string{"3 bricks"}, "supports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newPrinter(&buf).summary(tt.bricks, tt.edge, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("summary %q lacks %q", buf.String(), w)
				}
			}
			if strings.Contains(buf.String(), tt.absent) {
				t.Errorf("summary %q contains %q", buf.String(), tt.absent)
			}
		})
	}
}

func TestPrinterReport(t *testing.T) {
	worst := analysis.BrickReport{Ref: "1,0,1~1,2,1", Falls: 6}
	r := analysis.Report{
		Bricks: 7, Height: 6, Safe: 5, ChainTotal: 7, Worst: &worst,
		Details: []analysis.BrickReport{
			worst,
			{Ref: "1,1,8~1,1,9", Safe: true},
		},
	}

	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.report(r, 5)
	p.removable(r)
	p.unsafe(r)

	out := buf.String()
	for _, want := range []string{"Chain total", "topples 6", "Safe to remove:", "1,1,8~1,1,9", "Unsafe to remove:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrinterUnsafeNothing(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).unsafe(analysis.Report{Details: []analysis.BrickReport{{Ref: "a", Safe: true}}})
	if buf.Len() != 0 {
		t.Errorf("unsafe wrote %q for an all-safe report", buf.String())
	}
}
