package analysis

import (
	"context"

	"github.com/matzehuels/brickfall/pkg/support"
)

// Report summarizes a settled configuration: how many bricks can be removed
// safely, and how far a chain reaction from each brick reaches.
type Report struct {
	Bricks     int           `json:"bricks"`
	Edges      int           `json:"edges"`
	Grounded   int           `json:"grounded"`
	Height     int           `json:"height"`
	Safe       int           `json:"safe"`
	ChainTotal int           `json:"chain_total"`
	Worst      *BrickReport  `json:"worst,omitempty"`
	Details    []BrickReport `json:"details,omitempty"`
}

// BrickReport describes one brick in a [Report].
type BrickReport struct {
	ID          support.ID   `json:"id"`
	Ref         string       `json:"ref"`
	Z           int          `json:"z"`
	Top         int          `json:"top"`
	Supports    []support.ID `json:"supports,omitempty"`
	SupportedBy []support.ID `json:"supported_by,omitempty"`
	Safe        bool         `json:"safe"`
	Falls       int          `json:"falls"`
}

// Analyze runs the safety and chain-reaction analyses over g. Details holds
// one entry per brick in ID order. Worst is the brick whose removal topples
// the most others; ties go to the lowest ID. Worst is nil when no removal
// topples anything.
func Analyze(g *support.Graph) Report {
	r, _ := AnalyzeContext(context.Background(), g)
	return r
}

// AnalyzeContext is [Analyze] but stops between bricks once ctx is done,
// returning the context's error.
func AnalyzeContext(ctx context.Context, g *support.Graph) (Report, error) {
	r := Report{
		Bricks:  g.Len(),
		Edges:   g.EdgeCount(),
		Details: make([]BrickReport, 0, g.Len()),
	}
	worst := -1
	for _, id := range g.IDs() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		b := g.Brick(id)
		br := BrickReport{
			ID:          id,
			Ref:         b.Ref,
			Z:           b.Z,
			Top:         b.Top(),
			Supports:    g.Supports(id),
			SupportedBy: g.SupportedBy(id),
			Safe:        IsSafeToRemove(g, id),
			Falls:       ChainReaction(g, id),
		}
		if br.Safe {
			r.Safe++
		}
		if g.Grounded(id) {
			r.Grounded++
		}
		r.Height = max(r.Height, b.Top()-1)
		r.ChainTotal += br.Falls
		if br.Falls > 0 && (worst < 0 || br.Falls > r.Details[worst].Falls) {
			worst = len(r.Details)
		}
		r.Details = append(r.Details, br)
	}
	if worst >= 0 {
		w := r.Details[worst]
		r.Worst = &w
	}
	return r, nil
}

// Unsafe returns the details of bricks that cannot be removed safely.
func (r Report) Unsafe() []BrickReport {
	var out []BrickReport
	for _, d := range r.Details {
		if !d.Safe {
			out = append(out, d)
		}
	}
	return out
}
