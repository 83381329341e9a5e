package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/brick"
)

// WriteReportJSON encodes a report as indented JSON and writes it to w.
// The output can be decoded back into an [analysis.Report].
func WriteReportJSON(w io.Writer, r analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// ExportReportJSON writes a report to a JSON file at path.
func ExportReportJSON(r analysis.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteReportJSON(f, r)
}

// WriteSettled writes settled bricks in the snapshot text format, one brick
// per line in settling order.
func WriteSettled(w io.Writer, settled []brick.Brick) error {
	if err := brick.WriteAll(w, settled); err != nil {
		return fmt.Errorf("write settled: %w", err)
	}
	return nil
}
