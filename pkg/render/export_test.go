package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/brick"
	"github.com/matzehuels/brickfall/pkg/settle"
)

func TestWriteReportJSON(t *testing.T) {
	report := analysis.Analyze(column(t))

	var buf bytes.Buffer
	if err := WriteReportJSON(&buf, report); err != nil {
		t.Fatalf("WriteReportJSON() error = %v", err)
	}

	var got analysis.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Bricks != 3 || got.Safe != 1 || got.ChainTotal != 3 {
		t.Errorf("decoded report = %+v", got)
	}
	if got.Worst == nil || got.Worst.Ref != "low" {
		t.Errorf("decoded worst = %+v", got.Worst)
	}
}

func TestExportReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := ExportReportJSON(analysis.Report{Bricks: 4}, path); err != nil {
		t.Fatalf("ExportReportJSON() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"bricks": 4`) {
		t.Errorf("file content = %s", data)
	}
}

func TestWriteSettled(t *testing.T) {
	bricks, err := brick.ReadAll(strings.NewReader("0,0,1~0,0,1\n0,0,5~0,0,6\n"))
	if err != nil {
		t.Fatal(err)
	}
	settled, err := settle.Settle(bricks)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSettled(&buf, settled); err != nil {
		t.Fatalf("WriteSettled() error = %v", err)
	}
	want := "0,0,1~0,0,1\n0,0,2~0,0,3\n"
	if buf.String() != want {
		t.Errorf("WriteSettled() = %q, want %q", buf.String(), want)
	}

	again, err := brick.ReadAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !settle.IsSettled(again) {
		t.Error("written output should read back as a settled configuration")
	}
}
