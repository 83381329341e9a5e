package pipeline

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/brickfall/pkg/brick"
	"github.com/matzehuels/brickfall/pkg/cache"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/observability"
	"github.com/matzehuels/brickfall/pkg/settle"
)

const sample = `1,0,1~1,2,1
0,0,2~2,0,2
0,2,3~2,2,3
0,0,4~0,2,4
2,0,5~2,2,5
0,1,6~2,1,6
1,1,8~1,1,9
`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		opts := Options{}
		err := opts.ValidateAndSetDefaults()
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
		}
	})

	t.Run("both inputs", func(t *testing.T) {
		opts := Options{Input: "a.txt", Snapshot: []byte(sample)}
		if err := opts.ValidateAndSetDefaults(); err == nil {
			t.Error("expected error for input and snapshot together")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		opts := Options{Snapshot: []byte(sample), Formats: []string{"SVG", "svg", " dot"}}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("error = %v", err)
		}
		if got := strings.Join(opts.Formats, ","); got != "svg,dot" {
			t.Errorf("Formats = %q, want svg,dot", got)
		}
		if opts.CacheTTL != cache.DefaultTTL {
			t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, cache.DefaultTTL)
		}
		if opts.Logger == nil {
			t.Error("Logger should default to a discard logger")
		}
		if !opts.FullReport() {
			t.Error("rendering needs the full report")
		}

		// Idempotent
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Errorf("second call error = %v", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		opts := Options{Snapshot: []byte(sample), Formats: []string{"pdf"}}
		if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidFormat)
		}
	})
}

func TestExecuteSample(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), Options{Snapshot: []byte(sample)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.RunID == "" || res.InputHash == "" {
		t.Errorf("RunID = %q, InputHash = %q; both should be set", res.RunID, res.InputHash)
	}
	if len(res.Bricks) != 7 || len(res.Settled) != 7 {
		t.Errorf("bricks = %d, settled = %d, want 7 and 7", len(res.Bricks), len(res.Settled))
	}
	if !settle.IsSettled(res.Settled) {
		t.Error("Settled should be a settled configuration")
	}
	if res.Report.Safe != 5 {
		t.Errorf("Report.Safe = %d, want 5", res.Report.Safe)
	}
	if res.Report.ChainTotal != 7 {
		t.Errorf("Report.ChainTotal = %d, want 7", res.Report.ChainTotal)
	}
	if res.Report.Details != nil {
		t.Error("Report.Details should be dropped unless requested")
	}
	if res.Stats.Moved != 5 {
		t.Errorf("Stats.Moved = %d, want 5", res.Stats.Moved)
	}
	if res.Stats.EdgeCount != 9 {
		t.Errorf("Stats.EdgeCount = %d, want 9", res.Stats.EdgeCount)
	}
	if res.CacheInfo.SettleHit || res.CacheInfo.ReportHit {
		t.Errorf("first run should not hit the cache: %+v", res.CacheInfo)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("no formats requested, got %d artifacts", len(res.Artifacts))
	}
}

func TestExecuteDetails(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), Options{Snapshot: []byte(sample), Details: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Report.Details) != 7 {
		t.Errorf("len(Details) = %d, want 7", len(res.Report.Details))
	}
	if res.Report.Worst == nil || res.Report.Worst.Falls != 6 {
		t.Errorf("Worst = %+v, want 6 falls", res.Report.Worst)
	}
}

func TestExecuteCaching(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Snapshot: []byte(sample), Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should render")
	}

	// Line endings and blank lines do not change the cache key.
	crlf := strings.ReplaceAll(sample, "\n", "\r\n") + "\r\n"
	second, err := r.Execute(ctx, Options{Snapshot: []byte(crlf), Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if second.InputHash != first.InputHash {
		t.Errorf("InputHash changed: %s vs %s", second.InputHash, first.InputHash)
	}
	if !second.CacheInfo.SettleHit || !second.CacheInfo.ReportHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if second.Report.ChainTotal != 7 || second.Stats.Moved != 5 {
		t.Errorf("cached report = %+v, moved = %d", second.Report, second.Stats.Moved)
	}
	if string(second.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("cached DOT differs from rendered DOT")
	}
	if second.RunID == first.RunID {
		t.Error("every run gets its own RunID")
	}

	refreshed, err := r.Execute(ctx, Options{Snapshot: []byte(sample), Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if refreshed.CacheInfo.SettleHit || refreshed.CacheInfo.ReportHit {
		t.Errorf("Refresh should bypass the cache: %+v", refreshed.CacheInfo)
	}
}

func TestExecuteRenderFormats(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Snapshot: []byte(sample),
		Formats:  []string{FormatDOT, FormatJSON},
		Detailed: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph G") || !strings.Contains(dot, "falls: 6") {
		t.Errorf("DOT artifact missing graph or detailed labels:\n%s", dot)
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"chain_total": 7`) {
		t.Errorf("JSON artifact = %s", res.Artifacts[FormatJSON])
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.txt")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Input: path})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Report.Bricks != 7 {
		t.Errorf("Report.Bricks = %d, want 7", res.Report.Bricks)
	}

	_, err = r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "missing.txt")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestExecuteFileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.txt")
	data := []byte(strings.Repeat(sample, errors.MaxInputBytes/len(sample)+1))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Input: path})
	if !errors.Is(err, errors.ErrCodeInputTooLarge) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInputTooLarge)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	t.Run("malformed line", func(t *testing.T) {
		_, err := r.Execute(ctx, Options{Snapshot: []byte("1,0,1~1,2,1\n1,0,1\n")})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Fatalf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
		}
		var lineErr *brick.LineError
		if !stderrors.As(err, &lineErr) || lineErr.Line != 2 {
			t.Errorf("error should carry the line number, got %v", err)
		}
	})

	t.Run("overlap", func(t *testing.T) {
		_, err := r.Execute(ctx, Options{Snapshot: []byte("0,0,1~2,0,1\n1,0,1~1,2,1\n")})
		if !errors.Is(err, errors.ErrCodeOverlap) {
			t.Fatalf("error = %v, want %s", err, errors.ErrCodeOverlap)
		}
		if !stderrors.Is(err, settle.ErrOverlap) {
			t.Error("error should wrap settle.ErrOverlap")
		}
		if !errors.IsClientError(err) {
			t.Error("overlap is a client error")
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := r.Execute(ctx, Options{Snapshot: []byte("\n\n")})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Execute(cctx, Options{Snapshot: []byte(sample)})
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestResultChain(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Snapshot: []byte(sample)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	c, err := res.Chain("1,0,1~1,2,1")
	if err != nil {
		t.Fatalf("Chain() error = %v", err)
	}
	if c.Falls != 6 || len(c.Toppled) != 6 {
		t.Fatalf("Chain() = %+v, want 6 falls", c)
	}
	if last := c.Toppled[len(c.Toppled)-1]; last != "1,1,8~1,1,9" {
		t.Errorf("last toppled = %q, want the top brick", last)
	}

	c, err = res.Chain("1,1,8~1,1,9")
	if err != nil || c.Falls != 0 || len(c.Toppled) != 0 {
		t.Errorf("Chain(top) = %+v, %v; want no falls", c, err)
	}

	_, err = res.Chain("9,9,9~9,9,9")
	if !errors.Is(err, errors.ErrCodeBrickNotFound) {
		t.Errorf("Chain(unknown) error = %v, want %s", err, errors.ErrCodeBrickNotFound)
	}
}

type recordingHooks struct {
	observability.Noop
	mu     sync.Mutex
	stages []string
	safe   int
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnAnalyzed(_ context.Context, _, safe, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.safe = safe
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	t.Cleanup(observability.Install(observability.Hooks{Pipeline: hooks}))

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Snapshot: []byte(sample), Formats: []string{FormatDOT}}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{
		observability.StageParse,
		observability.StageSettle,
		observability.StageGraph,
		observability.StageAnalyze,
		observability.StageRender,
	}
	if strings.Join(hooks.stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.safe != 5 {
		t.Errorf("OnAnalyzed safe = %d, want 5", hooks.safe)
	}
}

// cancelAfter cancels the run once the named stage completes.
type cancelAfter struct {
	observability.Noop
	stage  string
	cancel context.CancelFunc
}

func (h *cancelAfter) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	if stage == h.stage {
		h.cancel()
	}
}

func TestExecuteCancelledDuringAnalysis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t.Cleanup(observability.Install(observability.Hooks{
		Pipeline: &cancelAfter{stage: observability.StageAnalyze, cancel: cancel},
	}))

	res, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Snapshot: []byte(sample)})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
}
