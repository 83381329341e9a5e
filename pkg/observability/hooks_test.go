package observability

import (
	"context"
	"testing"
	"time"
)

type countingHooks struct {
	Noop
	stages, responses int
}

func (c *countingHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {
	c.stages++
}

func (c *countingHooks) OnResponse(context.Context, string, string, int, time.Duration) {
	c.responses++
}

func TestDefaultsAreNoop(t *testing.T) {
	if _, ok := Pipeline().(Noop); !ok {
		t.Errorf("Pipeline() = %T, want Noop", Pipeline())
	}
	if _, ok := Cache().(Noop); !ok {
		t.Errorf("Cache() = %T, want Noop", Cache())
	}
	if _, ok := HTTP().(Noop); !ok {
		t.Errorf("HTTP() = %T, want Noop", HTTP())
	}

	// Emitting without a registration must be safe.
	ctx := context.Background()
	Pipeline().OnAnalyzed(ctx, 7, 5, 7)
	Cache().OnCacheSet(ctx, "report", 1024)
	HTTP().OnResponse(ctx, "POST", "/v1/analyze", 200, time.Second)
}

func TestInstallAndRestore(t *testing.T) {
	ctx := context.Background()
	c := &countingHooks{}

	restore := Install(Hooks{Pipeline: c})
	Pipeline().OnStageComplete(ctx, StageSettle, 7, time.Millisecond, nil)
	HTTP().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
	if c.stages != 1 {
		t.Errorf("stages = %d, want 1", c.stages)
	}
	if c.responses != 0 {
		t.Error("HTTP events reached hooks registered only for the pipeline")
	}
	if _, ok := Cache().(Noop); !ok {
		t.Errorf("unset Cache hooks = %T, want Noop", Cache())
	}

	restore()
	Pipeline().OnStageComplete(ctx, StageSettle, 7, time.Millisecond, nil)
	if c.stages != 1 {
		t.Error("events still delivered after restore")
	}
}

func TestInstallAllNests(t *testing.T) {
	ctx := context.Background()
	outer, inner := &countingHooks{}, &countingHooks{}

	restoreOuter := InstallAll(outer)
	defer restoreOuter()

	restoreInner := InstallAll(inner)
	HTTP().OnResponse(ctx, "POST", "/v1/render", 200, time.Millisecond)
	restoreInner()
	HTTP().OnResponse(ctx, "POST", "/v1/render", 200, time.Millisecond)

	if inner.responses != 1 || outer.responses != 1 {
		t.Errorf("inner = %d, outer = %d, want 1 each", inner.responses, outer.responses)
	}
}
