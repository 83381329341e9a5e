package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.OnStageComplete(ctx, StageSettle, 7, 2*time.Millisecond, nil)
	m.OnStageComplete(ctx, StageParse, 0, time.Millisecond, errors.New("bad line"))
	m.OnAnalyzed(ctx, 7, 5, 7)
	m.OnCacheHit(ctx, "report")
	m.OnCacheMiss(ctx, "report")
	m.OnCacheMiss(ctx, "report")
	m.OnCacheSet(ctx, "report", 512)
	m.OnResponse(ctx, "POST", "/v1/analyze", 200, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues(StageParse)); got != 1 {
		t.Errorf("parse errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues(StageSettle)); got != 0 {
		t.Errorf("settle errors = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.cacheEvents.WithLabelValues("report", "miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/v1/analyze", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.stageDuration); n != 2 {
		t.Errorf("stage duration series = %d, want 2", n)
	}
}

func TestMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	NewMetrics(reg)
}
