// Package observability lets brickfall report what it is doing without
// depending on a metrics backend.
//
// The pipeline, the cache layer and the HTTP server emit events through three
// small interfaces: [PipelineHooks], [CacheHooks] and [HTTPHooks]. Nothing is
// recorded until a program installs an implementation; until then every
// event goes to [Noop].
//
// [Metrics] implements all three on top of Prometheus. The serve command
// installs it and exposes the registry on /metrics:
//
//	m := observability.NewMetrics(reg)
//	defer observability.InstallAll(m)()
//
// Library code fetches the current hooks at the call site:
//
//	observability.Pipeline().OnStageComplete(ctx, observability.StageSettle, n, elapsed, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Pipeline stage names passed to [PipelineHooks].
const (
	StageParse   = "parse"
	StageSettle  = "settle"
	StageGraph   = "graph"
	StageAnalyze = "analyze"
	StageRender  = "render"
)

// PipelineHooks receives events from the settle/analyze pipeline.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string, bricks int)
	OnStageComplete(ctx context.Context, stage string, bricks int, duration time.Duration, err error)

	// OnAnalyzed reports the headline numbers of a finished analysis,
	// whether computed or read from the cache.
	OnAnalyzed(ctx context.Context, bricks, safe, chainTotal int)
}

// CacheHooks receives cache lookups and writes. keyType is the pipeline
// stage the entry belongs to ("settled", "report" or "artifact").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives one event per served request. route is the matched
// route pattern, not the raw path.
type HTTPHooks interface {
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// AllHooks is implemented by sinks that handle every event category.
type AllHooks interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}

// Noop discards every event. Embed it to implement only some methods.
type Noop struct{}

func (Noop) OnStageStart(context.Context, string, int)                          {}
func (Noop) OnStageComplete(context.Context, string, int, time.Duration, error) {}
func (Noop) OnAnalyzed(context.Context, int, int, int)                          {}
func (Noop) OnCacheHit(context.Context, string)                                 {}
func (Noop) OnCacheMiss(context.Context, string)                                {}
func (Noop) OnCacheSet(context.Context, string, int)                            {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration)     {}

var _ AllHooks = Noop{}

// Hooks is a full registration. Nil fields are replaced with [Noop].
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

var active atomic.Pointer[Hooks]

func init() {
	Install(Hooks{})
}

// Install replaces the registered hooks and returns a function that puts the
// previous registration back:
//
//	t.Cleanup(observability.Install(observability.Hooks{Pipeline: rec}))
func Install(h Hooks) (restore func()) {
	if h.Pipeline == nil {
		h.Pipeline = Noop{}
	}
	if h.Cache == nil {
		h.Cache = Noop{}
	}
	if h.HTTP == nil {
		h.HTTP = Noop{}
	}
	prev := active.Swap(&h)
	return func() { active.Store(prev) }
}

// InstallAll registers h for every event category.
func InstallAll(h AllHooks) (restore func()) {
	return Install(Hooks{Pipeline: h, Cache: h, HTTP: h})
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return active.Load().Pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return active.Load().Cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return active.Load().HTTP }
