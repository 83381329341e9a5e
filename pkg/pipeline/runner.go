package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/brick"
	"github.com/matzehuels/brickfall/pkg/cache"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/observability"
	"github.com/matzehuels/brickfall/pkg/render"
	"github.com/matzehuels/brickfall/pkg/settle"
	"github.com/matzehuels/brickfall/pkg/support"
)

// Cache key types reported to [observability.CacheHooks].
const (
	keySettled  = "settled"
	keyReport   = "report"
	keyArtifact = "artifact"
)

// Runner executes the pipeline against a cache. It keeps no per-run state,
// so one Runner serves concurrent CLI and HTTP requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger // used when Options.Logger is nil
}

// NewRunner returns a Runner. Nil arguments select an uncached runner with
// unscoped keys that logs through log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// settledEntry is the cached form of the settle stage.
type settledEntry struct {
	Bricks []brick.Brick `json:"bricks"`
	Moved  int           `json:"moved"`
}

// Execute runs the complete pipeline with caching. The context is checked
// between stages; a cancelled run returns the context's error.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := r.read(opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.HashSnapshot(data),
		Artifacts: map[string][]byte{},
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Parse
	start := time.Now()
	bricks, err := stage(ctx, observability.StageParse, 0, func() ([]brick.Brick, error) {
		return brick.ReadAll(bytes.NewReader(data))
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse snapshot")
	}
	result.Bricks = bricks
	result.Stats.BrickCount = len(bricks)
	result.Stats.ParseTime = time.Since(start)
	logger.Info("parsed snapshot", "bricks", len(bricks), "duration", result.Stats.ParseTime)

	// Settle
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	entry, hit, err := r.settle(ctx, result.InputHash, bricks, opts)
	if err != nil {
		return nil, err
	}
	result.Settled = entry.Bricks
	result.Stats.Moved = entry.Moved
	result.Stats.SettleTime = time.Since(start)
	result.CacheInfo.SettleHit = hit
	logger.Info("settled bricks",
		"bricks", len(entry.Bricks),
		"moved", entry.Moved,
		"cached", hit,
		"duration", result.Stats.SettleTime)

	// Support graph
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	g, err := stage(ctx, observability.StageGraph, len(entry.Bricks), func() (*support.Graph, error) {
		g := support.Build(entry.Bricks)
		return g, g.Validate()
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build support graph")
	}
	result.Graph = g
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.GraphTime = time.Since(start)
	logger.Debug("built support graph", "edges", g.EdgeCount(), "duration", result.Stats.GraphTime)

	// Analyze
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start = time.Now()
	report, hit, err := r.analyze(ctx, result.InputHash, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.AnalyzeTime = time.Since(start)
	result.CacheInfo.ReportHit = hit
	observability.Pipeline().OnAnalyzed(ctx, report.Bricks, report.Safe, report.ChainTotal)
	logger.Info("analyzed support graph",
		"safe", report.Safe,
		"chain_total", report.ChainTotal,
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	// Render
	if len(opts.Formats) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start = time.Now()
		artifacts, hit, err := r.render(ctx, result.InputHash, g, report, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(start)
		result.CacheInfo.RenderHit = hit
		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.Details {
		report.Details = nil
	}
	result.Report = report
	return result, nil
}

// read loads the snapshot and validates it.
func (r *Runner) read(opts Options) ([]byte, error) {
	data := opts.Snapshot
	if opts.Input != "" {
		var err error
		data, err = os.ReadFile(opts.Input)
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.Input, err)
		}
	}
	if err := errors.ValidateInput(data); err != nil {
		return nil, err
	}
	return data, nil
}

// settle settles bricks, consulting the cache first unless Refresh is set.
func (r *Runner) settle(ctx context.Context, inputHash string, bricks []brick.Brick, opts Options) (settledEntry, bool, error) {
	key := r.Keyer.SettledKey(inputHash)
	var entry settledEntry
	if r.lookup(ctx, key, keySettled, opts, &entry) && len(entry.Bricks) == len(bricks) {
		return entry, true, nil
	}

	entry = settledEntry{}
	settled, err := stage(ctx, observability.StageSettle, len(bricks), func() ([]brick.Brick, error) {
		return settle.SettleWithOptions(bricks, settle.Options{
			OnSettle: func(before, after brick.Brick) {
				if before.Z != after.Z {
					entry.Moved++
				}
			},
		})
	})
	if stderrors.Is(err, settle.ErrOverlap) {
		return settledEntry{}, false, errors.Wrap(errors.ErrCodeOverlap, err, "settle")
	}
	if err != nil {
		return settledEntry{}, false, fmt.Errorf("settle: %w", err)
	}
	entry.Bricks = settled
	r.store(ctx, key, keySettled, entry, opts)
	return entry, false, nil
}

// analyze runs the analysis, consulting the cache first unless Refresh is set.
func (r *Runner) analyze(ctx context.Context, inputHash string, g *support.Graph, opts Options) (analysis.Report, bool, error) {
	key := r.Keyer.ReportKey(inputHash, opts.ReportKeyOpts())
	var report analysis.Report
	if r.lookup(ctx, key, keyReport, opts, &report) && report.Bricks == g.Len() {
		return report, true, nil
	}

	report, err := stage(ctx, observability.StageAnalyze, g.Len(), func() (analysis.Report, error) {
		return analysis.AnalyzeContext(ctx, g)
	})
	if err != nil {
		return analysis.Report{}, false, err
	}
	if !opts.FullReport() {
		report.Details = nil
	}
	r.store(ctx, key, keyReport, report, opts)
	return report, false, nil
}

// render produces every requested format. Artifacts already in the cache are
// reused individually.
func (r *Runner) render(ctx context.Context, inputHash string, g *support.Graph, report analysis.Report, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	var dot string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyArtifact)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, keyArtifact)
		}
		allCached = false

		if dot == "" {
			dot = render.ToDOT(g, report, render.Options{Detailed: opts.Detailed})
		}
		data, err := stage(ctx, observability.StageRender, g.Len(), func() ([]byte, error) {
			return renderFormat(ctx, format, dot, report)
		})
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyArtifact, len(data))
		}
	}
	return artifacts, allCached, nil
}

func renderFormat(ctx context.Context, format, dot string, report analysis.Report) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return render.RenderSVG(ctx, dot)
	case FormatPNG:
		return render.RenderPNG(ctx, dot)
	case FormatJSON:
		var buf bytes.Buffer
		if err := render.WriteReportJSON(&buf, report); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "format %q", format)
}

// lookup decodes a cached JSON value into v. Cache failures and corrupt
// entries count as misses; corrupt entries are deleted.
func (r *Runner) lookup(ctx context.Context, key, keyType string, opts Options, v any) bool {
	if opts.Refresh {
		return false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
		return false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		opts.Logger.Warn("dropping cache entry", "key", key, "err", fmt.Errorf("%w: %v", cache.ErrCorrupt, err))
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

// store writes v to the cache as JSON. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, key, keyType string, v any, opts Options) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// stage runs fn between the pipeline start and complete hooks.
func stage[T any](ctx context.Context, name string, bricks int, fn func() (T, error)) (T, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name, bricks)
	start := time.Now()
	v, err := fn()
	hooks.OnStageComplete(ctx, name, bricks, time.Since(start), err)
	return v, err
}

// Close closes the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
