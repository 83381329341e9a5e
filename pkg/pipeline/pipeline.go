// Package pipeline turns a snapshot into settled bricks, a support graph, a
// report and optional drawings. The CLI and the HTTP server both run
// snapshots through [Runner], so caching, logging and error codes behave the
// same everywhere.
//
// A run reads the snapshot (a file or bytes), parses it, settles it, builds
// the support graph, analyzes it and, when formats are requested, renders
// it. Three results are cached under the hash of the normalized snapshot:
// the settled bricks, the report and each rendered artifact. The graph is
// cheap to rebuild from the settled bricks and is never cached.
//
//	r := pipeline.NewRunner(c, nil, logger)
//	res, err := r.Execute(ctx, pipeline.Options{Input: "snapshot.txt", Details: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Report.Safe, res.Report.ChainTotal)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/brick"
	"github.com/matzehuels/brickfall/pkg/cache"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/support"
)

// Format constants for rendered outputs.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatPNG, FormatJSON}

// Options configures one run. Exactly one of Input and Snapshot is set.
type Options struct {
	Input    string // snapshot file
	Snapshot []byte // snapshot text

	Details bool // keep per-brick details in Result.Report
	Refresh bool // skip cache reads; results are still written

	Formats  []string // formats to render, see ValidFormats
	Detailed bool     // Z ranges and fall counts in node labels

	CacheTTL time.Duration // zero means cache.DefaultTTL
	Logger   *log.Logger   // nil means the runner's logger

	validated bool
}

// Result is everything a run produced.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// InputHash is the content hash of the normalized snapshot.
	InputHash string

	// Bricks are the parsed bricks in input order.
	Bricks []brick.Brick

	// Settled are the bricks after settling, in settling order.
	Settled []brick.Brick

	// Graph is the support graph of Settled.
	Graph *support.Graph

	// Report is the analysis of Graph.
	Report analysis.Report

	// Artifacts maps each requested format to its rendered bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds sizes and per-stage durations of a run.
type Stats struct {
	BrickCount  int
	Moved       int // bricks whose Z changed while settling
	EdgeCount   int
	ParseTime   time.Duration
	SettleTime  time.Duration
	GraphTime   time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo records which cached stages were served from the cache.
type CacheInfo struct {
	SettleHit bool // settled bricks came from cache
	ReportHit bool // report came from cache
	RenderHit bool // every artifact came from cache
}

// Chain is the chain reaction started by removing a single brick.
type Chain struct {
	Ref     string   `json:"ref"`
	Falls   int      `json:"falls"`
	Toppled []string `json:"toppled"` // refs in the order they fall
}

// Chain returns the chain reaction of the brick with the given reference.
// Unknown references yield an ErrCodeBrickNotFound error.
func (r *Result) Chain(ref string) (Chain, error) {
	id, err := r.Graph.Lookup(ref)
	if err != nil {
		return Chain{}, errors.Wrap(errors.ErrCodeBrickNotFound, err, "chain reaction")
	}
	fallen := analysis.ChainReactionSet(r.Graph, id)
	c := Chain{Ref: ref, Falls: len(fallen), Toppled: make([]string, len(fallen))}
	for i, f := range fallen {
		c.Toppled[i] = r.Graph.Brick(f).Ref
	}
	return c, nil
}

// ValidateFormat reports an ErrCodeInvalidFormat error unless format is one
// of ValidFormats.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats validates each of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks that exactly one input is set, lower-cases
// and de-duplicates Formats, and fills in CacheTTL and Logger. Repeated calls
// are no-ops.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.Input == "" && len(o.Snapshot) == 0:
		return errors.New(errors.ErrCodeInvalidInput, "input file or snapshot is required")
	case o.Input != "" && len(o.Snapshot) > 0:
		return errors.New(errors.ErrCodeInvalidInput, "input file and snapshot are mutually exclusive")
	}

	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	if err := ValidateFormats(formats); err != nil {
		return err
	}
	o.Formats = formats

	if o.CacheTTL == 0 {
		o.CacheTTL = cache.DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// FullReport reports whether the run needs per-brick details, either because
// the caller asked for them or because rendering highlights unsafe bricks.
func (o *Options) FullReport() bool {
	return o.Details || len(o.Formats) > 0
}

// ReportKeyOpts is the part of o that changes a cached report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{Details: o.FullReport()}
}

// ArtifactKeyOpts is the part of o that changes a cached rendering of format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
