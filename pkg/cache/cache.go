// Package cache stores intermediate pipeline results keyed by content hash.
//
// The pipeline settles a snapshot, builds its support graph and analyzes it.
// Settling and analysis are O(n²), so results are cached under a key derived
// from the SHA-256 of the raw snapshot. Backends:
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: shared cache backed by a MongoDB collection
//   - [NullCache]: caching disabled
//
// Key construction is separated into [Keyer] so that deployments can scope
// keys (see [ScopedKeyer]).
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long entries live when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported with hit=false and a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// SettledKey is the key for the settled bricks of a snapshot.
	SettledKey(inputHash string) string

	// ReportKey is the key for the analysis report of a snapshot.
	ReportKey(inputHash string, opts ReportKeyOpts) string

	// ArtifactKey is the key for a rendered support-graph artifact.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ReportKeyOpts holds the options that change a report's content.
type ReportKeyOpts struct {
	Details bool `json:"details"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer produces unscoped keys of the form "stage:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SettledKey implements Keyer.
func (DefaultKeyer) SettledKey(inputHash string) string {
	return "settled:" + inputHash
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(inputHash string, opts ReportKeyOpts) string {
	return hashKey("report", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

var _ Keyer = DefaultKeyer{}
