// Package cache provides memoization for expensive figure computations.
//
// Decoding a large floating-point render and comparing it against its
// reference is the slow part of regenerating figures over a big output tree.
// Entries are keyed by content signatures of the candidate image, the
// reference image, and the compared region, so a cached value is only ever
// reused while both files and the inset table are unchanged.
//
// Two implementations are provided:
//   - FileCache: entries stored under a directory (CLI usage)
//   - NullCache: no-op cache for disabling memoization
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached value classes.
const (
	// TTLMetric is how long computed error metrics stay valid. The key
	// already changes whenever either image changes, so this is only a
	// bound on disk growth.
	TTLMetric = 30 * 24 * time.Hour
)

// Cache is the interface for cache backends.
// Get returns (data, hit, error); a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MetricKeyOpts carries the inputs that distinguish one error computation
// from another beyond the two image signatures.
type MetricKeyOpts struct {
	Left   int
	Top    int
	Width  int
	Height int
	Full   bool // whole-image comparison, rect fields ignored
}

// Keyer generates cache keys for the value classes used by the figure
// pipeline. Keys embed every input of the computation so stale values can
// never be returned.
type Keyer interface {
	// MetricKey generates a key for a relative-error computation between
	// a candidate image and a reference image over a region.
	MetricKey(imageSig, refSig string, opts MetricKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MetricKey generates a key for a relative-error computation.
func (k *DefaultKeyer) MetricKey(imageSig, refSig string, opts MetricKeyOpts) string {
	return hashKey("metric", imageSig, refSig, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
