package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-storefront/internal/cacheinfra"
)

// ErrCacheUnavailable marks failures of the cache backend itself. Callers never
// surface it; the read path degrades to the source of truth instead.
var ErrCacheUnavailable = cacheinfra.ErrUnavailable

// Port is the minimal key-value contract the cache-aside layer consumes.
// Get reports absence with found=false and a nil error; a miss is never a failure.
// Delete of an absent key is a no-op. A non-positive ttl selects the backend default.
type Port interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FetchFn is the loader signature ReadThrough expects when going to the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Outcome labels a cache lookup for observers.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeError Outcome = "error"
)

// Observer receives cache events. internal/metrics implements it.
type Observer interface {
	CacheLookup(key string, outcome Outcome)
	CacheInvalidate(key string, err error)
}

type nopObserver struct{}

func (nopObserver) CacheLookup(string, Outcome)  {}
func (nopObserver) CacheInvalidate(string, error) {}
