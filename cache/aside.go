package cache

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Aside implements the cache-aside protocol over a Port: reads check the cache
// before the loader, writes invalidate after the store commits. Cache failures are
// logged and absorbed; only loader errors reach the caller.
//
// Concurrent misses on one key may both run the loader and both populate the
// cache. The store stays the source of truth, so the last write simply wins.
type Aside struct {
	port     Port
	policy   Policy
	logger   *slog.Logger
	observer Observer
}

// Option customises an Aside.
type Option func(*Aside)

// WithPolicy overrides the TTL table.
func WithPolicy(p Policy) Option {
	return func(a *Aside) { a.policy = p }
}

// WithLogger sets the logger used for degraded cache operations.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aside) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver registers an Observer for lookup and invalidation events.
func WithObserver(o Observer) Option {
	return func(a *Aside) {
		if o != nil {
			a.observer = o
		}
	}
}

// NewAside wraps port with the cache-aside protocol.
func NewAside(port Port, opts ...Option) *Aside {
	a := &Aside{
		port:     port,
		policy:   DefaultPolicy(),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(slog.String("component", "cache_aside"))
	return a
}

// Policy returns the TTL table in use.
func (a *Aside) Policy() Policy {
	return a.policy
}

// ReadThrough returns the cached value at key, or runs fetchFn once on a miss and
// caches its JSON encoding with the key's TTL. fetchFn errors are returned as is and
// nothing is cached.
func ReadThrough[T any](ctx context.Context, a *Aside, key string, fetchFn FetchFn[T]) (T, error) {
	if payload, ok := a.lookup(ctx, key); ok {
		var cached T
		err := json.Unmarshal(payload, &cached)
		if err == nil {
			a.observer.CacheLookup(key, OutcomeHit)
			return cached, nil
		}
		a.logger.Warn("discarding undecodable cache entry",
			slog.String("key", key), slog.Any("error", err))
		a.observer.CacheLookup(key, OutcomeError)
		a.drop(ctx, key)
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	a.store(ctx, key, value)
	return value, nil
}

// Invalidate deletes every key. Deleting an absent key is not an error, and
// backend failures are logged rather than returned: a stale entry is bounded by
// its TTL.
func (a *Aside) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		err := a.port.Delete(ctx, key)
		a.observer.CacheInvalidate(key, err)
		if err != nil {
			a.logger.Warn("cache invalidation failed",
				slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (a *Aside) lookup(ctx context.Context, key string) ([]byte, bool) {
	payload, found, err := a.port.Get(ctx, key)
	if err != nil {
		a.observer.CacheLookup(key, OutcomeError)
		a.logger.Warn("cache lookup failed, reading from store",
			slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !found {
		a.observer.CacheLookup(key, OutcomeMiss)
		return nil, false
	}
	return payload, true
}

func (a *Aside) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := a.port.Set(ctx, key, payload, a.policy.TTLFor(key)); err != nil {
		a.logger.Warn("cache populate failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (a *Aside) drop(ctx context.Context, key string) {
	if err := a.port.Delete(ctx, key); err != nil {
		a.logger.Debug("cache delete of bad entry failed", slog.String("key", key), slog.Any("error", err))
	}
}
