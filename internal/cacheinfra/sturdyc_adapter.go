package cacheinfra

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// ErrUnavailable is wrapped by every backend failure so callers can tell a cache
// outage apart from a miss.
var ErrUnavailable = errors.New("cache: unavailable")

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries each TTL class can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the time-to-live applied when Set receives a non-positive ttl.
	// Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	// Default: 10 (evict 10% of entries)
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                600 * time.Second,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL and EvictionPercentage are constructor arguments and
// are not included here.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycStore is an in-process cache port on top of sturdyc.
//
// sturdyc fixes the TTL per client, so the store keeps one client per distinct
// TTL class. A key lives in at most one class at a time: Set removes it from every
// other class first.
type SturdycStore struct {
	cfg Config

	mu      sync.RWMutex
	clients map[time.Duration]*sturdyc.Client[[]byte]
}

// NewSturdycStore validates cfg and prepares an empty store. Clients are created
// lazily the first time a TTL class is used.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SturdycStore{
		cfg:     cfg,
		clients: make(map[time.Duration]*sturdyc.Client[[]byte]),
	}, nil
}

// Get returns a copy of the stored bytes.
func (s *SturdycStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	for _, client := range s.snapshot() {
		if value, ok := client.Get(key); ok {
			return append([]byte(nil), value...), true, nil
		}
	}
	return nil, false, nil
}

// Set stores value under key in the client for ttl.
func (s *SturdycStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}
	target := s.client(ttl)
	for _, client := range s.snapshot() {
		if client != target {
			client.Delete(key)
		}
	}
	target.Set(key, append([]byte(nil), value...))
	return nil
}

// Delete removes key from every TTL class.
func (s *SturdycStore) Delete(_ context.Context, key string) error {
	for _, client := range s.snapshot() {
		client.Delete(key)
	}
	return nil
}

// Size reports the number of entries across all TTL classes.
func (s *SturdycStore) Size() int {
	total := 0
	for _, client := range s.snapshot() {
		total += client.Size()
	}
	return total
}

// Classes lists the TTL classes currently in use, shortest first.
func (s *SturdycStore) Classes() []time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Duration, 0, len(s.clients))
	for ttl := range s.clients {
		out = append(out, ttl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *SturdycStore) client(ttl time.Duration) *sturdyc.Client[[]byte] {
	s.mu.RLock()
	client, ok := s.clients[ttl]
	s.mu.RUnlock()
	if ok {
		return client
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[ttl]; ok {
		return client
	}
	client = sturdyc.New[[]byte](
		s.cfg.Capacity,
		s.cfg.NumShards,
		ttl,
		s.cfg.EvictionPercentage,
		s.cfg.ToSturdycOptions()...,
	)
	s.clients[ttl] = client
	return client
}

func (s *SturdycStore) snapshot() []*sturdyc.Client[[]byte] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*sturdyc.Client[[]byte], 0, len(s.clients))
	for _, client := range s.clients {
		out = append(out, client)
	}
	return out
}
