package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/internal/cacheinfra"
)

// Supported backends.
const (
	BackendMemory  = "memory"
	BackendSturdyc = "sturdyc"
	BackendRedis   = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            string
	TTL                time.Duration
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration
	Redis              RedisConfig
}

// RedisConfig addresses the remote backend.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "", BackendMemory:
		return nil
	case BackendSturdyc:
		return c.toInternal().Validate()
	case BackendRedis:
		if c.Redis.Address == "" {
			return &cacheinfra.ConfigError{Field: "Redis.Address", Message: "required for redis backend"}
		}
		return nil
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: fmt.Sprintf("unsupported backend %q", c.Backend)}
	}
}

// NewPort constructs the Port selected by cfg.Backend.
func NewPort(cfg Config) (Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Backend) {
	case BackendSturdyc:
		store, err := cacheinfra.NewSturdycStore(cfg.toInternal())
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		store, err := cacheinfra.NewValkeyStore(cacheinfra.RedisConfig{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.TTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return cacheinfra.NewMemoryStore(cfg.TTL), nil
	}
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Backend:            BackendSturdyc,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
