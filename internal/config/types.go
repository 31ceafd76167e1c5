package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/store"
	"github.com/google/uuid"
)

// Config is the full runtime configuration of the storefront server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Cache    CacheConfig    `koanf:"cache"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Notify   NotifyConfig   `koanf:"notify"`
}

type ServerConfig struct {
	Listen  ListenConfig  `koanf:"listen"`
	Logging LoggingConfig `koanf:"logging"`
}

// ListenConfig instructs the HTTP listener about bind address and port.
type ListenConfig struct {
	Address string `koanf:"address"`
	Port    int    `koanf:"port"`
}

// Addr joins address and port for net/http.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Address, l.Port)
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CacheConfig struct {
	Backend           string        `koanf:"backend"`
	DefaultTTLSeconds int           `koanf:"defaultTTLSeconds"`
	Redis             RedisConfig   `koanf:"redis"`
	Sturdyc           SturdycConfig `koanf:"sturdyc"`
}

type RedisConfig struct {
	Address  string `koanf:"address"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type SturdycConfig struct {
	Capacity           int `koanf:"capacity"`
	NumShards          int `koanf:"numShards"`
	EvictionPercentage int `koanf:"evictionPercentage"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// CatalogConfig names catalog entries with special meaning.
type CatalogConfig struct {
	IncentiveProductID string `koanf:"incentiveProductId"`
}

// IncentiveID parses IncentiveProductID, returning uuid.Nil when unset.
func (c CatalogConfig) IncentiveID() uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(c.IncentiveProductID))
	if err != nil {
		return uuid.Nil
	}
	return id
}

type NotifyConfig struct {
	Backend string      `koanf:"backend"`
	Kafka   KafkaConfig `koanf:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// DefaultConfig returns the baseline values used before files and env apply.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Listen: ListenConfig{
				Address: "0.0.0.0",
				Port:    8080,
			},
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
		},
		Cache: CacheConfig{
			Backend:           cache.BackendSturdyc,
			DefaultTTLSeconds: int(cache.DefaultTTL / time.Second),
			Sturdyc: SturdycConfig{
				Capacity:           10000,
				NumShards:          256,
				EvictionPercentage: 10,
			},
		},
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    "file:storefront.db?_foreign_keys=on",
		},
		Notify: NotifyConfig{
			Backend: "log",
			Kafka: KafkaConfig{
				Topic: "customer.notifications",
			},
		},
	}
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if c.Server.Listen.Port <= 0 || c.Server.Listen.Port > 65535 {
		return fmt.Errorf("config: server.listen.port invalid: %d", c.Server.Listen.Port)
	}
	if c.Cache.DefaultTTLSeconds < 0 {
		return fmt.Errorf("config: cache.defaultTTLSeconds invalid: %d", c.Cache.DefaultTTLSeconds)
	}
	if err := c.CacheSettings().Validate(); err != nil {
		return fmt.Errorf("config: cache: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "", "sqlite", store.DriverSQLite:
	case store.DriverPostgres, "pg":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database.dsn required for postgres")
		}
	default:
		return fmt.Errorf("config: database.driver unsupported: %s", c.Database.Driver)
	}

	if raw := strings.TrimSpace(c.Catalog.IncentiveProductID); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return fmt.Errorf("config: catalog.incentiveProductId invalid: %w", err)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Notify.Backend)) {
	case "", "log":
	case "kafka":
		if len(c.Notify.Kafka.Brokers) == 0 {
			return errors.New("config: notify.kafka.brokers required for kafka backend")
		}
		if strings.TrimSpace(c.Notify.Kafka.Topic) == "" {
			return errors.New("config: notify.kafka.topic required for kafka backend")
		}
	default:
		return fmt.Errorf("config: notify.backend unsupported: %s", c.Notify.Backend)
	}
	return nil
}

// CacheSettings maps the cache section onto cache.Config.
func (c Config) CacheSettings() cache.Config {
	return cache.Config{
		Backend:            strings.ToLower(strings.TrimSpace(c.Cache.Backend)),
		TTL:                time.Duration(c.Cache.DefaultTTLSeconds) * time.Second,
		Capacity:           c.Cache.Sturdyc.Capacity,
		NumShards:          c.Cache.Sturdyc.NumShards,
		EvictionPercentage: c.Cache.Sturdyc.EvictionPercentage,
		Redis: cache.RedisConfig{
			Address:  c.Cache.Redis.Address,
			Username: c.Cache.Redis.Username,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
	}
}

// CachePolicy keeps the fixed cart and catalog TTLs and takes the default
// from configuration.
func (c Config) CachePolicy() cache.Policy {
	p := cache.DefaultPolicy()
	if c.Cache.DefaultTTLSeconds > 0 {
		p.Default = time.Duration(c.Cache.DefaultTTLSeconds) * time.Second
	}
	return p
}

// StoreSettings maps the database section onto store.Config.
func (c Config) StoreSettings() store.Config {
	return store.Config{Driver: c.Database.Driver, DSN: c.Database.DSN}
}
