package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is used when the CLI does not override it.
const DefaultEnvPrefix = "STOREFRONT"

// Loader hydrates the runtime configuration with env > file > default precedence.
type Loader struct {
	envPrefix string
	files     []string
}

func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{
		envPrefix: envPrefix,
		files:     files,
	}
}

// Load merges defaults, files and environment, then validates the result.
func (l *Loader) Load(ctx context.Context) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(DefaultConfig()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		parser, err := parserFor(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		if err := k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// camelKeys restores the casing of camelCase keys that env names lose.
var camelKeys = map[string]string{
	"cache.defaultttlseconds":          "cache.defaultTTLSeconds",
	"cache.sturdyc.numshards":          "cache.sturdyc.numShards",
	"cache.sturdyc.evictionpercentage": "cache.sturdyc.evictionPercentage",
	"catalog.incentiveproductid":       "catalog.incentiveProductId",
}

// envKey maps STOREFRONT_CACHE__REDIS__ADDRESS to cache.redis.address.
// Double underscores nest; single underscores are dropped.
func (l *Loader) envKey(s string) string {
	key := strings.TrimPrefix(s, l.envPrefix+"_")
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ToLower(strings.ReplaceAll(key, "_", ""))
	if mapped, ok := camelKeys[key]; ok {
		return mapped
	}
	return key
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	case ".toml", ".tml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("config: unsupported file extension %s", ext)
	}
}

func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"listen": map[string]any{
				"address": cfg.Server.Listen.Address,
				"port":    cfg.Server.Listen.Port,
			},
			"logging": map[string]any{
				"level":  cfg.Server.Logging.Level,
				"format": cfg.Server.Logging.Format,
			},
		},
		"cache": map[string]any{
			"backend":           cfg.Cache.Backend,
			"defaultTTLSeconds": cfg.Cache.DefaultTTLSeconds,
			"redis": map[string]any{
				"address":  cfg.Cache.Redis.Address,
				"username": cfg.Cache.Redis.Username,
				"password": cfg.Cache.Redis.Password,
				"db":       cfg.Cache.Redis.DB,
			},
			"sturdyc": map[string]any{
				"capacity":           cfg.Cache.Sturdyc.Capacity,
				"numShards":          cfg.Cache.Sturdyc.NumShards,
				"evictionPercentage": cfg.Cache.Sturdyc.EvictionPercentage,
			},
		},
		"database": map[string]any{
			"driver": cfg.Database.Driver,
			"dsn":    cfg.Database.DSN,
		},
		"catalog": map[string]any{
			"incentiveProductId": cfg.Catalog.IncentiveProductID,
		},
		"notify": map[string]any{
			"backend": cfg.Notify.Backend,
			"kafka": map[string]any{
				"brokers": cfg.Notify.Kafka.Brokers,
				"topic":   cfg.Notify.Kafka.Topic,
			},
		},
	}
}
