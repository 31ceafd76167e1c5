package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// RedisConfig addresses a Redis-compatible server.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	// TTL applies when Set receives a non-positive ttl.
	TTL time.Duration
}

// ValkeyStore is a remote cache port speaking the Redis protocol.
type ValkeyStore struct {
	client valkey.Client
	ttl    time.Duration
}

// NewValkeyStore connects and pings the server before returning.
func NewValkeyStore(cfg RedisConfig) (*ValkeyStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("cacheinfra: redis address required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 600 * time.Second
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("cacheinfra: redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cacheinfra: redis ping: %w", err)
	}

	return &ValkeyStore{client: client, ttl: cfg.TTL}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: redis get: %w", ErrUnavailable, err)
	}
	payload, err := resp.AsBytes()
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get bytes: %w", ErrUnavailable, err)
	}
	return payload, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	cmd := s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Px(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: redis set: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("%w: redis del: %w", ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *ValkeyStore) Close() {
	s.client.Close()
}
