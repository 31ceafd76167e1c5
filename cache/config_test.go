package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != BackendSturdyc {
		t.Errorf("expected sturdyc backend, got %q", cfg.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Backend: BackendMemory}, false},
		{"empty backend is memory", Config{}, false},
		{"sturdyc needs capacity", Config{Backend: BackendSturdyc}, true},
		{"redis needs address", Config{Backend: BackendRedis}, true},
		{"unknown backend", Config{Backend: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v but got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewPort_Backends(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer server.Close()

	configs := map[string]Config{
		BackendMemory:  {Backend: BackendMemory, TTL: time.Minute},
		BackendSturdyc: DefaultConfig(),
		BackendRedis:   {Backend: BackendRedis, TTL: time.Minute, Redis: RedisConfig{Address: server.Addr()}},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			port, err := NewPort(cfg)
			if err != nil {
				t.Fatalf("expected port, got error: %v", err)
			}
			ctx := context.Background()
			if err := port.Set(ctx, CartKey("1"), []byte("v"), time.Minute); err != nil {
				t.Fatalf("set: %v", err)
			}
			value, found, err := port.Get(ctx, CartKey("1"))
			if err != nil || !found || string(value) != "v" {
				t.Fatalf("expected hit, got %q found=%v err=%v", value, found, err)
			}
			if err := port.Delete(ctx, CartKey("1")); err != nil {
				t.Fatalf("delete: %v", err)
			}
		})
	}
}

func TestNewPort_InvalidConfig(t *testing.T) {
	if _, err := NewPort(Config{Backend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
