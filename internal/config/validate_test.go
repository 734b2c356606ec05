package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_Default(t *testing.T) {
	t.Parallel()
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate_InvalidAIURLAccepted(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.AI.URL = "ftp://example.com"
	if err := Validate(cfg); err != nil {
		t.Fatalf("AI URL must not be validated at startup: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log level"},
		{"session dir", func(c *Config) { c.WhatsApp.SessionDir = "" }, "session_dir"},
		{"backend", func(c *Config) { c.Store.Backend = "etcd" }, "store backend"},
		{"redis port low", func(c *Config) { c.Store.Redis.Port = 0 }, "redis port"},
		{"redis port high", func(c *Config) { c.Store.Redis.Port = 70000 }, "redis port"},
		{"redis host", func(c *Config) { c.Store.Redis.Host = "" }, "redis host"},
		{"redis db", func(c *Config) { c.Store.Redis.DB = -1 }, "redis db"},
		{"ai timeout", func(c *Config) { c.AI.Timeout = -time.Second }, "ai timeout"},
		{"gateway addr", func(c *Config) { c.Gateway.Addr = "8080" }, "gateway addr"},
		{"heartbeat", func(c *Config) { c.Heartbeat.Schedule = "every minute" }, "heartbeat schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_MemoryBackendSkipsRedis(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Store.Backend = BackendMemory
	cfg.Store.Redis.Port = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Store.Backend = "etcd"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "log level") || !strings.Contains(err.Error(), "store backend") {
		t.Errorf("missing joined errors: %v", err)
	}
}
