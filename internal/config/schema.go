// Package config handles configuration loading for warelay: a .env file,
// an optional YAML overlay with environment variable expansion, and
// environment overrides, followed by structural validation.
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Store backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultHeartbeatSchedule probes backends every five minutes.
const DefaultHeartbeatSchedule = "*/5 * * * *"

// Config is the top-level configuration structure.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	Store     StoreConfig     `yaml:"store"`
	AI        AIConfig        `yaml:"ai"`
	Relay     RelayConfig     `yaml:"relay"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// WhatsAppConfig controls the WhatsApp session.
type WhatsAppConfig struct {
	SessionDir string `yaml:"session_dir"`
	PrintQR    bool   `yaml:"print_qr"`
}

// StoreConfig selects and configures the conversation store.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AIConfig describes the remote inference endpoint.
type AIConfig struct {
	URL          string        `yaml:"url"`
	Token        string        `yaml:"token"`
	SystemPrompt string        `yaml:"system_prompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RelayConfig tunes turn handling.
type RelayConfig struct {
	// Serialize runs turns for the same contact one at a time.
	Serialize bool `yaml:"serialize"`

	// Apology overrides the reply sent when a turn fails.
	Apology string `yaml:"apology"`
}

// GatewayConfig controls the operational HTTP server.
// An empty Addr disables it.
type GatewayConfig struct {
	Addr string `yaml:"addr"`
}

// HeartbeatConfig controls the periodic backend probe.
// An empty Schedule disables it.
type HeartbeatConfig struct {
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig controls trace export.
// An empty OTLPEndpoint disables export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info"},
		WhatsApp: WhatsAppConfig{SessionDir: "./auth_info", PrintQR: true},
		Store: StoreConfig{
			Backend: BackendRedis,
			Redis:   RedisConfig{Host: "localhost", Port: 6379},
		},
		Heartbeat: HeartbeatConfig{Schedule: DefaultHeartbeatSchedule},
	}
}

// SlogLevel converts Log.Level to a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Secrets returns the credential values that must never reach a log line.
func (c *Config) Secrets() []string {
	var out []string
	for _, s := range []string{c.AI.Token, c.Store.Redis.Password} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Redacted returns a copy with credentials masked, for display.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.AI.Token != "" {
		cp.AI.Token = redactedValue
	}
	if cp.Store.Redis.Password != "" {
		cp.Store.Redis.Password = redactedValue
	}
	return cp
}

const redactedValue = "[REDACTED]"
