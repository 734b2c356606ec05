package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config. The AI endpoint
// URL is not checked: a bad URL fails each turn with a configuration
// error and never prevents startup.
func Validate(cfg *Config) error {
	var errs []error

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}

	if cfg.WhatsApp.SessionDir == "" {
		errs = append(errs, errors.New("config: whatsapp session_dir is required"))
	}

	errs = append(errs, validateStore(cfg.Store)...)

	if cfg.AI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("config: ai timeout must not be negative, got %s", cfg.AI.Timeout))
	}

	if addr := cfg.Gateway.Addr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("config: gateway addr %q: %w", addr, err))
		}
	}

	if s := cfg.Heartbeat.Schedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, fmt.Errorf("config: heartbeat schedule %q: %w", s, err))
		}
	}

	return errors.Join(errs...)
}

func validateStore(s StoreConfig) []error {
	var errs []error
	switch s.Backend {
	case BackendRedis:
		if s.Redis.Host == "" {
			errs = append(errs, errors.New("config: redis host is required"))
		}
		if s.Redis.Port < 1 || s.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("config: redis port must be 1-65535, got %d", s.Redis.Port))
		}
		if s.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("config: redis db must be non-negative, got %d", s.Redis.DB))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("config: store backend %q is not %q or %q", s.Backend, BackendRedis, BackendMemory))
	}
	return errs
}
