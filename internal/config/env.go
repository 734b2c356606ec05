package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// applyEnv overrides cfg with every recognized variable that is set,
// including variables set to the empty string.
func applyEnv(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %q is not an integer", name, v))
			return
		}
		*dst = n
	}
	boolean := func(name string, dst *bool) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %q is not a boolean", name, v))
			return
		}
		*dst = b
	}
	duration := func(name string, dst *time.Duration) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %q is not a duration", name, v))
			return
		}
		*dst = d
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("WA_SESSION_DIR", &cfg.WhatsApp.SessionDir)

	str("STORE_BACKEND", &cfg.Store.Backend)
	str("REDIS_HOST", &cfg.Store.Redis.Host)
	integer("REDIS_PORT", &cfg.Store.Redis.Port)
	str("REDIS_USERNAME", &cfg.Store.Redis.Username)
	str("REDIS_PASSWORD", &cfg.Store.Redis.Password)
	integer("REDIS_DB", &cfg.Store.Redis.DB)
	str("REDIS_KEY_PREFIX", &cfg.Store.Redis.KeyPrefix)

	str("AI_API_URL", &cfg.AI.URL)
	str("AI_API_TOKEN", &cfg.AI.Token)
	str("AI_SYSTEM_PROMPT", &cfg.AI.SystemPrompt)
	duration("AI_TIMEOUT", &cfg.AI.Timeout)

	boolean("SERIALIZE_TURNS", &cfg.Relay.Serialize)
	str("REPLY_APOLOGY", &cfg.Relay.Apology)

	str("HTTP_ADDR", &cfg.Gateway.Addr)
	str("HEARTBEAT_SCHEDULE", &cfg.Heartbeat.Schedule)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)

	return errors.Join(errs...)
}
