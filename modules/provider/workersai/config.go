package workersai

import (
	"regexp"
	"time"
)

const (
	// DefaultSystemPrompt is prepended to every request as the system record.
	DefaultSystemPrompt = "Kamu adalah asisten pribadi yang membantu percakapan berbasis teks."

	// FallbackReply is returned when the upstream body lacks result.response.
	FallbackReply = "AI tidak memberikan respons yang valid."
)

// endpointPattern is the only accepted endpoint shape: an http or https
// URL with something after the scheme.
var endpointPattern = regexp.MustCompile(`(?i)^https?://.+`)

// Config holds the remote inference endpoint settings.
type Config struct {
	// URL is the full completion endpoint (AI_API_URL).
	URL string `yaml:"url"`

	// Token is sent as a bearer token (AI_API_TOKEN).
	Token string `yaml:"token"`

	SystemPrompt string `yaml:"system_prompt"`

	// Timeout bounds a single request. Zero means no explicit timeout.
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) defaults() {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
}

// endpointValid reports whether URL is present and well-formed.
func (c *Config) endpointValid() bool {
	return c.URL != "" && endpointPattern.MatchString(c.URL)
}
