package whatsapp

import (
	"errors"
	"path/filepath"
)

// DefaultSessionDir holds the paired device identity between runs.
const DefaultSessionDir = "./auth_info"

const sessionFile = "session.db"

// Config holds the configuration for the WhatsApp channel.
type Config struct {
	// SessionDir is where the device credential database lives.
	SessionDir string `yaml:"session_dir"`

	// PrintQR renders the pairing code in the terminal when the device
	// is not yet linked.
	PrintQR bool `yaml:"print_qr"`
}

func (c *Config) defaults() {
	if c.SessionDir == "" {
		c.SessionDir = DefaultSessionDir
	}
}

func (c *Config) validate() error {
	if c.SessionDir == "" {
		return errors.New("whatsapp: session_dir is required")
	}
	return nil
}

// dsn returns the sqlite connection string for the session database.
func (c *Config) dsn() string {
	path := filepath.Join(c.SessionDir, sessionFile)
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
