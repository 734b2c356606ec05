package redisstore

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/flemzord/warelay/internal/conversation"
)

const (
	defaultHost        = "localhost"
	defaultPort        = 6379
	defaultDialTimeout = 5 * time.Second
)

// Config holds the Redis connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix is prepended to every contact identifier. Empty by default
	// so the key is exactly the contact identifier.
	KeyPrefix string `yaml:"key_prefix"`

	// Retention is the expiry applied on every write.
	Retention time.Duration `yaml:"retention"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

func (c *Config) defaults() {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Retention == 0 {
		c.Retention = conversation.DefaultRetention
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("redis: port must be 1-65535, got %d", c.Port)
	}
	if c.DB < 0 {
		return fmt.Errorf("redis: db must be non-negative, got %d", c.DB)
	}
	if c.Retention < time.Second {
		return fmt.Errorf("redis: retention must be at least 1s, got %s", c.Retention)
	}
	return nil
}

func (c *Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
