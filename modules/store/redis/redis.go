// Package redisstore implements conversation.Store on Redis. Each contact's
// history is a single JSON string value written with SET ... EX, so every
// save replaces both the value and its expiry.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/core"
	"github.com/redis/go-redis/v9"
)

// ModuleID is the lifecycle identifier of the Redis store.
const ModuleID core.ModuleID = "store.redis"

// Compile-time interface guards.
var (
	_ conversation.Store  = (*Store)(nil)
	_ conversation.Pinger = (*Store)(nil)
	_ core.Starter        = (*Store)(nil)
	_ core.Stopper        = (*Store)(nil)
)

// Store is a Redis-backed conversation store. The client is created once
// and shared by every turn.
type Store struct {
	config Config
	client *redis.Client
	logger *slog.Logger
}

// New validates cfg and builds the client. No connection is attempted until
// the first command or Start.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.addr(),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	return &Store{config: cfg, client: client, logger: logger}, nil
}

// ModuleInfo implements core.Module.
func (s *Store) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Start pings the server. A failed ping is logged but does not abort
// startup; the client keeps dialing on demand.
func (s *Store) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DialTimeout)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		s.logger.Error("redis connection error", "addr", s.config.addr(), "error", err)
		return nil
	}
	s.logger.Info("connected to Redis", "addr", s.config.addr(), "db", s.config.DB)
	return nil
}

// Stop closes the client.
func (s *Store) Stop(_ context.Context) error {
	s.logger.Info("redis store stopping")
	return s.client.Close()
}

// Ping checks server reachability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Load fetches and decodes the history for contactID.
func (s *Store) Load(ctx context.Context, contactID string) (conversation.History, error) {
	raw, err := s.client.Get(ctx, s.key(contactID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return conversation.History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get history: %w", err)
	}

	h, err := conversation.Decode(raw)
	if err != nil {
		var pe *conversation.ParseError
		if errors.As(err, &pe) {
			pe.ContactID = contactID
		}
		return nil, err
	}
	return h, nil
}

// Save overwrites the history for contactID and resets its expiry.
func (s *Store) Save(ctx context.Context, contactID string, h conversation.History) error {
	raw, err := conversation.Encode(h)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(contactID), raw, s.config.Retention).Err(); err != nil {
		return fmt.Errorf("redis: set history: %w", err)
	}
	return nil
}

func (s *Store) key(contactID string) string {
	return s.config.KeyPrefix + contactID
}
