// Package redis implements store.Store on top of Redis, so several delivery
// processes can share reader sessions.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/store"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "pubstream:"

// Store implements store.Store using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero keeps sessions until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Store connected to address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) sessionKey(winID string) string {
	return s.prefix + "session:" + winID
}

func (s *Store) defaultKey() string {
	return s.prefix + "default-config"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// DefaultConfig returns the stored default, or readerconfig.Default() when none was written.
func (s *Store) DefaultConfig(ctx context.Context) (readerconfig.Config, error) {
	val, err := s.client.Get(ctx, s.defaultKey()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return readerconfig.Default(), nil
		}
		return readerconfig.Config{}, fmt.Errorf("failed to get default config from redis: %w", err)
	}

	var cfg readerconfig.Config
	if err := json.Unmarshal(val, &cfg); err != nil {
		return readerconfig.Config{}, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return cfg, nil
}

// Session loads the state registered under winID.
func (s *Store) Session(ctx context.Context, winID string) (*store.SessionState, error) {
	val, err := s.client.Get(ctx, s.sessionKey(winID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %q", store.ErrSessionNotFound, winID)
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var state store.SessionState
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %q: %w", winID, err)
	}
	return &state, nil
}

// PutSession persists state as JSON with the configured TTL.
func (s *Store) PutSession(ctx context.Context, state *store.SessionState) error {
	if state == nil || state.ID == "" {
		return store.ErrEmptyWindowID
	}

	stamped := *state
	stamped.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(&stamped)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// DeleteSession removes a window's state.
func (s *Store) DeleteSession(ctx context.Context, winID string) error {
	if err := s.client.Del(ctx, s.sessionKey(winID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// PutDefaultConfig replaces the default configuration. It never expires.
func (s *Store) PutDefaultConfig(ctx context.Context, cfg readerconfig.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := s.client.Set(ctx, s.defaultKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save default config to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)
