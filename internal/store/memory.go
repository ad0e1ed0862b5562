package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alnah/go-pubstream/internal/readerconfig"
)

// Memory is an in-process Store guarded by a RWMutex.
// Values are copied on the way in and on the way out.
type Memory struct {
	mu       sync.RWMutex
	def      readerconfig.Config
	sessions map[string]*SessionState
	now      func() time.Time
}

// NewMemory creates a Memory store seeded with the given default configuration.
func NewMemory(def readerconfig.Config) *Memory {
	return &Memory{
		def:      def,
		sessions: make(map[string]*SessionState),
		now:      time.Now,
	}
}

// DefaultConfig returns the current default configuration.
func (m *Memory) DefaultConfig(ctx context.Context) (readerconfig.Config, error) {
	if err := ctx.Err(); err != nil {
		return readerconfig.Config{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def, nil
}

// Session returns a copy of the state registered under winID.
func (m *Memory) Session(ctx context.Context, winID string) (*SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[winID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, winID)
	}
	return state.clone(), nil
}

// PutSession stores a copy of state, stamping UpdatedAt.
func (m *Memory) PutSession(ctx context.Context, state *SessionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == nil || state.ID == "" {
		return ErrEmptyWindowID
	}

	stored := state.clone()
	stored.UpdatedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[stored.ID] = stored
	return nil
}

// DeleteSession removes a window's state.
func (m *Memory) DeleteSession(ctx context.Context, winID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, winID)
	return nil
}

// PutDefaultConfig replaces the default configuration.
func (m *Memory) PutDefaultConfig(ctx context.Context, cfg readerconfig.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.def = cfg
	return nil
}

// Len returns the number of registered sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

// Compile-time interface check.
var _ Store = (*Memory)(nil)
