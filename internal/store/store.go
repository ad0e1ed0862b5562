// Package store holds the process-wide reader state: one default
// configuration record and a map from window identifier to session state.
//
// The transformation core only reads through Provider. Writes come from the
// surrounding application (window lifecycle, settings changes) through Store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/alnah/go-pubstream/internal/readerconfig"
)

// Sentinel errors for store lookups.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoReaderState   = errors.New("session has no reader state")
	ErrNoReaderConfig  = errors.New("reader state has no configuration")
	ErrEmptyWindowID   = errors.New("window id cannot be empty")
)

// SessionState is the state kept for one reading window.
type SessionState struct {
	ID        string       `json:"id"`
	Reader    *ReaderState `json:"reader,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ReaderState is the reader sub-record of a session.
type ReaderState struct {
	PublicationID string               `json:"publicationId,omitempty"`
	Config        *readerconfig.Config `json:"config,omitempty"`
}

// ReaderConfig extracts the configuration sub-record.
// Returns ErrNoReaderState or ErrNoReaderConfig when a level is missing.
func (s *SessionState) ReaderConfig() (readerconfig.Config, error) {
	if s == nil || s.Reader == nil {
		return readerconfig.Config{}, ErrNoReaderState
	}
	if s.Reader.Config == nil {
		return readerconfig.Config{}, ErrNoReaderConfig
	}
	return *s.Reader.Config, nil
}

// clone returns a deep copy so stored and returned values never alias.
func (s *SessionState) clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Reader != nil {
		reader := *s.Reader
		if s.Reader.Config != nil {
			cfg := *s.Reader.Config
			reader.Config = &cfg
		}
		out.Reader = &reader
	}
	return &out
}

// Provider is the read-only view of the state store.
type Provider interface {
	// DefaultConfig returns the global default reader configuration.
	DefaultConfig(ctx context.Context) (readerconfig.Config, error)

	// Session returns the state for a window.
	// Returns ErrSessionNotFound if no session is registered under winID.
	Session(ctx context.Context, winID string) (*SessionState, error)
}

// Store is the writable state store used by the surrounding application.
type Store interface {
	Provider

	// PutSession creates or replaces the state of a window.
	PutSession(ctx context.Context, state *SessionState) error

	// DeleteSession removes a window's state. Deleting an unknown window is not an error.
	DeleteSession(ctx context.Context, winID string) error

	// PutDefaultConfig replaces the global default configuration.
	PutDefaultConfig(ctx context.Context, cfg readerconfig.Config) error

	// Close releases backend resources.
	Close() error
}
