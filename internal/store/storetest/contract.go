// Package storetest provides a behavioural contract shared by every
// store.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/store"
)

// RunContract exercises s against the store.Store contract.
// The store must start empty.
func RunContract(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get session", func(t *testing.T) {
		cfg := readerconfig.Default()
		cfg.ColCount = readerconfig.ColCountTwo
		cfg.EnableMathJax = true

		err := s.PutSession(ctx, &store.SessionState{
			ID:     "win-1",
			Reader: &store.ReaderState{PublicationID: "pub-1", Config: &cfg},
		})
		if err != nil {
			t.Fatalf("PutSession() unexpected error: %v", err)
		}

		got, err := s.Session(ctx, "win-1")
		if err != nil {
			t.Fatalf("Session() unexpected error: %v", err)
		}
		gotCfg, err := got.ReaderConfig()
		if err != nil {
			t.Fatalf("ReaderConfig() unexpected error: %v", err)
		}
		if gotCfg != cfg {
			t.Errorf("ReaderConfig() = %+v, want %+v", gotCfg, cfg)
		}
		if got.Reader.PublicationID != "pub-1" {
			t.Errorf("PublicationID = %q, want pub-1", got.Reader.PublicationID)
		}
		if got.UpdatedAt.IsZero() {
			t.Error("UpdatedAt should be stamped on write")
		}
	})

	t.Run("returned session is a copy", func(t *testing.T) {
		got, err := s.Session(ctx, "win-1")
		if err != nil {
			t.Fatalf("Session() unexpected error: %v", err)
		}
		got.Reader.Config.ColCount = readerconfig.ColCountOne

		again, err := s.Session(ctx, "win-1")
		if err != nil {
			t.Fatalf("Session() unexpected error: %v", err)
		}
		if again.Reader.Config.ColCount != readerconfig.ColCountTwo {
			t.Errorf("mutation leaked into store: ColCount = %q", again.Reader.Config.ColCount)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := s.Session(ctx, "no-such-window")
		if !errors.Is(err, store.ErrSessionNotFound) {
			t.Errorf("Session() error = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("session without reader state", func(t *testing.T) {
		if err := s.PutSession(ctx, &store.SessionState{ID: "win-bare"}); err != nil {
			t.Fatalf("PutSession() unexpected error: %v", err)
		}
		got, err := s.Session(ctx, "win-bare")
		if err != nil {
			t.Fatalf("Session() unexpected error: %v", err)
		}
		if _, err := got.ReaderConfig(); !errors.Is(err, store.ErrNoReaderState) {
			t.Errorf("ReaderConfig() error = %v, want ErrNoReaderState", err)
		}
	})

	t.Run("empty window id rejected", func(t *testing.T) {
		err := s.PutSession(ctx, &store.SessionState{})
		if !errors.Is(err, store.ErrEmptyWindowID) {
			t.Errorf("PutSession() error = %v, want ErrEmptyWindowID", err)
		}
	})

	t.Run("delete session", func(t *testing.T) {
		if err := s.DeleteSession(ctx, "win-1"); err != nil {
			t.Fatalf("DeleteSession() unexpected error: %v", err)
		}
		if _, err := s.Session(ctx, "win-1"); !errors.Is(err, store.ErrSessionNotFound) {
			t.Errorf("Session() after delete error = %v, want ErrSessionNotFound", err)
		}
		if err := s.DeleteSession(ctx, "win-1"); err != nil {
			t.Errorf("DeleteSession() of unknown window error = %v, want nil", err)
		}
	})

	t.Run("default config round trip", func(t *testing.T) {
		cfg := readerconfig.Default()
		cfg.EnableMathJax = true
		cfg.Night = true

		if err := s.PutDefaultConfig(ctx, cfg); err != nil {
			t.Fatalf("PutDefaultConfig() unexpected error: %v", err)
		}
		got, err := s.DefaultConfig(ctx)
		if err != nil {
			t.Fatalf("DefaultConfig() unexpected error: %v", err)
		}
		if got != cfg {
			t.Errorf("DefaultConfig() = %+v, want %+v", got, cfg)
		}
	})
}
