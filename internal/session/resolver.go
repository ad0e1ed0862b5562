// Package session resolves the effective reader configuration for a reading
// window identified by an opaque, base64 transport-encoded session token.
//
// Resolution never fails. Session state is populated asynchronously by window
// lifecycle events, so a token whose session does not exist yet degrades to
// the store's default configuration.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/metrics"
	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/store"
)

// ErrInvalidToken indicates a token that is not base64 or not UTF-8 once decoded.
var ErrInvalidToken = errors.New("invalid session token")

// Source tells where a resolved configuration came from.
type Source string

const (
	// SourceSession means the window's own configuration was found.
	SourceSession Source = "session"
	// SourceDefault means no session was given and the default was used directly.
	SourceDefault Source = "default"
	// SourceFallback means a session lookup failed and the default was used instead.
	SourceFallback Source = "fallback"
)

// Resolution is the outcome of resolving a token.
// Config is always valid; Err explains a fallback and is never returned to callers.
type Resolution struct {
	Config   readerconfig.Config
	Source   Source
	WindowID string
	Err      error
}

// Resolver looks up session configuration in a store.Provider.
type Resolver struct {
	provider store.Provider
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewResolver creates a Resolver. Logger and metrics may be nil.
func NewResolver(provider store.Provider, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logging.OrNop(logger),
		metrics:  m,
	}
}

// Config returns the effective configuration for token.
func (r *Resolver) Config(ctx context.Context, token string) readerconfig.Config {
	return r.Resolve(ctx, token).Config
}

// Resolve returns the effective configuration for token together with its source.
// An empty token skips decoding and lookup entirely.
func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	res := r.resolve(ctx, token)
	r.metrics.ObserveResolution(string(res.Source))
	return res
}

func (r *Resolver) resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{Config: r.defaultConfig(ctx), Source: SourceDefault}
	}

	winID, err := DecodeToken(token)
	if err != nil {
		return r.fallback(ctx, "", err)
	}
	if winID == "" {
		return Resolution{Config: r.defaultConfig(ctx), Source: SourceDefault}
	}

	state, err := r.provider.Session(ctx, winID)
	if err != nil {
		return r.fallback(ctx, winID, err)
	}
	cfg, err := state.ReaderConfig()
	if err != nil {
		return r.fallback(ctx, winID, err)
	}

	r.logger.Debug("reader config from session",
		"win_id", winID,
		"paged", cfg.Paged,
		"col_count", cfg.ColCount,
	)
	return Resolution{Config: cfg, Source: SourceSession, WindowID: winID}
}

func (r *Resolver) fallback(ctx context.Context, winID string, cause error) Resolution {
	r.logger.Debug("reader config from default", "win_id", winID, "error", cause)
	return Resolution{
		Config:   r.defaultConfig(ctx),
		Source:   SourceFallback,
		WindowID: winID,
		Err:      cause,
	}
}

// defaultConfig reads the store default, falling back to readerconfig.Default().
func (r *Resolver) defaultConfig(ctx context.Context) readerconfig.Config {
	cfg, err := r.provider.DefaultConfig(ctx)
	if err != nil {
		r.logger.Warn("default reader config unavailable", "error", err)
		return readerconfig.Default()
	}
	return cfg
}

// lenient decoders, tried in order. Transport encoders in the wild emit both
// alphabets, padded or not.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeToken decodes a session token into its window identifier.
func DecodeToken(token string) (string, error) {
	for _, enc := range encodings {
		b, err := enc.DecodeString(token)
		if err != nil {
			continue
		}
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: not UTF-8", ErrInvalidToken)
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w: not base64", ErrInvalidToken)
}

// EncodeToken encodes a window identifier as a session token.
func EncodeToken(winID string) string {
	return base64.StdEncoding.EncodeToString([]byte(winID))
}
