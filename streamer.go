package pubstream

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/cssmsg"
	"github.com/alnah/go-pubstream/internal/inject"
	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/metrics"
	"github.com/alnah/go-pubstream/internal/session"
	"github.com/alnah/go-pubstream/internal/store"
	"github.com/alnah/go-pubstream/internal/transform"
)

// MathJaxEntry is the MathJax entry script, relative to the bundle directory.
const MathJaxEntry = "es5/tex-mml-chtml.js"

// Streamer ties configuration resolution and the transformer chain together.
// Create with NewStreamer. Safe for concurrent use.
type Streamer struct {
	provider store.Provider
	resolver *session.Resolver
	registry *transform.Registry
	paths    *assets.Paths
	urlRoot  string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Streamer.
type Option func(*Streamer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Streamer) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collectors. Defaults to none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Streamer) {
		s.metrics = m
	}
}

// WithRegistry shares an existing transformer registry.
func WithRegistry(r *transform.Registry) Option {
	if r == nil {
		panic("pubstream: WithRegistry registry must not be nil")
	}
	return func(s *Streamer) {
		s.registry = r
	}
}

// WithAssetPaths sets the resolved asset directories.
func WithAssetPaths(p *assets.Paths) Option {
	return func(s *Streamer) {
		s.paths = p
	}
}

// WithURLRoot sets the URL the renderer loads Readium CSS from.
func WithURLRoot(u string) Option {
	return func(s *Streamer) {
		s.urlRoot = strings.TrimSuffix(u, "/")
	}
}

// NewStreamer creates a Streamer reading configuration from provider.
// Panics if provider is nil (programmer error).
func NewStreamer(provider store.Provider, opts ...Option) *Streamer {
	if provider == nil {
		panic("pubstream: NewStreamer provider must not be nil")
	}

	s := &Streamer{
		provider: provider,
		registry: transform.NewRegistry(),
		paths:    assets.NewPaths(assets.ModePackaged, ".", ""),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	s.resolver = session.NewResolver(provider, s.logger, s.metrics)
	return s
}

// Resolve returns the effective reader configuration for token and its source.
func (s *Streamer) Resolve(ctx context.Context, token string) session.Resolution {
	return s.resolver.Resolve(ctx, token)
}

// StyleMessage computes the styling message for the window behind token.
func (s *Streamer) StyleMessage(ctx context.Context, token string) cssmsg.Message {
	res := s.resolver.Resolve(ctx, token)
	return cssmsg.BuildForURLRoot(res.Config, s.urlRoot)
}

// SetupMathJax registers the injection transformer. urlFn is called at each
// injection, so it may depend on a server that is not listening yet.
func (s *Streamer) SetupMathJax(urlFn inject.URLFunc) *inject.Injector {
	return inject.Register(s.registry, s.provider, urlFn, s.logger)
}

// Transform runs the transformer chain over doc.
// Returns an error wrapping ErrTransform if any transformer fails.
func (s *Streamer) Transform(ctx context.Context, doc transform.Document) (string, error) {
	start := time.Now()
	out, err := s.registry.Apply(ctx, doc)
	s.metrics.ObserveTransform(time.Since(start), err)
	if err != nil {
		s.logger.Error("transform failed", "href", linkHref(doc), "error", err)
		return "", err
	}
	return out, nil
}

// Registry returns the transformer registry, for additional transformers.
func (s *Streamer) Registry() *transform.Registry { return s.registry }

// AssetPaths returns the resolved asset directories.
func (s *Streamer) AssetPaths() *assets.Paths { return s.paths }

// MathJaxURL returns the MathJax entry script URL served under baseURL.
func MathJaxURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + assets.MathJaxURLPath + "/" + MathJaxEntry
}

// ReadiumCSSURL returns the Readium CSS root URL served under baseURL.
func ReadiumCSSURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + assets.ReadiumCSSURLPath
}

func linkHref(doc transform.Document) string {
	if doc.Link != nil {
		return doc.Link.Href
	}
	return doc.URL
}
