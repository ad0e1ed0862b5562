// Package server exposes the delivery surface over HTTP: publication
// resources run through the transformer chain, the styling side channel, the
// MathJax and Readium CSS bundles, and the writer endpoints used by the
// surrounding application to maintain reader state.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/assets"
	"github.com/alnah/go-pubstream/internal/logging"
	"github.com/alnah/go-pubstream/internal/publication"
	"github.com/alnah/go-pubstream/internal/store"
)

// SessionHeader carries the session token when the query parameter is absent.
const SessionHeader = "X-Pubstream-Session"

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 64 << 10
)

// ErrNotListening is returned by Serve when Listen was not called.
var ErrNotListening = errors.New("server is not listening")

// Config holds the listener settings.
type Config struct {
	Addr      string // host:port, ":0" picks a free port
	PublicURL string // overrides the URL derived from the listener
}

// Server is the HTTP delivery surface.
type Server struct {
	cfg      Config
	streamer *pubstream.Streamer
	store    store.Store
	library  *publication.Library
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	router   *chi.Mux

	mu       sync.RWMutex
	listener net.Listener
	baseURL  string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a Server. library may be nil, in which case publication routes
// answer 404.
func New(cfg Config, st *pubstream.Streamer, s store.Store, library *publication.Library, opts ...Option) *Server {
	srv := &Server{
		cfg:      cfg,
		streamer: st,
		store:    s,
		library:  library,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.logger = logging.OrNop(srv.logger)
	srv.baseURL = strings.TrimSuffix(cfg.PublicURL, "/")
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/pub/{pubID}/*", s.handleResource)
	r.Get("/readium-css-message", s.handleStyleMessage)

	paths := s.streamer.AssetPaths()
	s.mountBundle(r, assets.MathJax, paths.MathJax())
	s.mountBundle(r, assets.ReadiumCSS, paths.ReadiumCSS())

	r.Route("/sessions/{token}", func(r chi.Router) {
		r.Put("/config", s.handlePutSessionConfig)
		r.Delete("/", s.handleDeleteSession)
	})
	r.Put("/config/default", s.handlePutDefaultConfig)

	return r
}

func (s *Server) mountBundle(r chi.Router, kind assets.Kind, dir string) {
	prefix := "/" + kind.URLPath
	r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(noListing{http.Dir(dir)})))
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Listen binds the listener and fixes the base URL.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	if s.baseURL == "" {
		s.baseURL = "http://" + ln.Addr().String()
	}
	s.mu.Unlock()
	return nil
}

// BaseURL returns the URL the server is reachable at, or "" before Listen.
func (s *Server) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

// Serve serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.RLock()
	ln := s.listener
	s.mu.RUnlock()
	if ln == nil {
		return ErrNotListening
	}

	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "url", s.BaseURL())
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// noListing hides directory indexes of the asset bundles.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
