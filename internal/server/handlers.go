package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html/charset"

	"github.com/alnah/go-pubstream"
	"github.com/alnah/go-pubstream/internal/publication"
	"github.com/alnah/go-pubstream/internal/readerconfig"
	"github.com/alnah/go-pubstream/internal/session"
	"github.com/alnah/go-pubstream/internal/store"
	"github.com/alnah/go-pubstream/internal/transform"
)

// pinger is implemented by stores backed by a remote service.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("store unreachable", "error", err)
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeError(w, http.StatusNotFound, "no publication library configured")
		return
	}

	pub, err := s.library.Open(chi.URLParam(r, "pubID"))
	if err != nil {
		s.writePublicationError(w, err)
		return
	}
	content, link, err := pub.Read(chi.URLParam(r, "*"))
	if err != nil {
		s.writePublicationError(w, err)
		return
	}

	if !link.IsHTML() {
		w.Header().Set("Content-Type", link.MediaType)
		_, _ = w.Write(content)
		return
	}

	out, err := s.streamer.Transform(r.Context(), transform.Document{
		Publication: pub,
		Link:        link,
		URL:         s.BaseURL() + r.URL.Path,
		Body:        string(content),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "transform failed")
		return
	}

	w.Header().Set("Content-Type", htmlContentType(link, out))
	_, _ = w.Write([]byte(out))
}

// htmlContentType labels a transformed body. XHTML declares its encoding in
// the XML declaration, so it gets no charset parameter. HTML gets the
// encoding its BOM or meta tag declares, else utf-8 when the bytes are valid
// UTF-8, else the windows-1252 fallback browsers apply.
func htmlContentType(link *publication.Link, body string) string {
	if link.IsXHTML() {
		return link.MediaType
	}
	_, name, _ := charset.DetermineEncoding([]byte(body), link.MediaType)
	return link.MediaType + "; charset=" + name
}

func (s *Server) writePublicationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, publication.ErrInvalidPublicationID), errors.Is(err, publication.ErrPathTraversal):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, publication.ErrPublicationNotFound), errors.Is(err, publication.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("reading resource", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read resource")
	}
}

// handleStyleMessage serves the styling side channel.
func (s *Server) handleStyleMessage(w http.ResponseWriter, r *http.Request) {
	msg := s.streamer.StyleMessage(r.Context(), sessionToken(r))
	if msg.URLRoot == "" {
		if base := s.BaseURL(); base != "" {
			msg.URLRoot = pubstream.ReadiumCSSURL(base)
		}
	}
	writeJSON(w, http.StatusOK, msg)
}

func sessionToken(r *http.Request) string {
	if token := r.URL.Query().Get("session"); token != "" {
		return token
	}
	return r.Header.Get(SessionHeader)
}

func (s *Server) handlePutSessionConfig(w http.ResponseWriter, r *http.Request) {
	winID, ok := s.windowID(w, r)
	if !ok {
		return
	}
	cfg, ok := decodeConfig(w, r)
	if !ok {
		return
	}

	state := &store.SessionState{
		ID: winID,
		Reader: &store.ReaderState{
			PublicationID: r.URL.Query().Get("pub"),
			Config:        &cfg,
		},
	}
	if err := s.store.PutSession(r.Context(), state); err != nil {
		s.logger.Error("storing session", "win_id", winID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	winID, ok := s.windowID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(r.Context(), winID); err != nil {
		s.logger.Error("deleting session", "win_id", winID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutDefaultConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	if err := s.store.PutDefaultConfig(r.Context(), cfg); err != nil {
		s.logger.Error("storing default config", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store default config")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) windowID(w http.ResponseWriter, r *http.Request) (string, bool) {
	winID, err := session.DecodeToken(chi.URLParam(r, "token"))
	if err != nil || winID == "" {
		writeError(w, http.StatusBadRequest, "invalid session token")
		return "", false
	}
	return winID, true
}

func decodeConfig(w http.ResponseWriter, r *http.Request) (readerconfig.Config, bool) {
	var cfg readerconfig.Config
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid reader config: "+err.Error())
		return cfg, false
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return cfg, false
	}
	return cfg, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
