// Package api serves widget data at /api/widgets/{provider}.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/Dicklesworthstone/sysmoni_widgets/internal/config"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/model"
	"github.com/Dicklesworthstone/sysmoni_widgets/internal/upstream"
)

var (
	ErrUnknownProvider = errors.New("unknown widget provider")
	ErrNoUpstream      = errors.New("glances upstream not configured")
)

// LocalSource yields samples of the host the server runs on.
type LocalSource interface {
	Latest(ctx context.Context) model.Sample
}

type Server struct {
	cfg     config.Server
	local   LocalSource
	glances *upstream.Client
	router  chi.Router
}

func NewServer(cfg config.Server, local LocalSource) *Server {
	s := &Server{cfg: cfg, local: local}
	if cfg.GlancesURL != "" {
		s.glances = upstream.New(cfg.GlancesURL, cfg.GlancesVersion, cfg.Timeout)
		s.glances.Username = cfg.GlancesUsername
		s.glances.Password = cfg.GlancesPassword
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout + time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/widgets/{provider}", s.handleWidget)

	s.router = r
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Widget API listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("Encoding response", "err", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, err error) {
	jsonResponse(w, status, map[string]json.RawMessage{"error": model.ErrorPayload(err.Error())})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	// an absent version keeps the server's configured default
	version, _ := strconv.Atoi(r.URL.Query().Get("version"))
	slog.Debug("Widget request", "provider", provider, "version", version)

	samp, err := s.sample(r.Context(), provider, version)
	switch {
	case errors.Is(err, ErrUnknownProvider):
		errorResponse(w, http.StatusNotFound, err)
	case errors.Is(err, ErrNoUpstream):
		errorResponse(w, http.StatusServiceUnavailable, err)
	case err != nil:
		slog.Warn("Widget data", "provider", provider, "err", err)
		errorResponse(w, http.StatusBadGateway, err)
	default:
		jsonResponse(w, http.StatusOK, samp)
	}
}

func (s *Server) sample(ctx context.Context, provider string, version int) (*model.Sample, error) {
	switch provider {
	case "local":
		if s.local == nil {
			return nil, ErrUnknownProvider
		}
		samp := s.local.Latest(ctx)
		return &samp, nil
	case "glances":
		if s.glances == nil {
			return nil, ErrNoUpstream
		}
		return s.glances.WithVersion(version).Sample(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}
