// Package server implements the storypress preview HTTP API.
//
// The server exposes the layout pipeline over HTTP for the book-builder
// frontend: stories and illustration manifests go in, layouts, spreads,
// preview PNGs, and inpainting masks come out. All layout endpoints are
// deterministic, so responses are safe to cache by URL.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	sperrors "github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/pipeline"
	"github.com/foldline/storypress/pkg/store"
)

// Server serves the preview API.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// Config configures the HTTP listener.
type Config struct {
	Addr string

	// ShutdownTimeout bounds graceful shutdown. Zero means 10s.
	ShutdownTimeout time.Duration
}

// New creates a preview server backed by the given store and runner.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{store: st, runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// routes builds the router with all endpoints registered.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/books/{bookID}", func(r chi.Router) {
			r.Post("/story", s.handleSaveStory)
			r.Get("/story", s.handleGetStory)
			r.Put("/illustrations", s.handleSaveIllustrations)

			r.Get("/layouts", s.handleLayouts)
			r.Get("/layouts/{page}", s.handlePageLayout)
			r.Post("/layouts/sanitize", s.handleSanitize)

			r.Get("/spreads", s.handleSpreads)

			r.Get("/pages/{page}/preview.png", s.handlePreviewPNG)
			r.Get("/pages/{page}/mask.png", s.handleSceneMask)
		})

		r.Get("/masks/character.png", s.handleCharacterMask)
		r.Get("/masks/background.png", s.handleBackgroundMask)
	})

	return r
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writePNG writes a PNG response.
func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps a pipeline error onto an HTTP status and JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch sperrors.GetCode(err) {
	case sperrors.ErrCodeInvalidInput, sperrors.ErrCodeInvalidBookID, sperrors.ErrCodeInvalidPage,
		sperrors.ErrCodeInvalidTemplate, sperrors.ErrCodeInvalidFormat, sperrors.ErrCodeInvalidMaskSize,
		sperrors.ErrCodeInvalidStory:
		status = http.StatusBadRequest
	case sperrors.ErrCodeNotFound, sperrors.ErrCodeBookNotFound, sperrors.ErrCodePageNotFound,
		sperrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case sperrors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"code":  string(sperrors.GetCode(err)),
		"error": sperrors.UserMessage(err),
	})
}
