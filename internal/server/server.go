// Package server exposes the compose pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness probe
//	GET  /api/styles              style keys
//	GET  /api/locations           city folders in the local asset tree
//	GET  /api/variants            existing variant paths for one character
//	POST /api/render              render text to PNG (or a data URL)
//	POST /api/share               render and store in the gallery
//	GET  /shared/{id}             a stored render
//	GET  /assets/*                the local asset tree
package server

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/streettype/internal/config"
	"github.com/matzehuels/streettype/pkg/gallery"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 64 << 10

	shutdownTimeout = 10 * time.Second
)

// LocationLister lists the cities available in an asset tree.
// *alphabet.FSSource implements it.
type LocationLister interface {
	Locations() ([]string, error)
}

// Config holds the server's dependencies.
type Config struct {
	// Runner executes the pipeline. Required.
	Runner *pipeline.Runner

	// Gallery stores shared renders. Share routes answer 501 when nil.
	Gallery gallery.Store

	// Assets is the web root containing "assets/". When nil, /assets is
	// not served.
	Assets fs.FS

	// Locations lists cities. /api/locations answers 501 when nil.
	Locations LocationLister

	// Defaults fill request options the client left empty.
	Defaults config.Defaults

	// PublicURL prefixes share links. Derived from the request when empty.
	PublicURL string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	Logger *log.Logger
}

// Server is the HTTP front-end.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server and builds its routes.
func New(cfg Config) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	cfg.PublicURL = strings.TrimSuffix(cfg.PublicURL, "/")

	s := &Server{cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/styles", s.handleStyles)
		r.Get("/locations", s.handleLocations)
		r.Get("/variants", s.handleVariants)
		r.Post("/render", s.handleRender)
		r.Post("/share", s.handleShare)
	})

	r.Get("/shared/{id}", s.handleShared)

	if s.cfg.Assets != nil {
		// Asset paths already start with "assets/", so the web root is
		// served without stripping the prefix.
		r.Handle("/assets/*", s.assetFiles(http.FileServer(http.FS(s.cfg.Assets))))
	}

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestID assigns a UUID to requests that arrive without an X-Request-Id,
// which middleware.RequestID then adopts.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		reqID := middleware.GetReqID(r.Context())
		ww.Header().Set(middleware.RequestIDHeader, reqID)

		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", reqID)
	})
}
