// Package share serves shared notes over HTTP. A note is public while its
// shareId is set; clearing the shareId revokes access.
package share

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	log     logger.Logger
	started time.Time
}

// Options configures New. Zero values pick the defaults.
type Options struct {
	Addr           string
	Version        string
	RequestTimeout time.Duration
}

// New builds the router and HTTP server. The store must already be open.
func New(store types.Store, log logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	log = log.With(logger.String("component", "share"))
	started := time.Now()

	s := &http.Server{
		Addr:              opts.Addr,
		Handler:           newRouter(store, log, opts.RequestTimeout, healthInfo{version: opts.Version, started: started}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return &Server{http: s, log: log, started: started}
}

// newRouter returns the handler tree with the global middlewares applied.
func newRouter(store types.Store, log logger.Logger, timeout time.Duration, info healthInfo) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(accessLog(log))

	r.Get("/healthz", healthz(info))
	r.Get("/share/{shareId}", sharedNote(store, log))
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start runs the HTTP server and blocks until it fails or is shut down.
func (s *Server) Start() error {
	s.log.Infof("share server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("share server shutting down")
	return s.http.Shutdown(ctx)
}
