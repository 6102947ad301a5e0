// Package server exposes discovery and the integration mapping over HTTP.
//
// # Routes
//
//	GET  /healthz            liveness
//	GET  /apis               discover and list APIs (?refresh is not supported; use the CLI)
//	GET  /endpoints/{domain} resolve an API endpoint (502 on upstream failure)
//	GET  /config             the whole integration mapping
//	GET  /config/{name}      one entry (404 if absent)
//	PUT  /config/{name}      store an entry; the body must be a JSON object with "type"
//	POST /integrate          run the pipeline (?dry_run=true to only plan)
//	GET  /metrics            Prometheus metrics, when a handler is configured
//
// Errors are returned as {"error": "...", "code": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/apiscout/pkg/catalog"
	"github.com/matzehuels/apiscout/pkg/integration"
	"github.com/matzehuels/apiscout/pkg/pipeline"
)

const (
	// DefaultRequestTimeout bounds every request, including discovery runs.
	DefaultRequestTimeout = 60 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Discoverer is the discovery surface the server needs. *discovery.Engine
// implements it.
type Discoverer interface {
	Discover(ctx context.Context) []catalog.APIRecord
	ResolveEndpoint(ctx context.Context, domain string) (string, error)
}

// Options configures a Server.
type Options struct {
	Discoverer     Discoverer
	Integrator     *integration.Integrator
	Logger         *log.Logger
	Metrics        http.Handler  // Served at /metrics when non-nil
	RequestTimeout time.Duration // Defaults to DefaultRequestTimeout
}

// Server is the HTTP API.
type Server struct {
	discoverer Discoverer
	integrator *integration.Integrator
	runner     *pipeline.Runner
	logger     *log.Logger
	router     chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	s := &Server{
		discoverer: opts.Discoverer,
		integrator: opts.Integrator,
		runner:     pipeline.NewRunner(opts.Discoverer, opts.Integrator, logger),
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/apis", s.handleAPIs)
	r.Get("/endpoints/{domain}", s.handleEndpoint)
	r.Route("/config", func(r chi.Router) {
		r.Get("/", s.handleMapping)
		r.Get("/{name}", s.handleGetConfig)
		r.Put("/{name}", s.handlePutConfig)
	})
	r.Post("/integrate", s.handleIntegrate)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
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
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
