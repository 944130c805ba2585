// Package api exposes the scheduling engine over HTTP.
//
// # Endpoints
//
//	GET   /health                                   liveness and build info
//	GET   /metrics                                  Prometheus metrics
//	POST  /api/v1/schedule/validate                 run a project (preview or apply)
//	GET   /api/v1/projects/{projectID}/schedule     preview with per-task dates
//	GET   /api/v1/projects/{projectID}/network.svg  network diagram
//	PATCH /api/v1/projects/{projectID}/tasks/{taskID}  direct task edit
//
// A dependency cycle is a successful response with valid=false and
// blocked=true. Errors carry their code in a JSON body and map to HTTP
// statuses by code; see [StatusFor].
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/critpath/pkg/pipeline"
)

// Config holds HTTP server settings.
type Config struct {
	Addr string

	// RequestTimeout bounds one scheduling run, lock wait included.
	RequestTimeout time.Duration

	// Gatherer backs /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Default settings.
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 1 << 20
)

// Server serves the scheduling API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
	http   *http.Server
}

// NewServer creates a server around a runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger, cfg Config) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/schedule/validate", s.handleValidate)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/schedule", s.handleSchedule)
			r.Get("/network.svg", s.handleNetwork)
			r.Patch("/tasks/{taskID}", s.handleEditTask)
		})
	})
	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting http server", "addr", s.cfg.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}
