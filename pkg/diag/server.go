// Package diag exposes the reliability SDK's runtime state over HTTP
// for operators, dashboards, and scrapers.
//
// # Endpoints
//
//   - GET /healthz — liveness summary, 200 while the health score is at
//     or above 50, 503 below it
//   - GET /diagnostics — full JSON report: metrics snapshot, breaker
//     states, operation statistics, recent alerts
//   - GET /events — retained error events, filterable with ?category=,
//     ?severity= and ?limit=
//   - POST /events/{id}/resolve — mark an event resolved, optional JSON
//     body {"note": "..."}; 204 on success, idempotent
//   - GET /metrics — Prometheus exposition
//
// The server is a read-mostly sidecar surface: it never blocks the hot
// path and holds no state of its own beyond references to the monitor,
// registry, and tracker it reports on.
package diag

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/monitor"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/perf"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/registry"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8090"

// Server serves the diagnostics endpoints. Construct with [NewServer],
// run with [Server.Start], and stop with [Server.Shutdown].
type Server struct {
	addr            string
	mon             *monitor.Monitor
	reg             *registry.Registry
	tracker         *perf.Tracker
	gatherer        prometheus.Gatherer
	logger          *slog.Logger
	includeInternal bool

	handler http.Handler
	srv     *http.Server
}

// Option customizes a [Server] created by [NewServer].
type Option func(*Server)

// WithRegistry attaches a registry whose breaker states appear in the
// diagnostics report.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) { s.reg = reg }
}

// WithTracker attaches a tracker whose operation statistics appear in
// the diagnostics report.
func WithTracker(tracker *perf.Tracker) Option {
	return func(s *Server) { s.tracker = tracker }
}

// WithGatherer sets the Prometheus gatherer backing GET /metrics.
// Defaults to [prometheus.DefaultGatherer].
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithLogger sets the logger for request logging and encode failures.
// Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInternalDetails includes internal error details (cause chains,
// context maps) in event payloads. Off by default: the diagnostics port
// may be reachable beyond the operators who own the process.
func WithInternalDetails(include bool) Option {
	return func(s *Server) { s.includeInternal = include }
}

// NewServer builds a diagnostics server reporting on the given monitor.
// addr falls back to [DefaultAddr] when empty.
func NewServer(addr string, mon *monitor.Monitor, opts ...Option) (*Server, error) {
	if mon == nil {
		return nil, sserr.Configuration("diag: monitor is required")
	}
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{
		addr:     addr,
		mon:      mon,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.handler = s.routes()
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}

	return s, nil
}

// Handler returns the server's HTTP handler, for mounting inside an
// existing server or for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens and serves until [Server.Shutdown] is called. Like
// [http.Server.ListenAndServe], it returns [http.ErrServerClosed] after
// a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("diag: listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// routes assembles the router and middleware chain.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/diagnostics", s.handleDiagnostics)
	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleEvents)
		r.Post("/{id}/resolve", s.handleResolve)
	})
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

// requestLogger logs one line per request with status, size, and timing.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("diag: http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
