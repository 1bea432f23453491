// Package server sets up the HTTP router, middleware, and the mapping
// between URL paths and resource.Resource factories. Routing between
// resources is explicitly a collaborator concern (spec.md's Non-goals
// keep it out of the engine package), so chi owns it here.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/elena-brandt/httpresource/internal/config"
	"github.com/elena-brandt/httpresource/internal/metrics"
	"github.com/elena-brandt/httpresource/internal/ratelimit"
	"github.com/elena-brandt/httpresource/internal/telemetry"
	"github.com/elena-brandt/httpresource/internal/workerpool"
	"github.com/elena-brandt/httpresource/resource"
)

// Route pairs a URL pattern with the factory that builds a fresh
// Resource for each request — a Resource's lifetime is one request
// (spec.md's data model), never shared across requests.
type Route struct {
	Pattern string
	New     func(r *http.Request) resource.Resource
}

// Server holds the HTTP router and every dependency handlers need:
// the worker pool the engine runs on, metrics, tracing settings and
// the structured logger.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	tracing *telemetry.Settings
	pool    *workerpool.Pool
}

// New creates a Server, wires up routes and middleware, and returns it
// ready to use as an http.Handler. metricsHandler is typically
// promhttp.Handler(); pass nil to skip registering the metrics route
// even if Metrics is enabled in config.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, tracing *telemetry.Settings, pool *workerpool.Pool, routes []Route, metricsHandler http.Handler) *Server {
	s := &Server{cfg: cfg, logger: logger, metrics: m, tracing: tracing, pool: pool}
	s.build(routes, metricsHandler)
	return s
}

func (s *Server) build(routes []Route, metricsHandler http.Handler) {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(ratelimit.Middleware(rate.NewLimiter(rate.Limit(50), 100)))

	r.Get("/healthz", s.handleHealthz)
	if s.cfg.Metrics.Enabled && metricsHandler != nil {
		r.Handle(s.cfg.Metrics.Path, metricsHandler)
	}

	for _, route := range routes {
		r.Handle(route.Pattern, s.handleResource(route.New))
	}

	s.router = r
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestID stamps each request with a random UUID rather than chi's
// default process-local counter, so IDs stay unique across restarts and
// multiple instances. It still sets chi's own context key so
// middleware.GetReqID keeps working for downstream middleware/logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
