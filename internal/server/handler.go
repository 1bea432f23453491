package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/elena-brandt/httpresource/internal/transport"
	"github.com/elena-brandt/httpresource/resource"
)

// handleHealthz responds with a simple JSON liveness status.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleResource dispatches one request against a fresh Resource built
// by newResource, running the decision flow on the worker pool so the
// HTTP accept loop stays unblocked (spec.md §5).
func (s *Server) handleResource(newResource func(r *http.Request) resource.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics != nil {
			s.metrics.InFlightJobs.Inc()
			defer s.metrics.InFlightJobs.Dec()
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := r.Context()
		end := func(int) {}
		if s.tracing != nil {
			ctx, end = s.tracing.StartRequest(ctx, r.Method, r.URL.Path)
		}
		r = r.WithContext(ctx)
		defer func() { end(ww.Status()) }()

		var node string
		job := func() error {
			res := newResource(r)
			var err error
			node, err = transport.Serve(ww, r, res)
			return err
		}

		start := time.Now()
		done := make(chan error, 1)

		if s.pool != nil {
			if err := s.pool.Submit(r.Context(), job, done); err != nil {
				http.Error(w, "server busy", http.StatusServiceUnavailable)
				return
			}
		} else {
			// No pool configured: run inline, but still recover a
			// panicking job so done always receives exactly one
			// value, mirroring workerpool.runJob's guarantee.
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						done <- fmt.Errorf("server: handler panicked: %v", rec)
					}
				}()
				done <- job()
			}()
		}

		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("resource engine error", zap.Error(err), zap.String("path", r.URL.Path))
			// A recovered panic before the head was committed has
			// written nothing yet: answer it with a 500.
			if ww.Status() == 0 {
				http.Error(ww, "internal server error", http.StatusInternalServerError)
			}
		}

		if s.metrics != nil {
			s.metrics.ObserveHalt(ww.Status(), node)
			s.metrics.ObserveDuration(ww.Status(), time.Since(start))
		}
	}
}
