// Package telemetry wires OpenTelemetry tracing into the decision flow
// engine's request lifecycle: one span per request, annotated with the
// request method, path and final status. AnnotateMediaType can add a
// negotiated media type to that span; the server does not call it.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures whether and how requests are traced. Telemetry is
// disabled by default and must be explicitly enabled via config.
type Settings struct {
	// IsEnabled controls whether spans are started at all.
	IsEnabled bool

	// ServiceName is recorded as a span attribute and used to name the
	// tracer.
	ServiceName string

	// Tracer is a custom tracer. If nil, the global tracer for
	// ServiceName is used.
	Tracer trace.Tracer
}

// DefaultSettings returns Settings with tracing disabled.
func DefaultSettings() *Settings {
	return &Settings{IsEnabled: false, ServiceName: "httpresource"}
}

// WithEnabled returns a copy of Settings with IsEnabled set.
func (s *Settings) WithEnabled(enabled bool) *Settings {
	copy := *s
	copy.IsEnabled = enabled
	return &copy
}

// tracer resolves the configured tracer, falling back to the global one
// named after ServiceName.
func (s *Settings) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(s.ServiceName)
}

// StartRequest begins the "httpresource.flow" span for one request, or
// returns a no-op span when tracing is disabled. The returned func ends
// the span, recording the final status.
func (s *Settings) StartRequest(ctx context.Context, method, path string) (context.Context, func(status int)) {
	if !s.IsEnabled {
		return ctx, func(int) {}
	}

	ctx, span := s.tracer().Start(ctx, "httpresource.flow", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))

	return ctx, func(status int) {
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.End()
	}
}

// AnnotateMediaType records the negotiated media type on the span
// carried by ctx, if tracing is active. A no-op otherwise.
func AnnotateMediaType(ctx context.Context, mediaType string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("httpresource.media_type", mediaType))
	}
}
