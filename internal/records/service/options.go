package service

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"municipal/internal/records/guard"
	"municipal/internal/records/metrics"
)

const tracerName = "municipal/internal/records/service"

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	claims  guard.Claims
}

// Option configures a workflow.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithClaims guards unique values across concurrent writers.
func WithClaims(c guard.Claims) Option {
	return func(o *options) { o.claims = c }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		claims: guard.Nop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}
