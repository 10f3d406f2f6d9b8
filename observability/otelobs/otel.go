// Package otelobs implements observability.Provider on OpenTelemetry,
// bridging the client's spans, counters, histograms and logs to whatever
// tracer and meter providers the host application has configured.
package otelobs

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/verdantlabs/googleai/observability"
)

const instrumentationName = "github.com/verdantlabs/googleai"

// Observer bridges observability.Provider to OpenTelemetry. Logs go to a
// slog.Logger since this library does not depend on the otel log bridge.
type Observer struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger *slog.Logger
}

var _ observability.Provider = (*Observer)(nil)

// Option configures an Observer.
type Option func(*config)

type config struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         *slog.Logger
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tracerProvider = tp }
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meterProvider = mp }
}

// WithLogger sets the logger used for the Logger half of the provider.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New creates an OpenTelemetry-backed observer. Without options it uses the
// global tracer and meter providers and slog.Default.
func New(opts ...Option) *Observer {
	cfg := config{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Observer{
		tracer: cfg.tracerProvider.Tracer(instrumentationName),
		meter:  cfg.meterProvider.Meter(instrumentationName),
		logger: cfg.logger,
	}
}

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	ctx, s := o.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(toKeyValues(attrs)...),
	)
	span := &otelSpan{span: s}
	return observability.ContextWithSpan(ctx, span), span
}

func (o *Observer) Counter(name string) observability.Counter {
	c, err := o.meter.Int64Counter(name)
	if err != nil {
		o.logger.Warn("otelobs: counter creation failed", "metric", name, "error", err)
		return noopCounter{}
	}
	return &otelCounter{counter: c}
}

func (o *Observer) Histogram(name string) observability.Histogram {
	h, err := o.meter.Float64Histogram(name)
	if err != nil {
		o.logger.Warn("otelobs: histogram creation failed", "metric", name, "error", err)
		return noopHistogram{}
	}
	return &otelHistogram{histogram: h}
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	logAttrs := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		logAttrs = append(logAttrs, slog.Any(a.Key, a.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, logAttrs...)
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...observability.Attribute) {
	s.span.SetAttributes(toKeyValues(attrs)...)
}

func (s *otelSpan) SetStatus(code observability.StatusCode, description string) {
	switch code {
	case observability.StatusOK:
		s.span.SetStatus(codes.Ok, description)
	case observability.StatusError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, description)
	}
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func (s *otelSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toKeyValues(attrs)...))
}

type otelCounter struct {
	counter metric.Int64Counter
}

func (c *otelCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.counter.Add(ctx, value, metric.WithAttributes(toKeyValues(attrs)...))
}

type otelHistogram struct {
	histogram metric.Float64Histogram
}

func (h *otelHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.histogram.Record(ctx, value, metric.WithAttributes(toKeyValues(attrs)...))
}

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...observability.Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

// toKeyValues converts attributes to otel key-values, preserving native
// types where otel has them.
func toKeyValues(attrs []observability.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		default:
			out = append(out, attribute.String(a.Key, attrString(v)))
		}
	}
	return out
}

func attrString(v any) string {
	return fmt.Sprintf("%v", v)
}
