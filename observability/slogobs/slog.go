// Package slogobs implements observability.Provider on top of log/slog,
// giving structured spans, counters and histograms without any external
// telemetry backend. Spans log their start and end at debug level; metrics
// accumulate in memory and log each update.
package slogobs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/verdantlabs/googleai/observability"
)

// Observer routes spans, metrics and logs through a slog.Logger.
type Observer struct {
	logger  *slog.Logger
	metrics *metricsStore
}

var _ observability.Provider = (*Observer)(nil)

// Option configures an Observer.
type Option func(*options)

type options struct {
	logger *slog.Logger
	level  slog.Level
	output io.Writer
}

// WithLogger uses an existing logger instead of constructing one.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLevel sets the minimum level of the constructed logger.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets the destination of the constructed logger.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New creates a slog-backed observer. Without options it logs text to
// stderr at info level.
func New(opts ...Option) *Observer {
	cfg := options{level: slog.LevelInfo, output: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level}))
	}
	return &Observer{logger: logger, metrics: newMetricsStore(logger)}
}

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &span{name: name, start: time.Now(), logger: o.logger, attrs: attrs}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", slogAttrs(name, "span.start", attrs)...)
	return observability.ContextWithSpan(ctx, span), span
}

func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counter(name)
}

func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogram(name)
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

type span struct {
	name   string
	start  time.Time
	logger *slog.Logger

	mu     sync.Mutex
	attrs  []observability.Attribute
	status observability.StatusCode
	desc   string
}

func (s *span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	logAttrs := slogAttrs(s.name, "span.end", s.attrs)
	logAttrs = append(logAttrs, slog.Duration("duration", time.Since(s.start)))
	if s.status == observability.StatusError {
		logAttrs = append(logAttrs, slog.String("status", "error"), slog.String("status.description", s.desc))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span ended", logAttrs...)
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	s.desc = description
}

func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "span error",
		slog.String("span", s.name), slog.String("error", err.Error()))
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	logAttrs := slogAttrs(s.name, name, attrs)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span event", logAttrs...)
}

func slogAttrs(span, event string, attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs)+2)
	out = append(out, slog.String("span", span), slog.String("event", event))
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	return out
}
