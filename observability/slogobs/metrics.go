package slogobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/verdantlabs/googleai/observability"
)

// metricsStore keeps one instrument per name so repeated Counter/Histogram
// calls return the same accumulating value.
type metricsStore struct {
	logger *slog.Logger

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

func newMetricsStore(logger *slog.Logger) *metricsStore {
	return &metricsStore{
		logger:     logger,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

func (m *metricsStore) counter(name string) *counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = &counter{name: name, logger: m.logger}
		m.counters[name] = c
	}
	return c
}

func (m *metricsStore) histogram(name string) *histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = &histogram{name: name, logger: m.logger}
		m.histograms[name] = h
	}
	return h
}

type counter struct {
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	total int64
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.total += value
	total := c.total
	c.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("metric", c.name),
		slog.Int64("value", value),
		slog.Int64("total", total),
	}
	for _, a := range attrs {
		logAttrs = append(logAttrs, slog.Any(a.Key, a.Value))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "counter", logAttrs...)
}

// Total returns the accumulated counter value.
func (c *counter) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

type histogram struct {
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	count int64
	sum   float64
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.mu.Lock()
	h.count++
	h.sum += value
	count := h.count
	h.mu.Unlock()

	logAttrs := []slog.Attr{
		slog.String("metric", h.name),
		slog.Float64("value", value),
		slog.Int64("count", count),
	}
	for _, a := range attrs {
		logAttrs = append(logAttrs, slog.Any(a.Key, a.Value))
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", logAttrs...)
}
