package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHooks records every hook event as Prometheus metrics.
type PrometheusHooks struct {
	gatherer prometheus.Gatherer

	DatasetLoads  *prometheus.CounterVec
	DatasetRows   *prometheus.GaugeVec
	LayoutRuns    *prometheus.CounterVec
	LayoutTicks   prometheus.Counter
	LayoutSettle  prometheus.Histogram
	ZoomRequests  *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	CacheBytes    prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewPrometheusHooks registers devmap metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry reuses the existing collectors.
func NewPrometheusHooks(reg prometheus.Registerer) (*PrometheusHooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	h := &PrometheusHooks{gatherer: gatherer}
	var err error

	if h.DatasetLoads, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devmap_dataset_loads_total",
		Help: "Dataset loads, labeled by dataset and result.",
	}, []string{"dataset", "result"}), "devmap_dataset_loads_total"); err != nil {
		return nil, err
	}
	if h.DatasetRows, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "devmap_dataset_rows",
		Help: "Rows in the most recently ranked dataset.",
	}, []string{"dataset"}), "devmap_dataset_rows"); err != nil {
		return nil, err
	}
	if h.LayoutRuns, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devmap_layout_runs_total",
		Help: "Collision layout runs, labeled by how they ended (started, settled, superseded).",
	}, []string{"state"}), "devmap_layout_runs_total"); err != nil {
		return nil, err
	}
	if h.LayoutTicks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "devmap_layout_ticks_total",
		Help: "Simulation ticks executed across all layout runs.",
	}), "devmap_layout_ticks_total"); err != nil {
		return nil, err
	}
	if h.LayoutSettle, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "devmap_layout_settle_seconds",
		Help:    "Wall time from layout start to settle.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "devmap_layout_settle_seconds"); err != nil {
		return nil, err
	}
	if h.ZoomRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devmap_zoom_requests_total",
		Help: "Zoom requests, labeled by outcome.",
	}, []string{"outcome"}), "devmap_zoom_requests_total"); err != nil {
		return nil, err
	}
	if h.CacheRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devmap_cache_requests_total",
		Help: "Cache lookups, labeled by key type and result (hit, miss).",
	}, []string{"key_type", "result"}), "devmap_cache_requests_total"); err != nil {
		return nil, err
	}
	if h.CacheBytes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "devmap_cache_written_bytes_total",
		Help: "Bytes written to the cache.",
	}), "devmap_cache_written_bytes_total"); err != nil {
		return nil, err
	}
	if h.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devmap_http_requests_total",
		Help: "HTTP API requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "devmap_http_requests_total"); err != nil {
		return nil, err
	}
	if h.HTTPDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devmap_http_request_duration_seconds",
		Help:    "HTTP API latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"}), "devmap_http_request_duration_seconds"); err != nil {
		return nil, err
	}
	return h, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (h *PrometheusHooks) Handler() http.Handler {
	gatherer := h.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (h *PrometheusHooks) OnLoadStart(context.Context, string) {}

func (h *PrometheusHooks) OnLoadComplete(_ context.Context, dataset string, _ int, _ time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.DatasetLoads.WithLabelValues(dataset, result).Inc()
}

func (h *PrometheusHooks) OnRankComplete(_ context.Context, dataset string, rows int, _ time.Duration) {
	h.DatasetRows.WithLabelValues(dataset).Set(float64(rows))
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, string, int) {
	h.LayoutRuns.WithLabelValues("started").Inc()
}

func (h *PrometheusHooks) OnLayoutTick(context.Context, string, float64) {
	h.LayoutTicks.Inc()
}

func (h *PrometheusHooks) OnLayoutSettled(_ context.Context, _ string, _ int, d time.Duration) {
	h.LayoutRuns.WithLabelValues("settled").Inc()
	h.LayoutSettle.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnLayoutSuperseded(context.Context, string, int) {
	h.LayoutRuns.WithLabelValues("superseded").Inc()
}

func (h *PrometheusHooks) OnZoom(_ context.Context, outcome string) {
	h.ZoomRequests.WithLabelValues(outcome).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.CacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, statusCode int, d time.Duration) {
	h.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.HTTPDurations.WithLabelValues(method, route).Observe(d.Seconds())
}

// register adds c to reg, returning the already registered collector of the
// same type when one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}

var _ AllHooks = (*PrometheusHooks)(nil)
