package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec
	LayoutNodes    *prometheus.HistogramVec

	ExportsTotal   *prometheus.CounterVec
	ExportDuration prometheus.Histogram

	AppliesTotal *prometheus.CounterVec
	NodesAdded   *prometheus.CounterVec
	NodesSkipped *prometheus.CounterVec
	EdgesDropped *prometheus.CounterVec

	MutationsTotal *prometheus.CounterVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.HistogramVec

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	status := []string{"status"}

	return &Metrics{
		registry: reg,

		LayoutsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_layouts_total",
			Help: "Total number of layout runs",
		}, []string{"kind", "status"}),
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvasflow_layout_duration_seconds",
			Help:    "Layout latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		LayoutNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvasflow_layout_nodes",
			Help:    "Nodes produced per layout run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}, []string{"kind"}),

		ExportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_exports_total",
			Help: "Total number of scene exports",
		}, status),
		ExportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvasflow_export_duration_seconds",
			Help:    "Export latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		AppliesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_applies_total",
			Help: "Descriptions merged into a scene",
		}, []string{"kind", "policy"}),
		NodesAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_nodes_added_total",
			Help: "Nodes added to scenes by composition",
		}, []string{"kind"}),
		NodesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_nodes_deduplicated_total",
			Help: "Nodes skipped as duplicates during composition",
		}, []string{"kind"}),
		EdgesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_edges_dropped_total",
			Help: "Edges dropped for referencing missing nodes",
		}, []string{"kind"}),

		MutationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_mutations_total",
			Help: "Interactive edits, by operation and whether they changed the scene",
		}, []string{"op", "changed"}),

		CacheHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_cache_hits_total",
			Help: "Cache hits by key type",
		}, []string{"key_type"}),
		CacheMissesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_cache_misses_total",
			Help: "Cache misses by key type",
		}, []string{"key_type"}),
		CacheSetBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvasflow_cache_set_bytes",
			Help:    "Size of cache writes in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		}, []string{"key_type"}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canvasflow_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canvasflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "canvasflow_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		}),
	}
}

// Registry returns the Prometheus registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install registers m as every hook.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetSceneHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLayoutStart(context.Context, string) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, kind string, nodeCount int, d time.Duration, err error) {
	m.LayoutsTotal.WithLabelValues(kind, statusOf(err)).Inc()
	m.LayoutDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		m.LayoutNodes.WithLabelValues(kind).Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnExportStart(context.Context, []string) {}

func (m *Metrics) OnExportComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.ExportsTotal.WithLabelValues(statusOf(err)).Inc()
	m.ExportDuration.Observe(d.Seconds())
}

func (m *Metrics) OnApply(kind, policy string, added, skipped, dropped int) {
	m.AppliesTotal.WithLabelValues(kind, policy).Inc()
	m.NodesAdded.WithLabelValues(kind).Add(float64(added))
	m.NodesSkipped.WithLabelValues(kind).Add(float64(skipped))
	m.EdgesDropped.WithLabelValues(kind).Add(float64(dropped))
}

func (m *Metrics) OnMutation(op string, changed bool) {
	m.MutationsTotal.WithLabelValues(op, strconv.FormatBool(changed)).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, statusCode int, d time.Duration) {
	m.HTTPRequestsInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
