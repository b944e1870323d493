// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/chartgeom/pkg/observability"
)

const namespace = "chartgeom"

// buckets for seconds resolution; chart computation is usually sub-millisecond.
var buckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}

// Hooks records pipeline, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	Computations *prometheus.CounterVec
	ComputeTime  *prometheus.HistogramVec
	Diagnostics  *prometheus.CounterVec
	Renders      *prometheus.CounterVec
	RenderTime   *prometheus.HistogramVec
	CacheOps     *prometheus.CounterVec
	CacheBytes   *prometheus.CounterVec
	Requests     *prometheus.CounterVec
	RequestTime  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computations_total",
			Help:      "Geometry computations by chart kind and outcome.",
		}, []string{"kind", "outcome"}),
		ComputeTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time taken to compute chart geometry.",
			Buckets:   buckets,
		}, []string{"kind"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Data diagnostics reported by the engines.",
		}, []string{"kind"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Artifact renders by chart kind and outcome.",
		}, []string{"kind", "outcome"}),
		RenderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time taken to render all requested formats.",
			Buckets:   buckets,
		}, []string{"kind"}),
		CacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		RequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{
		h.Computations, h.ComputeTime, h.Diagnostics, h.Renders, h.RenderTime,
		h.CacheOps, h.CacheBytes, h.Requests, h.RequestTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Install creates hooks on reg and registers them globally.
func Install(reg prometheus.Registerer) (*Hooks, error) {
	h, err := New(reg)
	if err != nil {
		return nil, err
	}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnComputeStart implements observability.PipelineHooks.
func (h *Hooks) OnComputeStart(context.Context, string) {}

// OnComputeComplete implements observability.PipelineHooks.
func (h *Hooks) OnComputeComplete(_ context.Context, kind string, _, diagnostics int, d time.Duration, err error) {
	h.Computations.WithLabelValues(kind, outcome(err)).Inc()
	h.ComputeTime.WithLabelValues(kind).Observe(d.Seconds())
	if diagnostics > 0 {
		h.Diagnostics.WithLabelValues(kind).Add(float64(diagnostics))
	}
}

// OnRenderStart implements observability.PipelineHooks.
func (h *Hooks) OnRenderStart(context.Context, string, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (h *Hooks) OnRenderComplete(_ context.Context, kind string, _ []string, d time.Duration, err error) {
	h.Renders.WithLabelValues(kind, outcome(err)).Inc()
	h.RenderTime.WithLabelValues(kind).Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheOps.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (h *Hooks) OnRequest(context.Context, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.RequestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
