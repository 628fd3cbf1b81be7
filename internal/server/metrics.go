package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matzehuels/kawaiicounter/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	created       prometheus.Counter
	increments    prometheus.Counter
	persistErrors *prometheus.CounterVec
	renders       *prometheus.CounterVec
	renderSeconds *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	requests      *prometheus.CounterVec
	rateLimited   prometheus.Counter
}

// NewMetrics creates the collectors on a private registry, including the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawaii_counters_created_total",
			Help: "Counters created",
		}),
		increments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawaii_counter_increments_total",
			Help: "Committed counter increments",
		}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawaii_snapshot_save_failures_total",
			Help: "Mutations rolled back because the snapshot could not be saved",
		}, []string{"op"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawaii_badge_renders_total",
			Help: "Badges rendered by format and layout",
		}, []string{"format", "layout", "result"}),
		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kawaii_badge_render_seconds",
			Help:    "Badge render latency",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"format"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawaii_render_cache_hits_total",
			Help: "Rasterized badges served from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawaii_render_cache_misses_total",
			Help: "Rasterized badges drawn from scratch",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawaii_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawaii_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.created, m.increments, m.persistErrors,
		m.renders, m.renderSeconds, m.cacheHits, m.cacheMisses,
		m.requests, m.rateLimited,
	)
	return m
}

// Registry returns the registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Register installs m as the global counter and render hooks.
func (m *Metrics) Register() {
	observability.SetCounterHooks(counterHooks{m})
	observability.SetRenderHooks(renderHooks{m})
}

type counterHooks struct{ m *Metrics }

func (h counterHooks) OnCreate(context.Context, string)           { h.m.created.Inc() }
func (h counterHooks) OnIncrement(context.Context, string, int64) { h.m.increments.Inc() }
func (h counterHooks) OnPersistError(_ context.Context, op string, _ error) {
	h.m.persistErrors.WithLabelValues(op).Inc()
}

type renderHooks struct{ m *Metrics }

func (h renderHooks) OnRender(_ context.Context, format, layout string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.m.renders.WithLabelValues(format, layout, result).Inc()
	h.m.renderSeconds.WithLabelValues(format).Observe(d.Seconds())
}

func (h renderHooks) OnCacheHit(context.Context)  { h.m.cacheHits.Inc() }
func (h renderHooks) OnCacheMiss(context.Context) { h.m.cacheMisses.Inc() }

var (
	_ observability.CounterHooks = counterHooks{}
	_ observability.RenderHooks  = renderHooks{}
)
