package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface with Prometheus metrics.
type PrometheusHooks struct {
	rewriteTotal    *prometheus.CounterVec
	rewriteDuration *prometheus.HistogramVec
	busyTotal       *prometheus.CounterVec
	drawElements    *prometheus.HistogramVec
	taskTotal       *prometheus.CounterVec

	cacheTotal *prometheus.CounterVec
	cacheBytes prometheus.Histogram

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	notifyTotal *prometheus.CounterVec

	stageDuration *prometheus.HistogramVec
}

// NewPrometheusHooks registers the metrics with reg and returns the hooks.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &PrometheusHooks{
		rewriteTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_rewrite_total",
			Help: "Structural rewrites and toggles by operation and result",
		}, []string{"op", "result"}),
		rewriteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prooftower_rewrite_duration_seconds",
			Help:    "Time to rebuild and lay out a view after an operation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"op"}),
		busyTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_busy_dropped_total",
			Help: "Operations dropped while a transition was in flight",
		}, []string{"op"}),
		drawElements: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prooftower_draw_nodes",
			Help:    "Nodes per frame by transition phase",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"phase"}),
		taskTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_model_task_total",
			Help: "Counterexample model tasks by name and result",
		}, []string{"task", "result"}),
		cacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_cache_total",
			Help: "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prooftower_cache_set_bytes",
			Help:    "Size of cached values",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prooftower_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notifyTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prooftower_notify_total",
			Help: "Push notifications by kind and result",
		}, []string{"kind", "result"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prooftower_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"stage", "result"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnRewrite(_ context.Context, op string, applied bool, d time.Duration) {
	res := "applied"
	if !applied {
		res = "noop"
	}
	p.rewriteTotal.WithLabelValues(op, res).Inc()
	if applied {
		p.rewriteDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (p *PrometheusHooks) OnBusy(_ context.Context, op string) {
	p.busyTotal.WithLabelValues(op).Inc()
}

func (p *PrometheusHooks) OnDraw(_ context.Context, entering, updating, exiting int) {
	p.drawElements.WithLabelValues("enter").Observe(float64(entering))
	p.drawElements.WithLabelValues("update").Observe(float64(updating))
	p.drawElements.WithLabelValues("exit").Observe(float64(exiting))
}

func (p *PrometheusHooks) OnTask(_ context.Context, task string, err error) {
	p.taskTotal.WithLabelValues(task, result(err)).Inc()
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Observe(float64(size))
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnNotify(_ context.Context, kind string, err error) {
	p.notifyTotal.WithLabelValues(kind, result(err)).Inc()
}

func (p *PrometheusHooks) OnLoadStart(context.Context, string, string) {}

func (p *PrometheusHooks) OnLoadComplete(_ context.Context, _ string, _ string, _ int, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("load", result(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("layout", result(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (p *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues("render", result(err)).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ ViewHooks     = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
	_ NotifyHooks   = (*PrometheusHooks)(nil)
)
