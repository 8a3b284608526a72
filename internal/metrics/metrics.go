package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by render and upload counters.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector owns the dashboard metrics on a private registry so that several
// servers (and tests) can coexist in one process.
type Collector struct {
	reg *prometheus.Registry

	renders    *prometheus.CounterVec
	loadErrors *prometheus.CounterVec
	uploads    *prometheus.CounterVec
	feedback   prometheus.Counter
	cacheHits  prometheus.Counter
	renderTime prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabscope_render_total",
			Help: "Dashboard render passes by outcome.",
		}, []string{"outcome"}),
		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabscope_load_errors_total",
			Help: "Dataset load failures by kind.",
		}, []string{"kind"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabscope_uploads_total",
			Help: "Uploaded files by outcome.",
		}, []string{"outcome"}),
		feedback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabscope_feedback_total",
			Help: "Feedback submissions acknowledged.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabscope_cache_hits_total",
			Help: "Render passes served from the dataset cache.",
		}),
		renderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabscope_render_duration_seconds",
			Help:    "Time spent producing one dashboard page.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	c.reg.MustRegister(
		c.renders, c.loadErrors, c.uploads, c.feedback, c.cacheHits, c.renderTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveRender records one render pass.
func (c *Collector) ObserveRender(outcome string, d time.Duration) {
	c.renders.WithLabelValues(outcome).Inc()
	c.renderTime.Observe(d.Seconds())
}

// LoadError counts a failed load of the given kind.
func (c *Collector) LoadError(kind string) { c.loadErrors.WithLabelValues(kind).Inc() }

// Upload counts one upload attempt.
func (c *Collector) Upload(outcome string) { c.uploads.WithLabelValues(outcome).Inc() }

// Feedback counts one feedback submission.
func (c *Collector) Feedback() { c.feedback.Inc() }

// CacheHit counts one cache hit.
func (c *Collector) CacheHit() { c.cacheHits.Inc() }

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
