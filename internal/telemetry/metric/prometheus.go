package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "confhelper"

// Build results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	BuildsTotal   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	Contexts      prometheus.Gauge
	ReloadsTotal  *prometheus.CounterVec
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Configuration builds by result.",
		}, []string{"result"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent exporting, expanding and validating the configuration.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		Contexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contexts",
			Help:      "Registered configuration contexts, sentinels included.",
		}),
		ReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Configuration file reloads by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.BuildsTotal,
		r.BuildDuration,
		r.Contexts,
		r.ReloadsTotal,
	)
	return r
}

var (
	global     *Registry
	globalOnce sync.Once
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// ObserveBuild records one build and its duration in seconds.
func (r *Registry) ObserveBuild(result string, seconds float64) {
	r.BuildsTotal.WithLabelValues(result).Inc()
	r.BuildDuration.Observe(seconds)
}

// SetContexts records the current context count.
func (r *Registry) SetContexts(n int) {
	r.Contexts.Set(float64(n))
}

// RecordReload records one watcher-triggered reload.
func (r *Registry) RecordReload(result string) {
	r.ReloadsTotal.WithLabelValues(result).Inc()
}

// Gatherer exposes the underlying registry, mostly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
