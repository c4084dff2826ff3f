package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

// LoadMetrics records document loads by outcome.
type LoadMetrics struct {
	registry *prometheus.Registry
	loads    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewLoadMetrics registers the load collectors plus Go/process collectors on a private registry.
func NewLoadMetrics() *LoadMetrics {
	registry := prometheus.NewRegistry()
	m := &LoadMetrics{
		registry: registry,
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "activity_for_you",
			Subsystem: "documents",
			Name:      "loads_total",
			Help:      "Recommendation document loads partitioned by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "activity_for_you",
			Subsystem: "documents",
			Name:      "load_duration_seconds",
			Help:      "Time spent fetching, decoding and transforming a document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	registry.MustRegister(
		m.loads,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLoad implements activity.Metrics.
func (m *LoadMetrics) ObserveLoad(outcome string, elapsed time.Duration) {
	m.loads.WithLabelValues(outcome).Inc()
	m.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *LoadMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ activity.Metrics = (*LoadMetrics)(nil)
