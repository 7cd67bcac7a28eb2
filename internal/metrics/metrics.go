// Package metrics holds the Prometheus collectors for outbound API calls and
// cache lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheClears prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liturgical_api_requests_total",
			Help: "Outbound calendar API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "liturgical_api_request_duration_seconds",
			Help:    "Latency of outbound calendar API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liturgical_cache_hits_total",
			Help: "Cache lookups answered from the store.",
		}, []string{"endpoint"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "liturgical_cache_misses_total",
			Help: "Cache lookups that required an API request.",
		}, []string{"endpoint"}),
		cacheClears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liturgical_cache_clears_total",
			Help: "Bulk cache invalidations.",
		}),
	}

	registry.MustRegister(
		m.apiRequests,
		m.apiDuration,
		m.cacheHits,
		m.cacheMisses,
		m.cacheClears,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveAPI records one outbound request. outcome is "ok" or an error kind.
func (m *Metrics) ObserveAPI(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordCache records a cache lookup result.
func (m *Metrics) RecordCache(endpoint string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(endpoint).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(endpoint).Inc()
}

// RecordClear counts a bulk invalidation.
func (m *Metrics) RecordClear() {
	if m == nil {
		return
	}
	m.cacheClears.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
