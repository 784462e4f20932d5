// Package metrics exposes Prometheus collectors for the composition engine
// and the request pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the framework-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	serviceCompositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pancakes",
			Subsystem: "composer",
			Name:      "compositions_total",
			Help:      "Total number of service compositions, by cache outcome.",
		},
		[]string{"outcome"}, // hit, miss, error
	)

	compositionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pancakes",
			Subsystem: "composer",
			Name:      "composition_duration_seconds",
			Help:      "Duration of cold service compositions.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~400ms
		},
	)

	routeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pancakes",
			Subsystem: "routing",
			Name:      "lookups_total",
			Help:      "Total number of route resolutions, by cache outcome.",
		},
		[]string{"outcome"}, // hit, miss, notfound
	)

	pageCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pancakes",
			Subsystem: "pipeline",
			Name:      "page_cache_lookups_total",
			Help:      "Total number of page cache lookups, by outcome.",
		},
		[]string{"outcome"}, // hit, miss, bypass
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pancakes",
			Subsystem: "pipeline",
			Name:      "request_duration_seconds",
			Help:      "Duration of web request processing.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"app"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pancakes",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the web adapter.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	Registry.MustRegister(
		serviceCompositions,
		compositionDuration,
		routeLookups,
		pageCacheLookups,
		requestDuration,
		httpRequests,
	)
}

// Handler returns an HTTP handler exposing the framework registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveComposition records the outcome of a service composition. The
// duration is only observed for cold (miss) compositions.
func ObserveComposition(outcome string, d time.Duration) {
	serviceCompositions.WithLabelValues(outcome).Inc()
	if outcome == "miss" {
		compositionDuration.Observe(d.Seconds())
	}
}

// ObserveRouteLookup records a route resolution outcome.
func ObserveRouteLookup(outcome string) {
	routeLookups.WithLabelValues(outcome).Inc()
}

// ObservePageCache records a page cache lookup outcome.
func ObservePageCache(outcome string) {
	pageCacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the duration of one processed web request.
func ObserveRequest(app string, d time.Duration) {
	requestDuration.WithLabelValues(app).Observe(d.Seconds())
}

// ObserveHTTPRequest records one HTTP request handled by the web adapter.
func ObserveHTTPRequest(method string, status int) {
	httpRequests.WithLabelValues(method, httpStatusLabel(status)).Inc()
}

func httpStatusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
