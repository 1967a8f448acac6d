package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000,
	}

	// RequestTotal counts every request by method, status and admission
	// outcome (admitted, rejected_429, rejected_401, served_from_cache, skipped).
	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastship_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"method", "status", "outcome"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fastship_request_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method"},
	)

	// CacheEventTotal counts response-cache activity: hit, miss, populate,
	// invalidate.
	CacheEventTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastship_cache_events_total",
			Help: "Response cache events",
		},
		[]string{"event"},
	)

	// StoreDegradedTotal counts fail-open (or fail-closed) outcomes caused by
	// store failures, per pipeline component.
	StoreDegradedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastship_store_degraded_total",
			Help: "Store failures absorbed by pipeline components",
		},
		[]string{"component"},
	)

	RateLimitRejectedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fastship_rate_limit_rejected_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route_class"},
	)
)

// Handler serves the private registry; mounted on the metrics port only.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
