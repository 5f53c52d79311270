package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vocabulary backend Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vocsearch",
			Name:      "backend_requests_total",
			Help:      "Total number of vocabulary backend requests",
		},
		[]string{"vocab", "operation", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vocsearch",
			Name:      "backend_request_duration_seconds",
			Help:      "Vocabulary backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"vocab", "operation"},
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vocsearch",
			Name:      "page_cache_total",
			Help:      "Autocomplete page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend Prometheus metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(PageCacheTotal)
	backendMetricsRegistered = true
}
