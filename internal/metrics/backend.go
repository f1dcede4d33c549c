package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend call Prometheus metrics, labeled by protocol version and
// operation name.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecadmin",
			Name:      "backend_requests_total",
			Help:      "Total number of vector database backend requests",
		},
		[]string{"version", "op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecadmin",
			Name:      "backend_request_duration_seconds",
			Help:      "Vector database backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"version", "op"},
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers the backend metrics. Must be called once
// from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	backendMetricsRegistered = true
}

// ObserveBackend records one backend call. Safe to call before
// RegisterBackendMetrics: unregistered metrics simply never get scraped.
func ObserveBackend(version, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	BackendRequestsTotal.WithLabelValues(version, op, status).Inc()
	BackendRequestDuration.WithLabelValues(version, op).Observe(time.Since(start).Seconds())
}
