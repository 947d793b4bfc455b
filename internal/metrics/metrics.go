package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of DynamoDB lookups issued (by table, operation and outcome).
	StoreRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mpf_store_requests_total",
			Help: "Total number of DynamoDB requests made (by table, operation and status).",
		},
		[]string{"table", "op", "status"},
	)

	// Measures duration of DynamoDB lookups.
	StoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mpf_store_request_duration_seconds",
			Help:    "Duration of DynamoDB requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"table", "op"},
	)
)

// ObserveStoreRequestSince records one completed store lookup. err points at
// the caller's named return so deferred calls see the final outcome.
func ObserveStoreRequestSince(table, op string, start time.Time, err *error) {
	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}
	StoreRequestsTotal.WithLabelValues(table, op, status).Inc()
	StoreRequestDuration.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}
