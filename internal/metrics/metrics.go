// Package metrics exposes Prometheus collectors for the outbound calls made
// to Firebase and for the expense list.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramRemoteCall = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "remote",
		Name:      "call_duration_seconds",
		Help:      "Latency of calls to the identity provider and the realtime database.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	},
	[]string{"service", "operation", "failed"},
)

var counterStaleResults = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "expense_tracker",
		Subsystem: "expenses",
		Name:      "stale_results_total",
		Help:      "Remote results discarded because the requesting view had gone away.",
	},
	[]string{"operation"},
)

// ObserveRemote records one outbound call.
func ObserveRemote(service, operation string, elapsed time.Duration, failed bool) {
	histogramRemoteCall.
		WithLabelValues(service, operation, strconv.FormatBool(failed)).
		Observe(elapsed.Seconds())
}

// StaleResult counts a remote result that arrived after its view was cancelled.
func StaleResult(operation string) {
	counterStaleResults.WithLabelValues(operation).Inc()
}
