package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// storeOperations counts store calls by operation and result.
	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knowgraph_store_operations_total",
		Help: "Graph store operations by operation and result",
	}, []string{"operation", "result"})

	// storeOperationDuration tracks the full load-apply-save span.
	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knowgraph_store_operation_duration_seconds",
		Help:    "Graph store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"operation"})

	// storeRecords reports the record counts seen by the latest load.
	storeRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knowgraph_store_records",
		Help: "Entities and relations in the graph at the last load",
	}, []string{"kind"})
)

// resultLabel maps an operation error to a metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isNotFound(err):
		return "not_found"
	case isMalformed(err):
		return "malformed"
	default:
		return "error"
	}
}
