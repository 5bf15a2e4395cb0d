package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkdoi_records_total",
			Help: "Total number of CSV records processed, by outcome status",
		},
		[]string{"status"},
	)

	AllocationAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulkdoi_allocation_attempts_total",
			Help: "Total number of candidate identifiers drawn by the allocator",
		},
	)

	AllocationCollisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkdoi_allocation_collisions_total",
			Help: "Candidates discarded because they were already taken",
		},
		[]string{"source"},
	)

	DataciteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkdoi_datacite_requests_total",
			Help: "Total number of DataCite API requests",
		},
		[]string{"operation", "result"},
	)

	DataciteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bulkdoi_datacite_request_duration_seconds",
			Help: "Duration of DataCite API requests in seconds",
		},
		[]string{"operation"},
	)
)

// WriteTextfile writes the current values of all registered metrics in the
// Prometheus text format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
