package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grocery_search"

// Search outcomes
const (
	OutcomeOK          = "ok"
	OutcomeEmptyFilter = "empty_filter"
	OutcomeError       = "error"
)

var (
	// SearchesTotal counts searches by outcome.
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of product searches by outcome",
		},
		[]string{"outcome"},
	)

	// QuantityExtractedTotal counts queries that carried a quantity token.
	QuantityExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_extracted_total",
			Help:      "Queries with an extracted quantity, by kind",
		},
		[]string{"kind"},
	)

	// StoreDuration observes document store latency per operation.
	StoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_duration_seconds",
			Help:      "Document store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registerOnce sync.Once
)

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			SearchesTotal,
			QuantityExtractedTotal,
			StoreDuration,
		)
	})
}
