// api/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visitcounter",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})

	VisitsCounted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "visitcounter",
		Name:      "visits_counted_total",
		Help:      "Visits successfully counted (daily counter written).",
	})

	StoreReadDegradations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "visitcounter",
		Name:      "store_read_degradations_total",
		Help:      "Counter reads that failed and were degraded to zero.",
	})

	StoreWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "visitcounter",
		Name:      "store_write_failures_total",
		Help:      "Counter upserts that failed hard.",
	})
)
