package settlement

import "github.com/prometheus/client_golang/prometheus"

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "puntoventa",
			Subsystem: "settlement",
			Name:      "attempts_total",
			Help:      "Settlement attempts by outcome.",
		},
		[]string{"outcome"},
	)

	captureDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "puntoventa",
			Subsystem: "settlement",
			Name:      "capture_duration_seconds",
			Help:      "Latency of the payment capture step.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	invoicesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "puntoventa",
			Subsystem: "settlement",
			Name:      "invoices_issued_total",
			Help:      "Invoices successfully persisted.",
		},
	)
)

func init() {
	prometheus.MustRegister(settlementsTotal, captureDuration, invoicesIssued)
}
