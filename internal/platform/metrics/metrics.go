package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the asynchronous computation protocol across all analysis
// kinds. The ledger keeps its own submission metrics.
type Metrics struct {
	AnalysesRequested *prometheus.CounterVec
	CallbacksAccepted *prometheus.CounterVec
	CallbacksRejected *prometheus.CounterVec
	ScreeningDuration prometheus.Histogram
}

// New creates and registers the protocol metrics.
func New() *Metrics {
	return &Metrics{
		AnalysesRequested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcf_analyses_requested_total",
			Help: "Computation requests submitted to the gateway",
		}, []string{"kind"}),
		CallbacksAccepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcf_callbacks_accepted_total",
			Help: "Gateway callbacks that passed correlation and proof checks",
		}, []string{"kind"}),
		CallbacksRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rcf_callbacks_rejected_total",
			Help: "Gateway callbacks rejected before any state change",
		}, []string{"kind", "reason"}),
		ScreeningDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rcf_screening_duration_ms",
			Help:    "Latency of threshold screening over the full ledger in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
	}
}
