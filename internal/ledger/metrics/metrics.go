package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the incident ledger.
type Metrics struct {
	IncidentsSubmitted   prometheus.Counter
	SubmissionsRejected  prometheus.Counter
	SubmitDurationMillis prometheus.Histogram
}

// New creates and registers the ledger metrics.
func New() *Metrics {
	return &Metrics{
		IncidentsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcf_incidents_submitted_total",
			Help: "Incidents appended to the ledger",
		}),
		SubmissionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rcf_incident_submissions_rejected_total",
			Help: "Incident submissions rejected before any state change",
		}),
		SubmitDurationMillis: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rcf_incident_submit_duration_ms",
			Help:    "Latency of incident submission in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}),
	}
}
