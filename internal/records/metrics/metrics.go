package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records workflow outcomes and latencies per record kind.
type Metrics struct {
	// Workflow outcomes by kind, operation and outcome
	WorkflowTotal *prometheus.CounterVec

	// Workflow latency by kind and operation
	WorkflowDuration *prometheus.HistogramVec
}

// New registers the workflow metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		WorkflowTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_workflow_total",
			Help: "Total record workflow invocations by kind, operation and outcome",
		}, []string{"kind", "op", "outcome"}), // outcome: success, invalid, not_found, conflict, unavailable, error

		WorkflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "municipal_workflow_duration_seconds",
			Help:    "Duration of record workflows including validation and persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind", "op"}),
	}
}

// Observe records one completed workflow that started at start.
func (m *Metrics) Observe(kind, op, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.WorkflowTotal.WithLabelValues(kind, op, outcome).Inc()
	m.WorkflowDuration.WithLabelValues(kind, op).Observe(time.Since(start).Seconds())
}
