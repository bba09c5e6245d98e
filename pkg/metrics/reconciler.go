package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcilerMetrics records payment reconciliation outcomes per entry path.
type ReconcilerMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewReconcilerMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcilerMetrics(reg prometheus.Registerer) *ReconcilerMetrics {
	if reg == nil {
		return &ReconcilerMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconcile_total",
		Help: "Payment reconciliation results, by entry path and outcome.",
	}, []string{"path", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_reconcile_duration_seconds",
		Help:    "Duration of payment reconciliation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	reg.MustRegister(outcomes, duration)
	return &ReconcilerMetrics{
		outcomes: outcomes,
		duration: duration,
	}
}

// IncOutcome increments the counter for the given entry path and outcome.
func (m *ReconcilerMetrics) IncOutcome(path, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(path), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long a reconciliation took for the given entry path.
func (m *ReconcilerMetrics) ObserveDuration(path string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(path)).Observe(duration.Seconds())
}
