// Package metrics holds Prometheus instruments for the reconciliation
// workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all reconciliation metrics.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Decisions   *prometheus.CounterVec
	Conflicts   prometheus.Counter
	DecideTime  prometheus.Histogram
}

// New creates and registers all reconciliation metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizdir_reconcile_submissions_total",
			Help: "Ownership requests submitted, by kind.",
		}, []string{"kind"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizdir_reconcile_decisions_total",
			Help: "Ownership requests decided, by kind and decision.",
		}, []string{"kind", "decision"}),
		Conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizdir_reconcile_conflicts_total",
			Help: "Approvals refused because the business was already owned.",
		}),
		DecideTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizdir_reconcile_decide_duration_seconds",
			Help:    "Latency of decision operations.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordSubmission counts one accepted submission.
func (m *Metrics) RecordSubmission(kind string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind).Inc()
}

// RecordDecision counts one finalized decision.
func (m *Metrics) RecordDecision(kind, decision string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(kind, decision).Inc()
}

// RecordConflict counts one approve refused by an ownership conflict.
func (m *Metrics) RecordConflict() {
	if m == nil {
		return
	}
	m.Conflicts.Inc()
}

// ObserveDecide records decision latency in seconds.
func (m *Metrics) ObserveDecide(seconds float64) {
	if m == nil {
		return
	}
	m.DecideTime.Observe(seconds)
}
