// Package metrics provides Prometheus metrics for the job materials engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Synchronizer metrics
	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobshop_sync_passes_total",
			Help: "Total number of job inventory synchronization passes",
		},
		[]string{"status"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobshop_sync_duration_seconds",
			Help:    "Time taken by one synchronization pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	LineWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobshop_job_inventory_line_writes_total",
			Help: "Job inventory line writes by outcome",
		},
		[]string{"outcome"},
	)

	StaleCompletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobshop_sync_stale_completions_total",
			Help: "Debounced sync completions discarded because a newer request was issued",
		},
	)

	// Reconciliation metrics
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobshop_reconciliations_total",
			Help: "Inventory reconciliations by direction and status",
		},
		[]string{"direction", "status"},
	)

	MutationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobshop_inventory_mutations_total",
			Help: "Inventory stock mutations applied",
		},
		[]string{"direction"},
	)

	// Quote metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobshop_quotes_total",
			Help: "Quotes calculated by result",
		},
		[]string{"result"},
	)
)

// Label values
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeFailed  = "failed"
)

// RecordSync records the outcome and duration of a synchronization pass
func RecordSync(err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	SyncPassesTotal.WithLabelValues(status).Inc()
	SyncDuration.Observe(duration.Seconds())
}

// RecordLineWrite records one job inventory line write
func RecordLineWrite(outcome string) {
	LineWritesTotal.WithLabelValues(outcome).Inc()
}

// RecordReconciliation records a status-driven reconciliation
func RecordReconciliation(direction string, mutations int, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	ReconciliationsTotal.WithLabelValues(direction, status).Inc()
	if err == nil {
		MutationsApplied.WithLabelValues(direction).Add(float64(mutations))
	}
}

// RecordQuote records whether a quote could be produced
func RecordQuote(produced bool) {
	result := "quoted"
	if !produced {
		result = "incomplete"
	}
	QuotesTotal.WithLabelValues(result).Inc()
}
