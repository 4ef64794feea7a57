package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rdsa-hq/dataval/pkg/config"
)

// HistoryMetrics tracks the run history store.
//
// Metrics:
//   - dataval_history_pruned_runs_total: runs deleted by retention
//   - dataval_history_last_prune_timestamp_seconds: time of the last prune
//   - dataval_history_record_errors_total: failed run writes
type HistoryMetrics struct {
	pruned       prometheus.Counter
	lastPrune    prometheus.Gauge
	recordErrors prometheus.Counter
}

// NewHistoryMetrics creates and registers history metrics.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_pruned_runs_total",
			Help:      "Total number of runs deleted by retention",
		}),
		lastPrune: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_last_prune_timestamp_seconds",
			Help:      "Unix time of the last retention pass",
		}),
		recordErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "history_record_errors_total",
			Help:      "Total number of runs that could not be recorded",
		}),
	}
	registry.MustRegister(hm.pruned, hm.lastPrune, hm.recordErrors)
	return hm
}
