package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/expectations"
)

// ExpectationMetrics tracks expectation suite runs.
//
// Metrics:
//   - dataval_suite_runs_total: runs by data asset and success
//   - dataval_suite_run_duration_seconds: run duration
//   - dataval_expectations_total: evaluated expectations by type and success
//   - dataval_unexpected_values_total: failing values by expectation type
//   - dataval_rows_validated_total: rows checked by data asset
type ExpectationMetrics struct {
	runsTotal         *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	expectationsTotal *prometheus.CounterVec
	unexpectedTotal   *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
}

// NewExpectationMetrics creates and registers expectation metrics.
func NewExpectationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExpectationMetrics {
	em := &ExpectationMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suite_runs_total",
				Help:      "Total number of expectation suite runs",
			},
			[]string{"data_asset", "success"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suite_run_duration_seconds",
				Help:      "Duration of expectation suite runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"data_asset"},
		),
		expectationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "expectations_total",
				Help:      "Total number of evaluated expectations",
			},
			[]string{"expectation_type", "success"},
		),
		unexpectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "unexpected_values_total",
				Help:      "Total number of values that failed an expectation",
			},
			[]string{"expectation_type"},
		),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rows_validated_total",
				Help:      "Total number of rows checked against a suite",
			},
			[]string{"data_asset"},
		),
	}

	registry.MustRegister(
		em.runsTotal,
		em.duration,
		em.expectationsTotal,
		em.unexpectedTotal,
		em.rowsTotal,
	)
	return em
}

func (em *ExpectationMetrics) observe(asset string, result *expectations.Result, rows int, duration time.Duration) {
	em.runsTotal.WithLabelValues(asset, strconv.FormatBool(result.Success)).Inc()
	em.duration.WithLabelValues(asset).Observe(duration.Seconds())

	em.rowsTotal.WithLabelValues(asset).Add(float64(rows))
	for _, r := range result.Results {
		typ := string(r.ExpectationType)
		em.expectationsTotal.WithLabelValues(typ, strconv.FormatBool(r.Success)).Inc()
		if r.Details != nil {
			em.unexpectedTotal.WithLabelValues(typ).Add(float64(r.Details.UnexpectedCount))
		}
	}
}
