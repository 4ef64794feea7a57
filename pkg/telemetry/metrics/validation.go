package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// ValidationMetrics tracks schema validation.
//
// Metrics:
//   - dataval_schema_validations_total: runs by source and gate decision
//   - dataval_schema_validation_duration_seconds: run duration
//   - dataval_schema_errors_total: column errors by source
//   - dataval_schema_diagnostics_total: diagnostics by level
//   - dataval_schema_columns: columns in the last validated document
//   - dataval_load_errors_total: unreadable schemas or datasets by kind
//   - dataval_watch_events_total, dataval_watch_files_total: watch batches
type ValidationMetrics struct {
	validationsTotal *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec
	columns          *prometheus.GaugeVec
	loadErrors       *prometheus.CounterVec
	watchEvents      prometheus.Counter
	watchFiles       prometheus.Counter
}

// NewValidationMetrics creates and registers schema validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_validations_total",
				Help:      "Total number of schema validation runs",
			},
			[]string{"source", "decision"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_validation_duration_seconds",
				Help:      "Duration of schema validation runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"source"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_errors_total",
				Help:      "Total number of column validation errors",
			},
			[]string{"source"},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_diagnostics_total",
				Help:      "Total number of validation diagnostics",
			},
			[]string{"level"},
		),
		columns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_columns",
				Help:      "Number of columns in the last validated schema",
			},
			[]string{"source"},
		),
		loadErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "load_errors_total",
				Help:      "Total number of schemas or datasets that failed to load",
			},
			[]string{"kind"},
		),
		watchEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "watch_events_total",
				Help:      "Total number of debounced watch batches",
			},
		),
		watchFiles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "watch_files_total",
				Help:      "Total number of changed files seen in watch mode",
			},
		),
	}

	registry.MustRegister(
		vm.validationsTotal,
		vm.duration,
		vm.errorsTotal,
		vm.diagnosticsTotal,
		vm.columns,
		vm.loadErrors,
		vm.watchEvents,
		vm.watchFiles,
	)
	return vm
}

func (vm *ValidationMetrics) observe(source, decision string, report *validator.Report, duration time.Duration) {
	vm.validationsTotal.WithLabelValues(source, decision).Inc()
	vm.duration.WithLabelValues(source).Observe(duration.Seconds())
	vm.errorsTotal.WithLabelValues(source).Add(float64(report.TotalErrors()))
	vm.columns.WithLabelValues(source).Set(float64(len(report.Columns)))
	for _, d := range report.Diagnostics {
		vm.diagnosticsTotal.WithLabelValues(string(d.Level)).Inc()
	}
}
