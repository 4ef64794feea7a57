package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/expectations"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// defaultMaxCardinality bounds the number of distinct source and data asset
// label values.
const defaultMaxCardinality = 1000

// Collector records dataval metrics in a Prometheus registry.
//
// Schema sources and data asset names are user-controlled, so their label
// values pass through a CardinalityLimiter and collapse into "other" once
// the limit is reached.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation  *ValidationMetrics
	expectation *ExpectationMetrics
	history     *HistoryMetrics

	sources *CardinalityLimiter
	assets  *CardinalityLimiter
}

// NewCollector creates a collector with the given configuration and
// registry. A nil registry gets a fresh one.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.PushJob == "" {
		cfg.PushJob = config.DefaultMetricsPushJob
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:      cfg,
		registry:    registry,
		validation:  NewValidationMetrics(cfg, registry),
		expectation: NewExpectationMetrics(cfg, registry),
		history:     NewHistoryMetrics(cfg, registry),
		sources:     NewCardinalityLimiter(defaultMaxCardinality),
		assets:      NewCardinalityLimiter(defaultMaxCardinality),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Enabled reports whether recording is active.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// ObserveSchemaValidation records one schema validation run.
func (c *Collector) ObserveSchemaValidation(report *validator.Report, decision validator.Decision, duration time.Duration) {
	if !c.Enabled() || report == nil {
		return
	}
	source := c.sources.Label(report.Source)
	c.validation.observe(source, string(decision), report, duration)
}

// ObserveExpectationRun records one suite run against a table of rows rows.
func (c *Collector) ObserveExpectationRun(result *expectations.Result, rows int, duration time.Duration) {
	if !c.Enabled() || result == nil {
		return
	}
	asset := c.assets.Label(result.DataAsset)
	c.expectation.observe(asset, result, rows, duration)
}

// ObserveLoadError records a schema or dataset that could not be loaded.
func (c *Collector) ObserveLoadError(kind string) {
	if !c.Enabled() {
		return
	}
	c.validation.loadErrors.WithLabelValues(kind).Inc()
}

// ObservePrune records a retention pass that deleted n runs.
func (c *Collector) ObservePrune(n int64) {
	if !c.Enabled() {
		return
	}
	c.history.pruned.Add(float64(n))
	c.history.lastPrune.SetToCurrentTime()
}

// ObserveRecordError records a failed history write.
func (c *Collector) ObserveRecordError() {
	if !c.Enabled() {
		return
	}
	c.history.recordErrors.Inc()
}

// ObserveWatchEvent records a debounced batch of changed files.
func (c *Collector) ObserveWatchEvent(files int) {
	if !c.Enabled() {
		return
	}
	c.validation.watchEvents.Inc()
	c.validation.watchFiles.Add(float64(files))
}

// CardinalityLimiter bounds the number of distinct values a label takes.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is admitted, admitting it when there is room.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Label returns value if admitted and "other" otherwise.
func (cl *CardinalityLimiter) Label(value string) string {
	if cl.Allow(value) {
		return value
	}
	return otherLabel
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
