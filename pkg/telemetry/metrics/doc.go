// Package metrics provides Prometheus metrics for dataval.
//
// # Metrics Categories
//
//   - Validation metrics: schema validation runs, errors, diagnostics and
//     gate decisions, plus watch-mode batches
//   - Expectation metrics: suite runs, evaluated expectations by type and
//     unexpected value counts
//   - History metrics: retention pruning and failed run writes
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.ObserveSchemaValidation(report, decision, time.Since(start))
//
// Long-running commands expose the registry over HTTP with Handler. One-shot
// commands call Push, which sends the registry to a Pushgateway when
// telemetry.metrics.pushgateway_url is set.
package metrics
