// Package telemetry groups the observability packages used by dataval.
//
// # Components
//
//   - logging: leveled slog logging with run, source and data asset context
//   - metrics: Prometheus collectors for validations, suite runs and history
//   - tracing: OpenTelemetry spans around schema, suite and history operations
//   - health: liveness, readiness and version endpoints for watch mode
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, err := logging.Install(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	ctx, span := tracer.Start(ctx, tracing.SpanSchemaValidate)
//	defer span.End()
//
//	report, err := v.RunValidation(ctx, path)
//	collector.ObserveSchemaValidation(report, report.Decision, time.Since(start))
package telemetry
