// Package tracing provides OpenTelemetry tracing for dataval runs.
//
// When telemetry.tracing.enabled is set, spans are exported over OTLP/gRPC
// to telemetry.tracing.endpoint. Otherwise New returns a Tracer that hands
// out noop spans, so callers never check whether tracing is on.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx = tracing.ExtractFromEnv(ctx)
//	ctx, span := tracer.Start(ctx, tracing.SpanSchemaValidate)
//	defer span.End()
//	tracing.SetReportAttributes(span, report, decision)
//
// ExtractFromEnv continues a trace handed down through the TRACEPARENT
// environment variable.
package tracing
