package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rdsa-hq/dataval/pkg/expectations"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// Span names.
const (
	SpanSchemaValidate = "schema.validate"
	SpanSchemaLoad     = "schema.load"
	SpanDatasetLoad    = "dataset.load"
	SpanSuiteBuild     = "suite.build"
	SpanSuiteRun       = "suite.run"
	SpanSchemaInfer    = "schema.infer"
	SpanHistoryRecord  = "history.record"
	SpanHistoryPrune   = "history.prune"
)

// Attribute keys.
const (
	AttrRunID        = attribute.Key("dataval.run_id")
	AttrSource       = attribute.Key("dataval.source")
	AttrDataAsset    = attribute.Key("dataval.data_asset")
	AttrColumns      = attribute.Key("dataval.columns")
	AttrErrors       = attribute.Key("dataval.errors")
	AttrWarnings     = attribute.Key("dataval.warnings")
	AttrDecision     = attribute.Key("dataval.decision")
	AttrRows         = attribute.Key("dataval.rows")
	AttrEvaluated    = attribute.Key("dataval.expectations.evaluated")
	AttrUnsuccessful = attribute.Key("dataval.expectations.unsuccessful")
	AttrSuccess      = attribute.Key("dataval.success")
	AttrPruned       = attribute.Key("dataval.history.pruned")
)

// SetReportAttributes records a schema validation report on span.
func SetReportAttributes(span trace.Span, report *validator.Report, decision validator.Decision) {
	if report == nil {
		return
	}
	span.SetAttributes(
		AttrSource.String(report.Source),
		AttrColumns.Int(len(report.Columns)),
		AttrErrors.Int(report.TotalErrors()),
		AttrWarnings.Int(len(report.Warnings())),
		AttrDecision.String(string(decision)),
	)
}

// SetResultAttributes records a suite run result on span. Each failed
// expectation is added as a span event.
func SetResultAttributes(span trace.Span, result *expectations.Result, rows int) {
	if result == nil {
		return
	}
	span.SetAttributes(
		AttrDataAsset.String(result.DataAsset),
		AttrRows.Int(rows),
		AttrEvaluated.Int(result.Summary.Evaluated),
		AttrUnsuccessful.Int(result.Summary.Unsuccessful),
		AttrSuccess.Bool(result.Success),
	)
	for _, r := range result.Results {
		if r.Success {
			continue
		}
		attrs := []attribute.KeyValue{
			attribute.String("expectation_type", string(r.ExpectationType)),
			attribute.String("column", r.Column),
		}
		if r.Details != nil {
			attrs = append(attrs, attribute.Int("unexpected_count", r.Details.UnexpectedCount))
		}
		span.AddEvent("expectation failed", trace.WithAttributes(attrs...))
	}
}
