package validator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/schema/ast"
	schemaErrors "rdsa-hq/dataval/pkg/schema/errors"
	"rdsa-hq/dataval/pkg/schema/parser"
	"rdsa-hq/dataval/pkg/schema/rules"
)

// Validator validates schema documents against a rule configuration.
// A Validator holds no per-pass state and may be reused across documents.
type Validator struct {
	rules  *rules.Config
	checks *checks.Registry
	parser *parser.Parser
	gate   Gate
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithChecks sets the registry consulted for custom_check names.
func WithChecks(reg *checks.Registry) Option {
	return func(v *Validator) {
		if reg != nil {
			v.checks = reg
		}
	}
}

// WithLogger sets the logger used by RunValidation.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithGate sets the go/no-go gate applied by RunValidation.
func WithGate(g Gate) Option {
	return func(v *Validator) {
		v.gate = g
	}
}

// WithParser sets the parser used by RunValidation.
func WithParser(p *parser.Parser) Option {
	return func(v *Validator) {
		v.parser = p
	}
}

// New creates a validator for the given rule configuration. A nil
// configuration means the embedded default. The configuration is not
// checked here; a missing [datatypes] section surfaces from ValidateSchema.
func New(cfg *rules.Config, opts ...Option) *Validator {
	if cfg == nil {
		cfg = rules.Default()
	}
	v := &Validator{
		rules:  cfg,
		checks: checks.Default(),
		parser: parser.NewParser(),
		gate:   DefaultGate(),
		logger: slog.Default().With("component", "schema-validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Rules returns the rule configuration in use.
func (v *Validator) Rules() *rules.Config {
	return v.rules
}

// Checks returns the custom check registry in use.
func (v *Validator) Checks() *checks.Registry {
	return v.checks
}

// ValidateSchema validates every column of doc and returns the report.
// The only error it returns is rules.ErrMissingDataTypes; validation
// problems are reported in the Report.
func (v *Validator) ValidateSchema(doc *ast.Document) (*Report, error) {
	typeNames, err := v.rules.AllTypeNames()
	if err != nil {
		return nil, err
	}

	diags := &Diagnostics{}
	fc := &fieldContext{
		rules:     v.rules,
		typeNames: typeNames,
		checks:    v.checks,
		diags:     diags,
	}

	report := newReport(doc.Source)
	for _, col := range doc.Columns {
		if col.Name == ast.DataAssetKey {
			continue
		}
		report.addColumn(col.Name, v.validateColumn(fc, col))
	}
	report.Diagnostics = diags.Records()

	return report, nil
}

func (v *Validator) validateColumn(fc *fieldContext, col *ast.Column) []string {
	errs := []string{}

	if !col.IsTable {
		return append(errs, fmt.Sprintf(
			"Column '%s' must be a table of validation fields, not %s.", col.Name, tomlTypeName(col.Raw)))
	}

	errs = v.checkRequired(col, errs)

	for _, field := range Fields() {
		if !col.Has(field.String()) {
			continue
		}
		// min_value and max_value share a validator; run it once.
		if field == FieldMaxValue && col.Has(FieldMinValue.String()) {
			continue
		}
		errs = fieldTable[field](fc, col, errs)
	}

	for _, name := range col.FieldOrder {
		if _, known := ParseField(name); known || slices.Contains(v.rules.RequiredFields, name) {
			continue
		}
		fc.diags.Add(Diagnostic{
			Level:      LevelWarning,
			Column:     col.Name,
			Field:      name,
			Message:    fmt.Sprintf("Column '%s': Unrecognized field '%s' ignored.", col.Name, name),
			Suggestion: schemaErrors.SuggestFieldName(name, FieldNames()),
		})
	}

	return errs
}

// checkRequired appends an error for every required field that is missing
// or null on col.
func (v *Validator) checkRequired(col *ast.Column, errs []string) []string {
	for _, field := range v.rules.RequiredFields {
		if col.Has(field) {
			continue
		}
		errs = append(errs, fmt.Sprintf("Column '%s' is missing required field '%s'.", col.Name, field))
		if _, hasValues := col.Get("possible_values"); field == FieldDataType.String() && hasValues {
			errs = append(errs, fmt.Sprintf("Column '%s' cannot have possible values without a data_type", col.Name))
		}
	}
	return errs
}

// Load parses a schema file with the validator's parser. Failures are
// logged and returned.
func (v *Validator) Load(path string) (*ast.Document, error) {
	doc, err := v.parser.Parse(path)
	if err != nil {
		v.logger.Error("failed to load schema", "path", path, "error", err)
		return nil, err
	}
	return doc, nil
}

// RunValidation loads the schema at path, validates it, logs every error
// and applies the gate. It returns the load error, rules.ErrMissingDataTypes,
// or a *GateError when the gate stops the run.
func (v *Validator) RunValidation(ctx context.Context, path string) (*Report, error) {
	ctx, span := otel.Tracer("dataval/validator").Start(ctx, "validator.run")
	defer span.End()
	span.SetAttributes(attribute.String("schema.path", path))

	doc, err := v.Load(path)
	if err != nil {
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	report, err := v.ValidateSchema(doc)
	if err != nil {
		v.logger.ErrorContext(ctx, "schema validation aborted", "path", path, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("schema.columns", len(report.Columns)),
		attribute.Int("schema.errors", report.TotalErrors()),
		attribute.Int("schema.diagnostics", len(report.Diagnostics)),
	)

	LogErrors(v.logger, report)
	LogDiagnostics(v.logger, report.Diagnostics)

	gate := v.gate
	if gate.Logger == nil {
		gate.Logger = v.logger
	}
	decision, err := gate.Decide(report)
	report.Decision = decision
	if err != nil {
		span.SetStatus(codes.Error, "no-go")
		return report, err
	}

	span.SetStatus(codes.Ok, "")
	return report, nil
}

// LogErrors logs each validation error in the report at error level.
func LogErrors(logger *slog.Logger, report *Report) {
	for _, pair := range report.Pairs() {
		logger.Error(pair.String(), "column", pair.Column)
	}
}

// tomlTypeName names the TOML type of a decoded value.
func tomlTypeName(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case bool:
		return "a boolean"
	case time.Time:
		return "a datetime"
	case []any, []map[string]any:
		return "an array"
	}
	return fmt.Sprintf("a %T", v)
}
