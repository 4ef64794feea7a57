// Package schema parses and validates TOML schema documents.
//
// A schema document describes the columns of one data asset. Each top-level
// table is a column; the reserved [data_asset] table carries asset metadata.
//
//	[data_asset]
//	name = "survey_results"
//
//	[period]
//	description = "Reporting period as YYYYMM"
//	data_type = "int64"
//	nullable = false
//	min_value = 200001
//	max_value = 209912
//
// TOML has no null, so the string "nan" marks a field as unset.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: parsed document and column types
// - parser: TOML decoding and key location tracking
// - rules: the rule configuration (required fields, data type universe)
// - validator: per-field validators, reports, diagnostics and the go/no-go gate
// - errors: error types with location, context and suggestions
//
// # Basic Usage
//
//	doc, report, err := schema.ParseAndValidate("schemas/survey.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, pair := range report.Pairs() {
//	    fmt.Println(pair)
//	}
//
// Pipelines that must stop on a bad schema use validator.RunValidation,
// which applies the gate and returns a *validator.GateError.
package schema
