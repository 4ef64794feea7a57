// Package validator checks parsed schema documents against a rule
// configuration.
//
// Validation runs in two tiers. ValidateSchema makes a full pass over every
// column and returns a Report: a map from column name to error messages plus
// a list of leveled diagnostics for findings that should not block a
// pipeline. A Gate then turns the report into a go/no-go decision.
//
// Each recognized column field (description, nullable, data_type, length,
// min_value, max_value, possible_values, regex_pattern, unique, date_format,
// number_str_format, custom_check) has one validator. Validators run in that
// fixed order, only for fields that are present and not null, after a
// required-fields pass.
//
// Example:
//
//	v := validator.New(rules.Default())
//	report, err := v.RunValidation(ctx, "schema.toml")
//	var gateErr *validator.GateError
//	if errors.As(err, &gateErr) {
//	    // stop the pipeline
//	}
//
// custom_check names resolve against a checks.Registry; register project
// checks before validating and pass the registry with WithChecks.
package validator
