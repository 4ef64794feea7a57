// Package rules loads the rule configuration that drives schema validation.
//
// A rule configuration is a TOML document with two sections:
//
//	[required_fields]
//	fields = ["description", "data_type", "nullable"]
//
//	[datatypes.string]
//	types = ["str", "object", "StringType"]
//
// required_fields lists the fields every column must declare; datatypes
// groups the recognized data_type literals into named categories. A default
// configuration is embedded in the binary and used when no path is given.
//
// The type universe is resolved lazily: loading never fails because of a
// missing [datatypes] section, but AllTypeNames returns ErrMissingDataTypes.
// Callers that prefer to fail early call Check.
package rules
