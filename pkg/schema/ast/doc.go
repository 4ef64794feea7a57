// Package ast defines the in-memory form of a TOML schema document.
//
// A Document is an ordered list of Column configurations. Column fields are
// kept as decoded TOML values (string, int64, float64, bool, time.Time,
// []any, map[string]any) so the validator can report type mistakes in the
// schema itself rather than failing at decode time.
package ast
