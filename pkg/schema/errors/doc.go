// Package errors provides rich error types for schema loading and validation.
//
// Errors carry a category (syntax, structural, io, rule), the source
// location, a few lines of surrounding context, and an optional suggestion
// such as "Did you mean 'nullable'?" computed from Levenshtein distance.
//
// Multiple problems are accumulated in an ErrorList so a single pass can
// surface every issue in a schema file.
package errors
