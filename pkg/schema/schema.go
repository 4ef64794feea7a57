package schema

import (
	"log/slog"

	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schema/parser"
	"rdsa-hq/dataval/pkg/schema/rules"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// LoadSchema parses a schema file. Failures are logged and nil is returned,
// so callers must check the result.
func LoadSchema(path string, logger *slog.Logger) *ast.Document {
	if logger == nil {
		logger = slog.Default()
	}
	doc, err := parser.NewParser().Parse(path)
	if err != nil {
		logger.Error("failed to load schema", "path", path, "error", err)
		return nil
	}
	return doc
}

// Parse parses a schema file without validation.
func Parse(path string) (*ast.Document, error) {
	return parser.NewParser().Parse(path)
}

// Validate validates a parsed schema against the default rules.
func Validate(doc *ast.Document) (*validator.Report, error) {
	return validator.New(rules.Default()).ValidateSchema(doc)
}

// ParseAndValidate is a convenience function that parses a schema file and
// validates it against the default rules. The report is returned even when
// it contains errors; err is only set for load failures.
func ParseAndValidate(path string) (*ast.Document, *validator.Report, error) {
	doc, err := Parse(path)
	if err != nil {
		return nil, nil, err
	}
	report, err := Validate(doc)
	if err != nil {
		return doc, nil, err
	}
	return doc, report, nil
}

// ParseAndValidateBytes is ParseAndValidate for in-memory TOML.
func ParseAndValidateBytes(data []byte, sourcePath string) (*ast.Document, *validator.Report, error) {
	doc, err := parser.NewParser().ParseBytes(data, sourcePath)
	if err != nil {
		return nil, nil, err
	}
	report, err := Validate(doc)
	if err != nil {
		return doc, nil, err
	}
	return doc, report, nil
}
