package expectations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schema/parser"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// ErrInvalidSchema is returned by FromValidatedSchema when the schema has
// validation errors.
var ErrInvalidSchema = errors.New("schema validation failed")

// BuildSuite translates a schema document into an expectation suite. Every
// column gets an existence check, followed by one expectation per present,
// non-null field that has runtime meaning:
//
//   - nullable = false: values are not null
//   - data_type: values convert to the declared type
//   - length: value lengths equal or fall within the bounds
//   - min_value/max_value: one range expectation covering both
//   - possible_values: values are in the set
//   - regex_pattern, date_format, number_str_format: values match
//   - unique = true: values are unique
//   - custom_check: values pass the registered check
//
// assetName may be empty, in which case the document's data_asset name is used.
func BuildSuite(doc *ast.Document, assetName string) *Suite {
	if assetName == "" {
		assetName = doc.AssetName()
	}
	suite := &Suite{
		Name:      suiteName(assetName),
		DataAsset: assetName,
	}

	for _, col := range doc.Columns {
		if col.Name == ast.DataAssetKey || !col.IsTable {
			continue
		}
		suite.add(Expectation{Type: ExpectColumnToExist, Column: col.Name})
		addColumnExpectations(suite, col)
	}
	return suite
}

func addColumnExpectations(suite *Suite, col *ast.Column) {
	name := col.Name
	field := func(f validator.Field) string { return f.String() }

	if nullable, ok := col.Fields[field(validator.FieldNullable)].(bool); ok && !nullable {
		suite.add(Expectation{
			Type:   ExpectValuesNotNull,
			Column: name,
			Fields: []string{field(validator.FieldNullable)},
		})
	}

	if dt := col.DataType(); dt != "" {
		suite.add(Expectation{
			Type:   ExpectValuesOfType,
			Column: name,
			Fields: []string{field(validator.FieldDataType)},
			Kwargs: map[string]any{"type_": dt},
		})
	}

	if col.Has(field(validator.FieldLength)) {
		if bounds, ok := validator.ParseLength(col.Fields[field(validator.FieldLength)]); ok {
			e := Expectation{Column: name, Fields: []string{field(validator.FieldLength)}}
			if bounds.Exact() {
				e.Type = ExpectValueLengthsToEqual
				e.Kwargs = map[string]any{"value": bounds.Min}
			} else {
				e.Type = ExpectValueLengthsBetween
				e.Kwargs = map[string]any{"min_value": bounds.Min, "max_value": nil}
			}
			suite.add(e)
		}
	}

	hasMin, hasMax := col.Has(field(validator.FieldMinValue)), col.Has(field(validator.FieldMaxValue))
	if hasMin || hasMax {
		e := Expectation{
			Type:   ExpectValuesBetween,
			Column: name,
			Kwargs: map[string]any{"min_value": nil, "max_value": nil},
		}
		if hasMin {
			e.Fields = append(e.Fields, field(validator.FieldMinValue))
			e.Kwargs["min_value"] = col.Fields[field(validator.FieldMinValue)]
		}
		if hasMax {
			e.Fields = append(e.Fields, field(validator.FieldMaxValue))
			e.Kwargs["max_value"] = col.Fields[field(validator.FieldMaxValue)]
		}
		suite.add(e)
	}

	if set, ok := col.Fields[field(validator.FieldPossibleValues)].([]any); ok {
		suite.add(Expectation{
			Type:   ExpectValuesInSet,
			Column: name,
			Fields: []string{field(validator.FieldPossibleValues)},
			Kwargs: map[string]any{"value_set": set},
		})
	}

	stringField := func(f validator.Field, t Type, kwarg string) {
		if s, ok := col.Fields[field(f)].(string); ok && col.Has(field(f)) {
			suite.add(Expectation{
				Type:   t,
				Column: name,
				Fields: []string{field(f)},
				Kwargs: map[string]any{kwarg: s},
			})
		}
	}

	stringField(validator.FieldRegexPattern, ExpectValuesMatchRegex, "regex")

	if unique, ok := col.Fields[field(validator.FieldUnique)].(bool); ok && unique {
		suite.add(Expectation{
			Type:   ExpectValuesUnique,
			Column: name,
			Fields: []string{field(validator.FieldUnique)},
		})
	}

	stringField(validator.FieldDateFormat, ExpectValuesMatchStrftimeFormat, "strftime_format")
	stringField(validator.FieldNumberStrFormat, ExpectValuesMatchNumberFormat, "number_format")
	stringField(validator.FieldCustomCheck, ExpectValuesPassCustomCheck, "check")
}

// CreateSuiteFromTOML parses a schema file and builds its suite. When
// assetName is empty the data_asset name is used, then the file stem.
func CreateSuiteFromTOML(path, assetName string) (*Suite, error) {
	doc, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}
	return BuildSuite(doc, resolveAssetName(doc, path, assetName)), nil
}

// FromValidatedSchema loads and validates a schema with v and builds a
// suite only when the schema is free of errors. On validation failure the
// report is returned together with an error wrapping ErrInvalidSchema.
func FromValidatedSchema(ctx context.Context, path string, v *validator.Validator) (*Suite, *validator.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	doc, err := v.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load TOML schema from %s: %w", path, err)
	}

	report, err := v.ValidateSchema(doc)
	if err != nil {
		return nil, nil, err
	}
	if report.HasErrors() {
		return nil, report, fmt.Errorf("%w: %d errors in %d columns",
			ErrInvalidSchema, report.TotalErrors(), len(report.FailedColumns()))
	}

	return BuildSuite(doc, resolveAssetName(doc, path, "")), report, nil
}

func resolveAssetName(doc *ast.Document, path, assetName string) string {
	if assetName != "" {
		return assetName
	}
	if name := doc.AssetName(); name != "" {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func suiteName(assetName string) string {
	if assetName == "" {
		return "default_suite"
	}
	return assetName + "_suite"
}
