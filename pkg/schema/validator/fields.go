package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/numfmt"
	"rdsa-hq/dataval/pkg/schema/ast"
	schemaErrors "rdsa-hq/dataval/pkg/schema/errors"
	"rdsa-hq/dataval/pkg/schema/rules"
	"rdsa-hq/dataval/pkg/values"
)

// fieldContext is the per-pass state shared by field validators.
type fieldContext struct {
	rules     *rules.Config
	typeNames []string
	checks    *checks.Registry
	diags     *Diagnostics
}

// fieldFunc validates one field of a column and returns errs with any new
// errors appended. Field validators never panic and never return early
// errors; every problem is a message.
type fieldFunc func(fc *fieldContext, col *ast.Column, errs []string) []string

// fieldTable dispatches each recognized field to its validator.
// min_value and max_value share one validator that checks both bounds.
var fieldTable = [numFields]fieldFunc{
	FieldDescription:     validateDescription,
	FieldNullable:        validateNullable,
	FieldDataType:        validateDataType,
	FieldLength:          validateLength,
	FieldMinValue:        validateMinMax,
	FieldMaxValue:        validateMinMax,
	FieldPossibleValues:  validatePossibleValues,
	FieldRegexPattern:    validateRegexPattern,
	FieldUnique:          validateUnique,
	FieldDateFormat:      validateDateFormat,
	FieldNumberStrFormat: validateNumberStrFormat,
	FieldCustomCheck:     validateCustomCheck,
}

// typeLabel renders the declared data_type for messages.
func typeLabel(col *ast.Column) string {
	v, ok := col.Get("data_type")
	if !ok || v == nil {
		return "None"
	}
	return fmt.Sprint(v)
}

func validateDescription(fc *fieldContext, col *ast.Column, errs []string) []string {
	desc, ok := col.Fields["description"].(string)
	if !ok || strings.TrimSpace(desc) == "" {
		errs = append(errs, fmt.Sprintf("Column '%s' has an invalid description.", col.Name))
	}
	return errs
}

func validateNullable(fc *fieldContext, col *ast.Column, errs []string) []string {
	nullable, ok := col.Fields["nullable"].(bool)
	if !ok {
		return append(errs, fmt.Sprintf("Column '%s': 'nullable' must be a boolean.", col.Name))
	}
	if nullable {
		return errs
	}

	possible, _ := col.Fields["possible_values"].([]any)
	for _, v := range possible {
		if ast.IsNullLike(v) {
			return append(errs, fmt.Sprintf(
				"Column '%s' is non-nullable but 'possible_values' contains null-like values.", col.Name))
		}
	}
	return errs
}

func validateDataType(fc *fieldContext, col *ast.Column, errs []string) []string {
	raw := col.Fields["data_type"]
	dataType, isString := raw.(string)
	if isString && strings.TrimSpace(dataType) == "" {
		return append(errs, fmt.Sprintf("Column '%s' is missing a data_type.", col.Name))
	}

	if !isString || !slices.Contains(fc.typeNames, dataType) {
		errs = append(errs, fmt.Sprintf("%v in column '%s' is not a valid data type", raw, col.Name))
		if isString {
			if s := schemaErrors.SuggestDataType(dataType, fc.typeNames); s != "" {
				fc.diags.Add(Diagnostic{
					Level:      LevelInfo,
					Column:     col.Name,
					Field:      FieldDataType.String(),
					Message:    fmt.Sprintf("Column '%s': unrecognized data_type '%s'.", col.Name, dataType),
					Suggestion: s,
				})
			}
		}
		return errs
	}

	if dataType == rules.CategoryCategory && !col.Has("possible_values") {
		errs = append(errs, fmt.Sprintf("'%s' must have 'possible_values' if data_type is 'category'.", col.Name))
	}
	return errs
}

func validateLength(fc *fieldContext, col *ast.Column, errs []string) []string {
	raw := col.Fields["length"]
	bounds, ok := ParseLength(raw)
	if !ok {
		fc.diags.Warn(col.Name, FieldLength, fmt.Sprintf(
			"Column '%s': Invalid length value '%v'; the length constraint is ignored.", col.Name, raw))
		return errs
	}

	if !fc.rules.IsString(col.DataType()) && bounds != (LengthBounds{}) {
		errs = append(errs, fmt.Sprintf(
			"Column '%s' is not a string type, it is a %s. 'length' is not applicable.", col.Name, typeLabel(col)))
	}
	return errs
}

func validateMinMax(fc *fieldContext, col *ast.Column, errs []string) []string {
	dataType := col.DataType()
	minVal, hasMin := col.Fields["min_value"]
	maxVal, hasMax := col.Fields["max_value"]
	hasMin = hasMin && !ast.IsNull(minVal)
	hasMax = hasMax && !ast.IsNull(maxVal)

	switch {
	case fc.rules.IsNumeric(dataType):
		if hasMin && !values.IsNumber(minVal) {
			errs = append(errs, fmt.Sprintf(
				"Column '%s' min_value must be a number for data_type '%s'.", col.Name, dataType))
		}
		if hasMax && !values.IsNumber(maxVal) {
			errs = append(errs, fmt.Sprintf(
				"Column '%s' max_value must be a number for data_type '%s'.", col.Name, dataType))
		}
		if hasMin && hasMax && values.IsNumber(minVal) && values.IsNumber(maxVal) {
			if c, _ := values.Compare(minVal, maxVal); c > 0 {
				errs = append(errs, fmt.Sprintf(
					"Column '%s' min_value cannot be greater than max_value for data_type: %s", col.Name, dataType))
			}
		}

	case fc.rules.IsDatetime(dataType):
		minTime, minErr := values.Time(minVal)
		maxTime, maxErr := values.Time(maxVal)
		if hasMin && minErr != nil {
			errs = append(errs, fmt.Sprintf(
				"Error comparing datetime values for column '%s': min_value %v: %v", col.Name, minVal, minErr))
		}
		if hasMax && maxErr != nil {
			errs = append(errs, fmt.Sprintf(
				"Error comparing datetime values for column '%s': max_value %v: %v", col.Name, maxVal, maxErr))
		}
		if hasMin && hasMax && minErr == nil && maxErr == nil && minTime.After(maxTime) {
			errs = append(errs, fmt.Sprintf(
				"Column '%s' min_value cannot be greater than max_value for data_type: %s", col.Name, dataType))
		}

	default:
		fc.diags.Warn(col.Name, FieldMinValue, fmt.Sprintf(
			"Column '%s': 'min_value'/'max_value' are only checked for numeric and datetime types, not '%s'.",
			col.Name, typeLabel(col)))
	}

	return errs
}

// valueKind is the Go shape a possible value must have for a data_type.
type valueKind int

const (
	kindUnchecked valueKind = iota
	kindAny
	kindInt
	kindFloat
	kindString
	kindBool
)

var possibleValueKinds = map[string]valueKind{
	"int":         kindInt,
	"int64":       kindInt,
	"int32":       kindInt,
	"int16":       kindInt,
	"int8":        kindInt,
	"IntegerType": kindInt,
	"float":       kindFloat,
	"float64":     kindFloat,
	"float32":     kindFloat,
	"FloatType":   kindFloat,
	"DoubleType":  kindFloat,
	"str":         kindString,
	"StringType":  kindString,
	"bool":        kindBool,
	"bool_":       kindBool,
	"BooleanType": kindBool,
	"object":      kindAny,
	"category":    kindAny,
}

func (k valueKind) matches(v any) bool {
	switch k {
	case kindInt:
		return values.IsInteger(v)
	case kindFloat:
		_, ok := v.(float64)
		return ok
	case kindString:
		_, ok := v.(string)
		return ok
	case kindBool:
		_, ok := v.(bool)
		return ok
	}
	return true
}

func validatePossibleValues(fc *fieldContext, col *ast.Column, errs []string) []string {
	possible, ok := col.Fields["possible_values"].([]any)
	if !ok {
		return append(errs, fmt.Sprintf("Column '%s': 'possible_values' must be a list.", col.Name))
	}

	dataType := col.DataType()
	if dataType != rules.CategoryCategory {
		fc.diags.Warn(col.Name, FieldPossibleValues, fmt.Sprintf(
			"Column '%s': Using 'possible_values' with data_type '%s' might not be memory-efficient. Consider using 'category' data_type.",
			col.Name, typeLabel(col)))
	}

	if dataType == "" {
		return errs
	}
	kind := possibleValueKinds[dataType]
	if kind == kindUnchecked {
		return errs
	}

	for _, v := range possible {
		// Float NaN is left to the nullable check and fails the type check.
		if v == nil || v == ast.NullSentinel {
			continue
		}
		if !kind.matches(v) {
			errs = append(errs, fmt.Sprintf(
				"Column '%s': Value '%v' in 'possible_values' is not of type '%s'.", col.Name, v, dataType))
		}
	}
	return errs
}

func validateRegexPattern(fc *fieldContext, col *ast.Column, errs []string) []string {
	raw := col.Fields["regex_pattern"]
	pattern, ok := raw.(string)
	if !ok {
		errs = append(errs, fmt.Sprintf("Column '%s': Invalid regex pattern '%v'.", col.Name, raw))
	} else if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
		errs = append(errs, fmt.Sprintf("Column '%s': Invalid regex pattern '%s'.", col.Name, pattern))
	}

	if !fc.rules.IsString(col.DataType()) {
		errs = append(errs, fmt.Sprintf(
			"Column '%s': 'regex_pattern' can only be applied to string type columns.", col.Name))
	}
	return errs
}

func validateUnique(fc *fieldContext, col *ast.Column, errs []string) []string {
	if _, ok := col.Fields["unique"].(bool); !ok {
		errs = append(errs, fmt.Sprintf("Column '%s': 'unique' must be a boolean.", col.Name))
	}
	return errs
}

func validateDateFormat(fc *fieldContext, col *ast.Column, errs []string) []string {
	if !fc.rules.IsDatetime(col.DataType()) {
		return append(errs, fmt.Sprintf(
			"Column '%s': 'date_format' can only be used with datetime types, not '%s'.", col.Name, typeLabel(col)))
	}

	raw := col.Fields["date_format"]
	format, ok := raw.(string)
	if !ok || ValidateDateFormat(format) != nil {
		errs = append(errs, fmt.Sprintf("Column '%s': Invalid date format '%v'.", col.Name, raw))
	}
	return errs
}

func validateNumberStrFormat(fc *fieldContext, col *ast.Column, errs []string) []string {
	dataType := col.DataType()
	if !fc.rules.IsNumeric(dataType) {
		return append(errs, fmt.Sprintf(
			"Column '%s': 'number_str_format' can only be used with numeric types, not '%s'.", col.Name, typeLabel(col)))
	}

	raw := col.Fields["number_str_format"]
	format, ok := raw.(string)
	if !ok {
		return append(errs, fmt.Sprintf(
			"Column '%s': Invalid number format '%v' - not a string", col.Name, raw))
	}

	var sample any = int64(1234)
	if possibleValueKinds[dataType] == kindFloat {
		sample = 1234.56
	}
	if _, err := numfmt.Apply(format, sample); err != nil {
		errs = append(errs, fmt.Sprintf("Column '%s': Invalid number format '%s' - %v", col.Name, format, err))
	}
	return errs
}

func validateCustomCheck(fc *fieldContext, col *ast.Column, errs []string) []string {
	raw := col.Fields["custom_check"]
	name, ok := raw.(string)
	if !ok {
		return append(errs, fmt.Sprintf(
			"Column '%s': 'custom_check' must be the name of a registered check.", col.Name))
	}

	if _, found := fc.checks.Lookup(name); !found {
		errs = append(errs, fmt.Sprintf(
			"Column '%s': '%s' is not a registered custom check.", col.Name, name))
		if s := schemaErrors.SuggestFieldName(name, fc.checks.Names()); s != "" {
			fc.diags.Add(Diagnostic{
				Level:      LevelInfo,
				Column:     col.Name,
				Field:      FieldCustomCheck.String(),
				Message:    fmt.Sprintf("Column '%s': unknown custom check '%s'.", col.Name, name),
				Suggestion: s,
			})
		}
	}
	return errs
}
