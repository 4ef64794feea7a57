package validator

// Field identifies a recognized column validation field.
// The set is closed; the validator table is indexed by Field.
type Field int

const (
	FieldDescription Field = iota
	FieldNullable
	FieldDataType
	FieldLength
	FieldMinValue
	FieldMaxValue
	FieldPossibleValues
	FieldRegexPattern
	FieldUnique
	FieldDateFormat
	FieldNumberStrFormat
	FieldCustomCheck

	numFields
)

var fieldNames = [numFields]string{
	FieldDescription:     "description",
	FieldNullable:        "nullable",
	FieldDataType:        "data_type",
	FieldLength:          "length",
	FieldMinValue:        "min_value",
	FieldMaxValue:        "max_value",
	FieldPossibleValues:  "possible_values",
	FieldRegexPattern:    "regex_pattern",
	FieldUnique:          "unique",
	FieldDateFormat:      "date_format",
	FieldNumberStrFormat: "number_str_format",
	FieldCustomCheck:     "custom_check",
}

// String returns the schema key for the field.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields returns every recognized field in canonical validation order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// FieldNames returns the schema keys of every recognized field, in
// canonical validation order.
func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}

// ParseField maps a schema key to its Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}
