package expectations

// Type names an expectation. The names follow the Great Expectations
// vocabulary so suites read the same to people who know that tool.
type Type string

const (
	ExpectColumnToExist             Type = "expect_column_to_exist"
	ExpectValuesNotNull             Type = "expect_column_values_to_not_be_null"
	ExpectValuesOfType              Type = "expect_column_values_to_be_of_type"
	ExpectValueLengthsBetween       Type = "expect_column_value_lengths_to_be_between"
	ExpectValueLengthsToEqual       Type = "expect_column_value_lengths_to_equal"
	ExpectValuesBetween             Type = "expect_column_values_to_be_between"
	ExpectValuesInSet               Type = "expect_column_values_to_be_in_set"
	ExpectValuesMatchRegex          Type = "expect_column_values_to_match_regex"
	ExpectValuesUnique              Type = "expect_column_values_to_be_unique"
	ExpectValuesMatchStrftimeFormat Type = "expect_column_values_to_match_strftime_format"
	ExpectValuesMatchNumberFormat   Type = "expect_column_values_to_match_number_format"
	ExpectValuesPassCustomCheck     Type = "expect_column_values_to_pass_custom_check"
)

// Expectation is one declarative check on one column.
type Expectation struct {
	Type   Type   `json:"expectation_type" yaml:"expectation_type"`
	Column string `json:"column" yaml:"column"`

	// Fields lists the schema fields the expectation was derived from.
	// Empty for the existence check.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	Kwargs map[string]any `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
}

// Suite is an ordered set of expectations for one data asset.
type Suite struct {
	Name         string        `json:"name" yaml:"name"`
	DataAsset    string        `json:"data_asset" yaml:"data_asset"`
	Expectations []Expectation `json:"expectations" yaml:"expectations"`
}

// ForColumn returns the expectations that apply to column.
func (s *Suite) ForColumn(column string) []Expectation {
	var out []Expectation
	for _, e := range s.Expectations {
		if e.Column == column {
			out = append(out, e)
		}
	}
	return out
}

// Columns returns the distinct columns the suite covers, in suite order.
func (s *Suite) Columns() []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range s.Expectations {
		if !seen[e.Column] {
			seen[e.Column] = true
			out = append(out, e.Column)
		}
	}
	return out
}

func (s *Suite) add(e Expectation) {
	s.Expectations = append(s.Expectations, e)
}
