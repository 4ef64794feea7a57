package expectations

import (
	"fmt"
	"strings"
)

// maxPartialUnexpected caps the sample of failing values kept per result.
const maxPartialUnexpected = 20

// Result is the outcome of running a suite against a table.
type Result struct {
	Success   bool                `json:"success" yaml:"success"`
	Suite     string              `json:"suite" yaml:"suite"`
	DataAsset string              `json:"data_asset" yaml:"data_asset"`
	Table     string              `json:"table" yaml:"table"`
	Summary   Summary             `json:"summary" yaml:"summary"`
	Results   []ExpectationResult `json:"results" yaml:"results"`
}

// Summary counts evaluated expectations.
type Summary struct {
	Evaluated    int `json:"evaluated_expectations" yaml:"evaluated_expectations"`
	Successful   int `json:"successful_expectations" yaml:"successful_expectations"`
	Unsuccessful int `json:"unsuccessful_expectations" yaml:"unsuccessful_expectations"`
}

// ExpectationResult is the outcome of one expectation. Details is only set
// when the expectation failed.
type ExpectationResult struct {
	ExpectationType Type     `json:"expectation_type" yaml:"expectation_type"`
	Column          string   `json:"column" yaml:"column"`
	Success         bool     `json:"success" yaml:"success"`
	Details         *Details `json:"details,omitempty" yaml:"details,omitempty"`
}

// Details describes why an expectation failed.
type Details struct {
	ElementCount          int     `json:"element_count" yaml:"element_count"`
	MissingCount          int     `json:"missing_count" yaml:"missing_count"`
	UnexpectedCount       int     `json:"unexpected_count" yaml:"unexpected_count"`
	UnexpectedPercent     float64 `json:"unexpected_percent" yaml:"unexpected_percent"`
	PartialUnexpectedList []any   `json:"partial_unexpected_list,omitempty" yaml:"partial_unexpected_list,omitempty"`
	Error                 string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// String renders the details on one line.
func (d *Details) String() string {
	if d.Error != "" {
		return d.Error
	}
	return fmt.Sprintf("%d of %d values unexpected (%.1f%%), e.g. %v",
		d.UnexpectedCount, d.ElementCount, d.UnexpectedPercent, d.PartialUnexpectedList)
}

func (r *Result) add(er ExpectationResult) {
	r.Results = append(r.Results, er)
	r.Summary.Evaluated++
	if er.Success {
		r.Summary.Successful++
	} else {
		r.Summary.Unsuccessful++
	}
	r.Success = r.Summary.Unsuccessful == 0
}

// Failures returns the unsuccessful results grouped by column, in the order
// columns first failed.
func (r *Result) Failures() (columns []string, byColumn map[string][]ExpectationResult) {
	byColumn = make(map[string][]ExpectationResult)
	for _, er := range r.Results {
		if er.Success {
			continue
		}
		if _, seen := byColumn[er.Column]; !seen {
			columns = append(columns, er.Column)
		}
		byColumn[er.Column] = append(byColumn[er.Column], er)
	}
	return columns, byColumn
}

// Format renders a human-readable summary followed by the failures for
// each column.
func Format(r *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Validation Summary: %d of %d expectations passed (%d failed)",
		r.Summary.Successful, r.Summary.Evaluated, r.Summary.Unsuccessful)

	columns, byColumn := r.Failures()
	for _, col := range columns {
		failures := byColumn[col]
		fmt.Fprintf(&sb, "\nColumn '%s' has %d failed expectation(s):", col, len(failures))
		for _, f := range failures {
			fmt.Fprintf(&sb, "\n  - %s: %s", f.ExpectationType, f.Details)
		}
	}
	return sb.String()
}
