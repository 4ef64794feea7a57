package validator

import "fmt"

// Report is the result of one validation pass over a schema document.
type Report struct {
	// Source is the schema path, when known.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Columns lists every validated column in document order.
	Columns []string `json:"columns" yaml:"columns"`

	// Errors maps column name to its validation errors. Every column in
	// Columns has an entry, possibly empty.
	Errors map[string][]string `json:"errors" yaml:"errors"`

	// Diagnostics holds non-fatal findings.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Decision is set when the report has passed through a Gate.
	Decision Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
}

// ColumnError is one column/message pair.
type ColumnError struct {
	Column  string `json:"column" yaml:"column"`
	Message string `json:"message" yaml:"message"`
}

// String formats the pair as "Column '<col>': <message>".
func (e ColumnError) String() string {
	return fmt.Sprintf("Column '%s': %s", e.Column, e.Message)
}

func newReport(source string) *Report {
	return &Report{
		Source: source,
		Errors: make(map[string][]string),
	}
}

func (r *Report) addColumn(name string, errs []string) {
	r.Columns = append(r.Columns, name)
	if errs == nil {
		errs = []string{}
	}
	r.Errors[name] = errs
}

// TotalErrors returns the number of errors across all columns.
func (r *Report) TotalErrors() int {
	n := 0
	for _, errs := range r.Errors {
		n += len(errs)
	}
	return n
}

// HasErrors reports whether any column has an error.
func (r *Report) HasErrors() bool {
	return r.TotalErrors() > 0
}

// ColumnErrors returns the errors for one column.
func (r *Report) ColumnErrors(column string) []string {
	return r.Errors[column]
}

// Pairs returns every column/error pair in column order.
func (r *Report) Pairs() []ColumnError {
	var out []ColumnError
	for _, col := range r.Columns {
		for _, msg := range r.Errors[col] {
			out = append(out, ColumnError{Column: col, Message: msg})
		}
	}
	return out
}

// Warnings returns the warning-level diagnostics.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Level == LevelWarning {
			out = append(out, d)
		}
	}
	return out
}

// FailedColumns returns the columns with at least one error.
func (r *Report) FailedColumns() []string {
	var out []string
	for _, col := range r.Columns {
		if len(r.Errors[col]) > 0 {
			out = append(out, col)
		}
	}
	return out
}
