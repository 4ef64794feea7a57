package dataset

import (
	"fmt"
	"slices"
)

// Table is an in-memory, column-oriented dataset. Missing cells are nil.
type Table struct {
	// Name identifies the table in reports, usually the source file stem.
	Name string

	// Columns lists the column names in source order.
	Columns []string

	data map[string][]any
	rows int
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns []string) *Table {
	t := &Table{
		Name:    name,
		Columns: slices.Clone(columns),
		data:    make(map[string][]any, len(columns)),
	}
	for _, c := range columns {
		t.data[c] = nil
	}
	return t
}

// AppendRow adds one row. The row must have one value per column.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row %d has %d values, want %d", t.rows+1, len(row), len(t.Columns))
	}
	for i, c := range t.Columns {
		t.data[c] = append(t.data[c], row[i])
	}
	t.rows++
	return nil
}

// Column returns the values of a column and whether it exists.
// The returned slice must not be modified.
func (t *Table) Column(name string) ([]any, bool) {
	vals, ok := t.data[name]
	return vals, ok
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Row returns row i as a map from column name to value.
func (t *Table) Row(i int) map[string]any {
	if i < 0 || i >= t.rows {
		return nil
	}
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c] = t.data[c][i]
	}
	return row
}

// IsNull reports whether a cell is missing.
func IsNull(v any) bool {
	return v == nil
}
