package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// DefaultNullTokens are the cell values read as missing.
var DefaultNullTokens = []string{"", "NA", "nan", "NaN", "None", "NULL", "null"}

// CSVOptions configures CSV loading. The zero value reads comma-separated
// input with DefaultNullTokens.
type CSVOptions struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// NullTokens overrides DefaultNullTokens when non-nil.
	NullTokens []string

	// TrimSpace trims leading and trailing spaces from each cell before the
	// null check.
	TrimSpace bool

	// Name sets Table.Name. LoadCSV defaults it to the file stem.
	Name string
}

func (o CSVOptions) nullTokens() []string {
	if o.NullTokens != nil {
		return o.NullTokens
	}
	return DefaultNullTokens
}

// ReadCSV reads a CSV document with a header row. Cells are kept as strings;
// null tokens become nil.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	columns := normalizeHeader(header)
	if dup := firstDuplicate(columns); dup != "" {
		return nil, fmt.Errorf("csv: duplicate column %q", dup)
	}

	table := NewTable(opts.Name, columns)
	nulls := opts.nullTokens()
	row := make([]any, len(columns))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		for i, cell := range rec {
			if opts.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			if slices.Contains(nulls, cell) {
				row[i] = nil
				continue
			}
			row[i] = strings.Clone(cell)
		}
		if err := table.AppendRow(row); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	return table, nil
}

// LoadCSV reads a CSV file.
func LoadCSV(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = stem(path)
	}
	table, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func normalizeHeader(h []string) []string {
	out := make([]string, len(h))
	for i, c := range h {
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
