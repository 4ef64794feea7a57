package schemagen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/itchyny/timefmt-go"

	"rdsa-hq/dataval/pkg/dataset"
	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/values"
)

// Inferred data_type literals.
const (
	TypeInt      = "int64"
	TypeFloat    = "float64"
	TypeBool     = "bool"
	TypeDatetime = "datetime64[ns]"
	TypeCategory = "category"
	TypeString   = "str"
)

// DefaultMaxCategories is the distinct-value limit below which a text column
// is inferred as a category.
const DefaultMaxCategories = 30

// DefaultDateFormats are the candidate formats tried, in order, on text and
// integer columns.
var DefaultDateFormats = defaultDateFormats()

func defaultDateFormats() []string {
	monthYear := []string{"%Y%m", "%m%Y", "%Y-%m", "%m-%Y", "%Y/%m", "%m/%Y"}
	dates := []string{"%Y-%m-%d", "%d-%m-%Y", "%m-%d-%Y", "%Y/%m/%d", "%d/%m/%Y", "%m/%d/%Y", "%Y%m%d", "%d%m%Y"}
	times := []string{"%H:%M:%S", "%H:%M"}

	out := slices.Concat(monthYear, dates)
	for _, d := range dates {
		for _, t := range times {
			out = append(out, d+" "+t, d+"T"+t)
		}
	}
	return out
}

// minIntegerDateLen guards integer columns such as counts from being read
// as months or years.
const minIntegerDateLen = 6

// Options configures inference.
type Options struct {
	// MaxCategories defaults to DefaultMaxCategories.
	MaxCategories int

	// DateFormats defaults to DefaultDateFormats.
	DateFormats []string
}

func (o Options) withDefaults() Options {
	if o.MaxCategories <= 0 {
		o.MaxCategories = DefaultMaxCategories
	}
	if len(o.DateFormats) == 0 {
		o.DateFormats = DefaultDateFormats
	}
	return o
}

// Infer builds a schema document describing table. Every column gets a
// placeholder description, a data_type and nullable; numeric columns get
// observed bounds, datetime columns a date_format and categories their
// possible_values.
func Infer(table *dataset.Table, opts Options) *ast.Document {
	opts = opts.withDefaults()

	doc := &ast.Document{Source: table.Name}
	if table.Name != "" {
		doc.DataAsset = &ast.DataAsset{Name: table.Name, Fields: map[string]any{"name": table.Name}}
	}

	for _, name := range table.Columns {
		vals, _ := table.Column(name)
		doc.AddColumn(inferColumn(name, vals, opts))
	}
	return doc
}

func inferColumn(name string, vals []any, opts Options) *ast.Column {
	col := ast.NewColumn(name)
	col.Set("description", fmt.Sprintf("%s (inferred)", name))

	var present []any
	for _, v := range vals {
		if !dataset.IsNull(v) {
			present = append(present, v)
		}
	}
	nullable := len(present) < len(vals)

	switch {
	case len(present) == 0:
		col.Set("data_type", TypeString)
		col.Set("nullable", nullable)

	case !hasLeadingZero(present) && allNumeric(present):
		inferNumeric(col, present, nullable, opts)

	default:
		inferText(col, present, nullable, opts)
	}
	return col
}

func inferNumeric(col *ast.Column, present []any, nullable bool, opts Options) {
	ints, isInt := asInts(present)
	if !isInt {
		lo, hi := floatRange(present)
		col.Set("data_type", TypeFloat).Set("nullable", nullable).Set("min_value", lo).Set("max_value", hi)
		return
	}

	if format := dateFormat(present, opts.DateFormats, minIntegerDateLen); format != "" {
		col.Set("data_type", TypeDatetime).Set("nullable", nullable).Set("date_format", format)
		return
	}

	// Fixed-width codes without zeros are identifiers, not quantities.
	if width := sameWidth(present); width > 3 && !slices.Contains(ints, 0) {
		col.Set("data_type", TypeString).Set("nullable", nullable).Set("length", int64(width))
		return
	}

	col.Set("data_type", TypeInt).Set("nullable", nullable).
		Set("min_value", slices.Min(ints)).
		Set("max_value", slices.Max(ints))
}

func inferText(col *ast.Column, present []any, nullable bool, opts Options) {
	if format := dateFormat(present, opts.DateFormats, 0); format != "" {
		col.Set("data_type", TypeDatetime).Set("nullable", nullable).Set("date_format", format)
		return
	}

	if allBool(present) {
		col.Set("data_type", TypeBool).Set("nullable", nullable)
		return
	}

	distinct := distinctStrings(present)
	if len(distinct) < opts.MaxCategories {
		set := make([]any, len(distinct))
		for i, s := range distinct {
			set[i] = s
		}
		col.Set("data_type", TypeCategory).Set("nullable", nullable).Set("possible_values", set)
		return
	}

	col.Set("data_type", TypeString).Set("nullable", nullable)
}

// hasLeadingZero reports whether any value looks like a zero-padded code
// such as "002". A lone "0" and decimals like "0.5" do not count.
func hasLeadingZero(present []any) bool {
	for _, v := range present {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if len(s) > 1 && s[0] == '0' && s[1] != '.' {
			return true
		}
	}
	return false
}

func allNumeric(present []any) bool {
	for _, v := range present {
		if _, ok := values.Float(v); !ok {
			return false
		}
	}
	return true
}

func asInts(present []any) ([]int64, bool) {
	out := make([]int64, 0, len(present))
	for _, v := range present {
		n, ok := values.Int(v)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func floatRange(present []any) (float64, float64) {
	lo, _ := values.Float(present[0])
	hi := lo
	for _, v := range present[1:] {
		f, _ := values.Float(v)
		lo, hi = min(lo, f), max(hi, f)
	}
	return lo, hi
}

func allBool(present []any) bool {
	for _, v := range present {
		if _, ok := v.(bool); ok {
			continue
		}
		switch strings.ToLower(values.String(v)) {
		case "true", "false":
		default:
			return false
		}
	}
	return true
}

func sameWidth(present []any) int {
	width := len(values.String(present[0]))
	for _, v := range present[1:] {
		if len(values.String(v)) != width {
			return 0
		}
	}
	return width
}

// dateFormat returns the first candidate format every value round-trips
// through, or "".
func dateFormat(present []any, formats []string, minLen int) string {
	first := values.String(present[0])
	if len(first) < minLen {
		return ""
	}
	for _, format := range formats {
		if roundTrips(first, format) && allRoundTrip(present[1:], format) {
			return format
		}
	}
	return ""
}

func allRoundTrip(present []any, format string) bool {
	for _, v := range present {
		if !roundTrips(values.String(v), format) {
			return false
		}
	}
	return true
}

func roundTrips(s, format string) bool {
	t, err := timefmt.Parse(s, format)
	return err == nil && timefmt.Format(t, format) == s
}

// distinctStrings returns the distinct textual values in first-seen order.
func distinctStrings(present []any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range present {
		s := values.String(v)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
