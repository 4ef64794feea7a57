package ast

import (
	"math"
)

// DataAssetKey is the reserved top-level key carrying data asset metadata.
// It is never treated as a column.
const DataAssetKey = "data_asset"

// NullSentinel is the string literal schema authors use to mark a field as unset.
// TOML has no null value, so "nan" plays that role.
const NullSentinel = "nan"

// Document is the parsed form of a schema file: an ordered set of column
// configurations plus optional data asset metadata.
type Document struct {
	// Source is the path the document was loaded from (or a synthetic name).
	Source string

	// Columns holds every top-level entry except data_asset, in document order.
	Columns []*Column

	// DataAsset is the optional [data_asset] table.
	DataAsset *DataAsset
}

// DataAsset describes the dataset a schema applies to.
type DataAsset struct {
	Name     string
	Fields   map[string]any
	Location Location
}

// Column is a single column configuration.
type Column struct {
	// Name is the column name as written in the schema.
	Name string

	// Fields holds the decoded TOML values keyed by field name.
	Fields map[string]any

	// FieldOrder preserves the order fields were declared in.
	FieldOrder []string

	// IsTable is false when the top-level entry was a scalar or array rather
	// than a table. Such entries cannot carry validation fields.
	IsTable bool

	// Raw is the decoded value when IsTable is false.
	Raw any

	Location Location
}

// NewColumn returns an empty table column with the given name.
func NewColumn(name string) *Column {
	return &Column{
		Name:    name,
		Fields:  make(map[string]any),
		IsTable: true,
	}
}

// Set assigns a field value, recording declaration order for new fields.
func (c *Column) Set(field string, value any) *Column {
	if c.Fields == nil {
		c.Fields = make(map[string]any)
	}
	if _, exists := c.Fields[field]; !exists {
		c.FieldOrder = append(c.FieldOrder, field)
	}
	c.Fields[field] = value
	return c
}

// Get returns the raw value of a field and whether the key is present.
func (c *Column) Get(field string) (any, bool) {
	v, ok := c.Fields[field]
	return v, ok
}

// Has reports whether a field is present and not a null sentinel.
func (c *Column) Has(field string) bool {
	v, ok := c.Fields[field]
	return ok && !IsNull(v)
}

// String returns a field as a string, or "" when absent or not a string.
func (c *Column) String(field string) string {
	if s, ok := c.Fields[field].(string); ok {
		return s
	}
	return ""
}

// DataType returns the declared data_type, or "" when unset.
func (c *Column) DataType() string {
	if !c.Has("data_type") {
		return ""
	}
	return c.String("data_type")
}

// Column looks up a column by name.
func (d *Document) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in document order.
func (d *Document) ColumnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	return names
}

// AddColumn appends a column to the document.
func (d *Document) AddColumn(c *Column) {
	d.Columns = append(d.Columns, c)
}

// AssetName returns the data_asset name, or "" when the document has none.
func (d *Document) AssetName() string {
	if d.DataAsset == nil {
		return ""
	}
	return d.DataAsset.Name
}

// IsNull reports whether v is the schema null sentinel: nil, the string
// "nan", or a floating-point NaN.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == NullSentinel
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// IsNullLike reports whether v would be read as a missing value by a data
// loader: the null sentinels plus the common textual spellings of null.
func IsNullLike(v any) bool {
	if IsNull(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return s == "None" || s == "NULL"
}
