package schemagen

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"

	"github.com/BurntSushi/toml"

	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schema/validator"
)

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Write renders doc as a TOML schema. The data_asset table comes first,
// then one table per column with recognized fields in canonical order
// followed by any other fields in declaration order.
func Write(w io.Writer, doc *ast.Document) error {
	var buf bytes.Buffer

	if doc.DataAsset != nil && len(doc.DataAsset.Fields) > 0 {
		fmt.Fprintf(&buf, "[%s]\n", ast.DataAssetKey)
		if err := toml.NewEncoder(&buf).Encode(doc.DataAsset.Fields); err != nil {
			return fmt.Errorf("encode %s: %w", ast.DataAssetKey, err)
		}
	}

	for _, col := range doc.Columns {
		if !col.IsTable {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "[%s]\n", tableKey(col.Name))
		for _, field := range fieldOrder(col) {
			v := col.Fields[field]
			if v == nil {
				continue
			}
			if err := toml.NewEncoder(&buf).Encode(map[string]any{field: v}); err != nil {
				return fmt.Errorf("encode %s.%s: %w", col.Name, field, err)
			}
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// tableKey quotes name unless it is a bare TOML key.
func tableKey(name string) string {
	if bareKey.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

func fieldOrder(col *ast.Column) []string {
	known := validator.FieldNames()
	order := make([]string, 0, len(col.Fields))
	for _, f := range known {
		if _, ok := col.Fields[f]; ok {
			order = append(order, f)
		}
	}
	for _, f := range col.FieldOrder {
		if !slices.Contains(known, f) {
			order = append(order, f)
		}
	}
	return order
}
