package parser

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"rdsa-hq/dataval/pkg/schema/ast"
	schemaErrors "rdsa-hq/dataval/pkg/schema/errors"
)

// Parser parses TOML schema files into Documents.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
	allowEmpty  bool  // Accept documents without any column
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithAllowEmpty makes documents with no columns parse successfully.
func (p *Parser) WithAllowEmpty(allow bool) *Parser {
	p.allowEmpty = allow
	return p
}

// Parse parses a schema file at the given path.
// It returns an error if the file cannot be read, has invalid TOML syntax,
// or contains no columns.
func (p *Parser) Parse(path string) (*ast.Document, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
			Err:      err,
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
			Err:      err,
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses schema TOML from a byte slice.
// This is useful for testing or parsing schemas held in memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Document, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	raw := make(map[string]any)
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		loc := ast.Location{File: sourcePath, Line: 1}
		var perr toml.ParseError
		if errors.As(err, &perr) && perr.Position.Line > 0 {
			loc.Line = perr.Position.Line
		}
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("TOML parsing failed: %v", err),
			Location:   loc,
			Context:    schemaErrors.ExtractContextFromSource(data, loc, 2),
			Suggestion: "Check TOML syntax (table headers, quotes, '=' between key and value)",
			Err:        err,
		}
	}

	doc := build(raw, md.Keys(), locateKeys(data), sourcePath)

	if len(doc.Columns) == 0 && !p.allowEmpty {
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeStructural,
			Message:    "Schema is empty. Cannot proceed with validation.",
			Location:   ast.Location{File: sourcePath},
			Suggestion: "Declare at least one column table, e.g. [my_column]",
		}
	}

	return doc, nil
}

// build assembles a Document from decoded TOML, preserving key order.
func build(raw map[string]any, keys []toml.Key, lines map[string]int, source string) *ast.Document {
	doc := &ast.Document{Source: source}

	var topOrder []string
	fieldOrder := make(map[string][]string)
	for _, key := range keys {
		switch len(key) {
		case 1:
			if !slices.Contains(topOrder, key[0]) {
				topOrder = append(topOrder, key[0])
			}
		case 2:
			if !slices.Contains(fieldOrder[key[0]], key[1]) {
				fieldOrder[key[0]] = append(fieldOrder[key[0]], key[1])
			}
		}
	}
	topOrder = appendMissing(topOrder, raw)

	for _, name := range topOrder {
		value := raw[name]
		loc := ast.Location{File: source, Line: lines[name], Column: 1}

		if name == ast.DataAssetKey {
			doc.DataAsset = buildDataAsset(value, loc)
			continue
		}

		table, ok := value.(map[string]any)
		if !ok {
			doc.AddColumn(&ast.Column{Name: name, Raw: value, Location: loc})
			continue
		}

		col := ast.NewColumn(name)
		col.Location = loc
		for _, field := range appendMissing(fieldOrder[name], table) {
			if v, ok := table[field]; ok {
				col.Set(field, v)
			}
		}
		doc.AddColumn(col)
	}

	return doc
}

func buildDataAsset(value any, loc ast.Location) *ast.DataAsset {
	da := &ast.DataAsset{Location: loc}
	if table, ok := value.(map[string]any); ok {
		da.Fields = table
		if name, ok := table["name"].(string); ok {
			da.Name = name
		}
	}
	return da
}

// appendMissing adds keys of m that are not in order, sorted, so the result
// covers every key exactly once.
func appendMissing(order []string, m map[string]any) []string {
	var missing []string
	for k := range m {
		if !slices.Contains(order, k) {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return append(order, missing...)
}
