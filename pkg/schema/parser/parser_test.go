package parser

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	schemaErrors "rdsa-hq/dataval/pkg/schema/errors"
)

const surveySchema = `
[data_asset]
name = "survey_results"

[reference]
description = "Business reference number"
data_type = "str"
nullable = false
length = 11

[period]
description = "Reporting period"
data_type = "int64"
nullable = false
min_value = 200001
max_value = 209912

[survey]
data_type = "category"
description = "Survey code"
nullable = false
possible_values = ["002", "003"]
`

func TestParser_ParseBytes(t *testing.T) {
	doc, err := NewParser().ParseBytes([]byte(surveySchema), "survey.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if got := doc.AssetName(); got != "survey_results" {
		t.Errorf("AssetName() = %q, want %q", got, "survey_results")
	}

	want := []string{"reference", "period", "survey"}
	got := doc.ColumnNames()
	if !slices.Equal(got, want) {
		t.Errorf("ColumnNames() = %v, want %v", got, want)
	}
	if slices.Contains(got, "data_asset") {
		t.Error("data_asset must not be a column")
	}

	survey := doc.Column("survey")
	if survey == nil {
		t.Fatal("survey column missing")
	}
	wantFields := []string{"data_type", "description", "nullable", "possible_values"}
	if !slices.Equal(survey.FieldOrder, wantFields) {
		t.Errorf("FieldOrder = %v, want %v", survey.FieldOrder, wantFields)
	}
	if survey.DataType() != "category" {
		t.Errorf("DataType() = %q", survey.DataType())
	}
	if survey.Location.Line != 18 {
		t.Errorf("survey Location.Line = %d, want 18", survey.Location.Line)
	}

	period := doc.Column("period")
	if v, _ := period.Get("min_value"); v != int64(200001) {
		t.Errorf("min_value = %#v, want int64(200001)", v)
	}
}

func TestParser_NonTableColumn(t *testing.T) {
	doc, err := NewParser().ParseBytes([]byte("loose = 5\n\n[a]\ndata_type = \"str\"\n"), "s.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	loose := doc.Column("loose")
	if loose == nil {
		t.Fatal("loose column missing")
	}
	if loose.IsTable {
		t.Error("IsTable = true for scalar entry")
	}
	if loose.Raw != int64(5) {
		t.Errorf("Raw = %#v, want int64(5)", loose.Raw)
	}
	if loose.Location.Line != 1 {
		t.Errorf("Location.Line = %d, want 1", loose.Location.Line)
	}
}

func TestParser_SyntaxError(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("[a]\ndata_type = \n"), "bad.toml")
	if err == nil {
		t.Fatal("expected syntax error")
	}

	var se *schemaErrors.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if se.Type != schemaErrors.ErrorTypeSyntax {
		t.Errorf("Type = %q, want syntax", se.Type)
	}
	if se.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestParser_Empty(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("# nothing here\n"), "empty.toml")

	var se *schemaErrors.Error
	if !errors.As(err, &se) || se.Type != schemaErrors.ErrorTypeStructural {
		t.Fatalf("ParseBytes() error = %v, want structural error", err)
	}

	doc, err := NewParser().WithAllowEmpty(true).ParseBytes([]byte(""), "empty.toml")
	if err != nil {
		t.Fatalf("WithAllowEmpty: error = %v", err)
	}
	if len(doc.Columns) != 0 {
		t.Errorf("Columns = %d, want 0", len(doc.Columns))
	}
}

func TestParser_Parse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.toml")
	if err := os.WriteFile(path, []byte(surveySchema), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Source != path {
		t.Errorf("Source = %q, want %q", doc.Source, path)
	}

	_, err = NewParser().Parse(filepath.Join(dir, "missing.toml"))
	var se *schemaErrors.Error
	if !errors.As(err, &se) || se.Type != schemaErrors.ErrorTypeIO {
		t.Errorf("Parse(missing) error = %v, want io error", err)
	}

	_, err = NewParser().WithMaxFileSize(10).Parse(path)
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("Parse() with small limit error = %v", err)
	}
}

func TestFirstSegment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"col", "col"},
		{"col.sub", "col"},
		{`"quoted.name"`, "quoted.name"},
		{`'lit'.x`, "lit"},
		{"  spaced  ", "spaced"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstSegment(tt.in); got != tt.want {
			t.Errorf("firstSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
