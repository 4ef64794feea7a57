package schema

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseAndValidate(t *testing.T) {
	doc, report, err := ParseAndValidate("testdata/survey.toml")
	if err != nil {
		t.Fatalf("ParseAndValidate() failed: %v", err)
	}

	if doc.AssetName() != "survey_results" {
		t.Errorf("AssetName() = %q, want %q", doc.AssetName(), "survey_results")
	}
	want := []string{"reference", "period", "survey", "turnover", "returned_on"}
	if !slices.Equal(report.Columns, want) {
		t.Errorf("Columns = %v, want %v", report.Columns, want)
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors: %v", report.Pairs())
	}
}

func TestParseAndValidate_Invalid(t *testing.T) {
	_, report, err := ParseAndValidate("testdata/invalid.toml")
	if err != nil {
		t.Fatalf("ParseAndValidate() failed: %v", err)
	}

	if got := report.TotalErrors(); got != 2 {
		t.Errorf("TotalErrors() = %d, want 2: %v", got, report.Pairs())
	}
	if got := report.FailedColumns(); !slices.Equal(got, []string{"reference", "survey"}) {
		t.Errorf("FailedColumns() = %v", got)
	}
}

func TestParseAndValidateBytes(t *testing.T) {
	src := []byte(`
[id]
description = "Identifier"
data_type = "int64"
nullable = false
`)
	doc, report, err := ParseAndValidateBytes(src, "memory://test")
	if err != nil {
		t.Fatalf("ParseAndValidateBytes() failed: %v", err)
	}
	if doc.Source != "memory://test" {
		t.Errorf("Source = %q", doc.Source)
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors: %v", report.Pairs())
	}
}

func TestLoadSchema(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if doc := LoadSchema("testdata/survey.toml", logger); doc == nil {
		t.Fatal("LoadSchema() = nil for a valid file")
	}

	missing := filepath.Join(t.TempDir(), "absent.toml")
	if doc := LoadSchema(missing, logger); doc != nil {
		t.Errorf("LoadSchema() = %v, want nil", doc)
	}
	if !strings.Contains(buf.String(), "failed to load schema") {
		t.Errorf("log = %q, want load failure", buf.String())
	}
}

func BenchmarkParseAndValidate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, _, err := ParseAndValidate("testdata/survey.toml"); err != nil {
			b.Fatal(err)
		}
	}
}
