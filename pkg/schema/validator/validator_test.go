package validator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schema/parser"
	"rdsa-hq/dataval/pkg/schema/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustRules(t *testing.T, src string) *rules.Config {
	t.Helper()
	cfg, err := rules.LoadBytes([]byte(src), "rules.toml")
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	return cfg
}

func mustParse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "schema.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return doc
}

func TestValidateSchema_CategoryWithoutPossibleValues(t *testing.T) {
	cfg := mustRules(t, `
[required_fields]
fields = ["data_type"]

[datatypes.category]
types = ["category"]
`)
	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("col_a").Set("data_type", "category").Set("nullable", true))

	report, err := New(cfg).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}

	want := []string{"'col_a' must have 'possible_values' if data_type is 'category'."}
	if got := report.Errors["col_a"]; !slices.Equal(got, want) {
		t.Errorf("errors[col_a] = %q, want %q", got, want)
	}
}

func TestValidateSchema_MissingDataTypes(t *testing.T) {
	cfg := mustRules(t, "[required_fields]\nfields = [\"data_type\"]\n")
	v := New(cfg)

	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("col_a").Set("data_type", "str"))

	if _, err := v.ValidateSchema(doc); !errors.Is(err, rules.ErrMissingDataTypes) {
		t.Errorf("ValidateSchema() error = %v, want ErrMissingDataTypes", err)
	}

	if _, err := New(rules.Empty()).ValidateSchema(doc); !errors.Is(err, rules.ErrMissingDataTypes) {
		t.Errorf("ValidateSchema() on empty rules error = %v, want ErrMissingDataTypes", err)
	}
}

func TestValidateSchema_NoFieldsNoErrors(t *testing.T) {
	cfg := rules.Default()
	cfg.RequiredFields = nil

	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("empty"))
	doc.AddColumn(ast.NewColumn("nulls").Set("description", "nan").Set("data_type", nil))

	report, err := New(cfg).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}
	for _, name := range []string{"empty", "nulls"} {
		got, ok := report.Errors[name]
		if !ok {
			t.Errorf("errors[%s] missing, want empty list", name)
		}
		if len(got) != 0 {
			t.Errorf("errors[%s] = %q, want none", name, got)
		}
	}
	if report.HasErrors() {
		t.Errorf("HasErrors() = true")
	}
}

func TestValidateSchema_RequiredFields(t *testing.T) {
	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("c").Set("possible_values", []any{"a"}).Set("nullable", "nan"))

	report, err := New(rules.Default()).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}

	want := []string{
		"Column 'c' is missing required field 'description'.",
		"Column 'c' is missing required field 'data_type'.",
		"Column 'c' cannot have possible values without a data_type",
		"Column 'c' is missing required field 'nullable'.",
	}
	if got := report.Errors["c"]; !slices.Equal(got, want) {
		t.Errorf("errors[c] = %q, want %q", got, want)
	}
}

func TestValidateSchema_CanonicalOrder(t *testing.T) {
	cfg := rules.Default()
	cfg.RequiredFields = nil

	// Declared in reverse of the validation order.
	col := ast.NewColumn("c").
		Set("custom_check", "missing_check").
		Set("unique", "no").
		Set("nullable", "no").
		Set("description", "")

	doc := &ast.Document{}
	doc.AddColumn(col)

	report, err := New(cfg, WithChecks(checks.NewRegistry())).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}

	want := []string{
		"Column 'c' has an invalid description.",
		"Column 'c': 'nullable' must be a boolean.",
		"Column 'c': 'unique' must be a boolean.",
		"Column 'c': 'missing_check' is not a registered custom check.",
	}
	if got := report.Errors["c"]; !slices.Equal(got, want) {
		t.Errorf("errors[c] = %q, want %q", got, want)
	}
}

func TestValidateSchema_Document(t *testing.T) {
	doc := mustParse(t, `
version = "1.0"

[data_asset]
name = "survey_results"

[reference]
description = "Business reference number"
data_type = "str"
nullable = false
length = 11
regex_pattern = '^\d{11}$'

[period]
description = "Reporting period"
data_type = "int64"
nullable = false
min_value = 200001
max_value = 209912
custom_check = "is_yyyymm_period"

[survey]
description = "Survey code"
data_type = "category"
nullable = false
possible_values = ["002", "NULL"]
sorted = true
`)

	report, err := New(rules.Default()).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}

	wantColumns := []string{"version", "reference", "period", "survey"}
	if !slices.Equal(report.Columns, wantColumns) {
		t.Errorf("Columns = %v, want %v", report.Columns, wantColumns)
	}
	if _, ok := report.Errors[ast.DataAssetKey]; ok {
		t.Error("data_asset should not be validated as a column")
	}

	wantErrors := map[string][]string{
		"version":   {"Column 'version' must be a table of validation fields, not a string."},
		"reference": {},
		"period":    {},
		"survey":    {"Column 'survey' is non-nullable but 'possible_values' contains null-like values."},
	}
	for col, want := range wantErrors {
		if got := report.Errors[col]; !slices.Equal(got, want) {
			t.Errorf("errors[%s] = %q, want %q", col, got, want)
		}
	}

	if got := report.FailedColumns(); !slices.Equal(got, []string{"version", "survey"}) {
		t.Errorf("FailedColumns() = %v", got)
	}

	warnings := report.Warnings()
	if len(warnings) != 1 || warnings[0].Field != "sorted" {
		t.Errorf("Warnings() = %v, want one for the unrecognized 'sorted' field", warnings)
	}
}

func TestValidateSchema_Reusable(t *testing.T) {
	v := New(rules.Default())

	bad := &ast.Document{}
	bad.AddColumn(ast.NewColumn("c").Set("descripton", "typo"))
	if _, err := v.ValidateSchema(bad); err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}

	good := &ast.Document{}
	good.AddColumn(ast.NewColumn("c").
		Set("description", "ok").
		Set("data_type", "str").
		Set("nullable", true))
	report, err := v.ValidateSchema(good)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}
	if report.HasErrors() || len(report.Diagnostics) != 0 {
		t.Errorf("second pass carried state: errors=%v diagnostics=%v", report.Errors, report.Diagnostics)
	}
}

func TestValidateSchema_RegisteredCheck(t *testing.T) {
	reg := checks.NewRegistry()
	reg.MustRegister("is_survey_code", "three digit survey code", func(v any) bool {
		s, ok := v.(string)
		return ok && len(s) == 3
	})

	cfg := rules.Default()
	cfg.RequiredFields = nil
	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("survey").Set("custom_check", "is_survey_code"))

	report, err := New(cfg, WithChecks(reg)).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}
	if got := report.Errors["survey"]; len(got) != 0 {
		t.Errorf("errors[survey] = %q, want none", got)
	}
}

func TestValidateSchema_NilChecksKeepsDefault(t *testing.T) {
	cfg := rules.Default()
	cfg.RequiredFields = nil
	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("turnover").Set("custom_check", "is_positive"))
	doc.AddColumn(ast.NewColumn("survey").Set("custom_check", "is_unknown"))

	report, err := New(cfg, WithChecks(nil)).ValidateSchema(doc)
	if err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}
	if got := report.Errors["turnover"]; len(got) != 0 {
		t.Errorf("errors[turnover] = %q, want none", got)
	}
	if got := report.Errors["survey"]; len(got) != 1 {
		t.Errorf("errors[survey] = %q, want one", got)
	}
}

func writeSchema(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunValidation(t *testing.T) {
	valid := `
[id]
description = "Identifier"
data_type = "int64"
nullable = false
unique = true
`
	invalid := `
[id]
description = "Identifier"
data_type = "int64"
nullable = false
min_value = 10
max_value = 1
`

	t.Run("valid schema", func(t *testing.T) {
		v := New(rules.Default(), WithLogger(quietLogger()))
		report, err := v.RunValidation(context.Background(), writeSchema(t, valid))
		if err != nil {
			t.Fatalf("RunValidation() error = %v", err)
		}
		if report.HasErrors() {
			t.Errorf("report has errors: %v", report.Errors)
		}
		if report.Decision != DecisionGo {
			t.Errorf("Decision = %q, want %q", report.Decision, DecisionGo)
		}
	})

	t.Run("stops on errors", func(t *testing.T) {
		v := New(rules.Default(), WithLogger(quietLogger()))
		report, err := v.RunValidation(context.Background(), writeSchema(t, invalid))

		var gateErr *GateError
		if !errors.As(err, &gateErr) {
			t.Fatalf("RunValidation() error = %v, want *GateError", err)
		}
		if report == nil || report.TotalErrors() != 1 {
			t.Errorf("report = %+v, want one error", report)
		}
		if report != nil && report.Decision != DecisionNoGo {
			t.Errorf("Decision = %q, want %q", report.Decision, DecisionNoGo)
		}
		want := "Column 'id': Column 'id' min_value cannot be greater than max_value for data_type: int64"
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
		}
	})

	t.Run("degraded pass", func(t *testing.T) {
		v := New(rules.Default(),
			WithLogger(quietLogger()),
			WithGate(Gate{Threshold: 1, StopOnErrors: true}))
		report, err := v.RunValidation(context.Background(), writeSchema(t, invalid))
		if err != nil {
			t.Fatalf("RunValidation() error = %v, want nil within threshold", err)
		}
		if report.Decision != DecisionDegraded {
			t.Errorf("Decision = %q, want %q", report.Decision, DecisionDegraded)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		v := New(rules.Default(), WithLogger(quietLogger()))
		path := filepath.Join(t.TempDir(), "absent.toml")
		if _, err := v.RunValidation(context.Background(), path); err == nil {
			t.Error("RunValidation() expected error for missing file")
		}
	})

	t.Run("missing datatypes", func(t *testing.T) {
		v := New(rules.Empty(), WithLogger(quietLogger()))
		if _, err := v.RunValidation(context.Background(), writeSchema(t, valid)); !errors.Is(err, rules.ErrMissingDataTypes) {
			t.Errorf("RunValidation() error = %v, want ErrMissingDataTypes", err)
		}
	})
}
