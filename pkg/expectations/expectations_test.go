package expectations

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

	"rdsa-hq/dataval/pkg/dataset"
	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schema/parser"
	"rdsa-hq/dataval/pkg/schema/rules"
	"rdsa-hq/dataval/pkg/schema/validator"
)

func quietRunner() *Runner {
	return NewRunner(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func loadReturns(t *testing.T) (*Suite, *dataset.Table) {
	t.Helper()
	suite, err := CreateSuiteFromTOML("testdata/returns.toml", "")
	if err != nil {
		t.Fatalf("CreateSuiteFromTOML() error = %v", err)
	}
	table, err := dataset.LoadCSV("testdata/returns.csv", dataset.CSVOptions{})
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	return suite, table
}

func types(exps []Expectation) []Type {
	out := make([]Type, len(exps))
	for i, e := range exps {
		out[i] = e.Type
	}
	return out
}

func TestBuildSuite(t *testing.T) {
	suite, _ := loadReturns(t)

	if suite.Name != "survey_returns_suite" || suite.DataAsset != "survey_returns" {
		t.Errorf("suite = %q for %q", suite.Name, suite.DataAsset)
	}
	if len(suite.Expectations) != 23 {
		t.Errorf("len(Expectations) = %d, want 23", len(suite.Expectations))
	}

	tests := []struct {
		column string
		want   []Type
	}{
		{
			column: "reference",
			want: []Type{
				ExpectColumnToExist, ExpectValuesNotNull, ExpectValuesOfType,
				ExpectValueLengthsToEqual, ExpectValuesMatchRegex, ExpectValuesUnique,
			},
		},
		{
			column: "period",
			want: []Type{
				ExpectColumnToExist, ExpectValuesNotNull, ExpectValuesOfType,
				ExpectValuesBetween, ExpectValuesPassCustomCheck,
			},
		},
		{
			column: "survey",
			want:   []Type{ExpectColumnToExist, ExpectValuesNotNull, ExpectValuesOfType, ExpectValuesInSet},
		},
		{
			column: "turnover",
			want:   []Type{ExpectColumnToExist, ExpectValuesOfType, ExpectValuesBetween, ExpectValuesMatchNumberFormat},
		},
		{
			column: "returned_on",
			want:   []Type{ExpectColumnToExist, ExpectValuesOfType, ExpectValuesBetween, ExpectValuesMatchStrftimeFormat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := types(suite.ForColumn(tt.column)); !slices.Equal(got, tt.want) {
				t.Errorf("types = %v, want %v", got, tt.want)
			}
		})
	}

	between := suite.ForColumn("period")[3]
	if between.Kwargs["min_value"] != int64(200001) || between.Kwargs["max_value"] != int64(209912) {
		t.Errorf("between kwargs = %v", between.Kwargs)
	}
	if !slices.Equal(between.Fields, []string{"min_value", "max_value"}) {
		t.Errorf("between fields = %v", between.Fields)
	}

	if !slices.Equal(suite.Columns(), []string{"reference", "period", "survey", "turnover", "returned_on"}) {
		t.Errorf("Columns() = %v", suite.Columns())
	}
}

// Every expectation beyond the existence check comes from fields present in
// the schema, and no field contributes more than once.
func TestBuildSuite_FieldsComeFromSchema(t *testing.T) {
	doc, err := parser.NewParser().Parse("testdata/returns.toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	suite := BuildSuite(doc, "")

	for _, col := range doc.Columns {
		exps := suite.ForColumn(col.Name)
		if len(exps) == 0 || exps[0].Type != ExpectColumnToExist {
			t.Errorf("%s: first expectation = %v, want existence", col.Name, exps)
			continue
		}
		seen := make(map[string]bool)
		for _, e := range exps[1:] {
			if len(e.Fields) == 0 {
				t.Errorf("%s: %s has no source field", col.Name, e.Type)
			}
			for _, f := range e.Fields {
				if !col.Has(f) {
					t.Errorf("%s: %s derived from absent field %q", col.Name, e.Type, f)
				}
				if seen[f] {
					t.Errorf("%s: field %q used twice", col.Name, f)
				}
				seen[f] = true
			}
		}
	}
}

func TestBuildSuite_SkipsNullAndInert(t *testing.T) {
	doc := &ast.Document{}
	doc.AddColumn(ast.NewColumn("a").
		Set("description", "only metadata").
		Set("nullable", true).
		Set("unique", false).
		Set("regex_pattern", "nan").
		Set("length", ">=abc"))

	suite := BuildSuite(doc, "asset")
	if got := types(suite.Expectations); !slices.Equal(got, []Type{ExpectColumnToExist}) {
		t.Errorf("types = %v, want only existence", got)
	}

	lengthDoc := &ast.Document{}
	lengthDoc.AddColumn(ast.NewColumn("b").Set("length", ">2"))
	e := BuildSuite(lengthDoc, "asset").Expectations[1]
	if e.Type != ExpectValueLengthsBetween || e.Kwargs["min_value"] != 3 || e.Kwargs["max_value"] != nil {
		t.Errorf("length expectation = %+v", e)
	}
}

func TestCreateSuiteFromTOML_AssetName(t *testing.T) {
	src := "[id]\ndata_type = \"int64\"\n"
	path := filepath.Join(t.TempDir(), "orders.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		asset string
		want  string
	}{
		{name: "explicit", path: "testdata/returns.toml", asset: "custom", want: "custom"},
		{name: "data_asset", path: "testdata/returns.toml", want: "survey_returns"},
		{name: "file stem", path: path, want: "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite, err := CreateSuiteFromTOML(tt.path, tt.asset)
			if err != nil {
				t.Fatalf("CreateSuiteFromTOML() error = %v", err)
			}
			if suite.DataAsset != tt.want {
				t.Errorf("DataAsset = %q, want %q", suite.DataAsset, tt.want)
			}
		})
	}

	if _, err := CreateSuiteFromTOML(filepath.Join(t.TempDir(), "absent.toml"), ""); err == nil {
		t.Error("CreateSuiteFromTOML() expected error for missing file")
	}
}

func TestFromValidatedSchema(t *testing.T) {
	ctx := context.Background()
	v := validator.New(rules.Default(), validator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	suite, report, err := FromValidatedSchema(ctx, "testdata/returns.toml", v)
	if err != nil {
		t.Fatalf("FromValidatedSchema() error = %v", err)
	}
	if report.HasErrors() || suite.DataAsset != "survey_returns" {
		t.Errorf("suite = %+v, report = %+v", suite, report)
	}

	suite, report, err = FromValidatedSchema(ctx, "testdata/invalid.toml", v)
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("FromValidatedSchema() error = %v, want ErrInvalidSchema", err)
	}
	if suite != nil {
		t.Error("suite should be nil for an invalid schema")
	}
	if report == nil || report.TotalErrors() != 1 {
		t.Errorf("report = %+v, want one error", report)
	}

	if _, _, err := FromValidatedSchema(ctx, "testdata/absent.toml", v); err == nil {
		t.Error("FromValidatedSchema() expected error for missing file")
	}
}

func TestRunner_Run(t *testing.T) {
	suite, table := loadReturns(t)

	result, err := quietRunner().Run(context.Background(), table, suite)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Success {
		t.Error("Success = true, want false")
	}
	want := Summary{Evaluated: 23, Successful: 18, Unsuccessful: 5}
	if result.Summary != want {
		t.Errorf("Summary = %+v, want %+v", result.Summary, want)
	}

	columns, byColumn := result.Failures()
	if !slices.Equal(columns, []string{"reference", "period", "survey", "returned_on"}) {
		t.Errorf("failed columns = %v", columns)
	}

	failed := map[string][]Type{
		"reference":   {ExpectValuesMatchRegex, ExpectValuesUnique},
		"period":      {ExpectValuesPassCustomCheck},
		"survey":      {ExpectValuesInSet},
		"returned_on": {ExpectValuesMatchStrftimeFormat},
	}
	for col, wantTypes := range failed {
		var got []Type
		for _, r := range byColumn[col] {
			got = append(got, r.ExpectationType)
		}
		if !slices.Equal(got, wantTypes) {
			t.Errorf("%s failures = %v, want %v", col, got, wantTypes)
		}
	}

	unique := byColumn["reference"][1].Details
	if unique.UnexpectedCount != 2 || unique.ElementCount != 4 || unique.UnexpectedPercent != 50 {
		t.Errorf("unique details = %+v", unique)
	}
	inSet := byColumn["survey"][0].Details
	if !slices.Equal(inSet.PartialUnexpectedList, []any{"099"}) {
		t.Errorf("in_set unexpected = %v", inSet.PartialUnexpectedList)
	}
}

func TestRunner_Details(t *testing.T) {
	table := dataset.NewTable("t", []string{"v"})
	for _, v := range []any{"a", nil, "bb", nil} {
		if err := table.AppendRow([]any{v}); err != nil {
			t.Fatal(err)
		}
	}

	suite := &Suite{Name: "s", Expectations: []Expectation{
		{Type: ExpectValuesNotNull, Column: "v"},
		{Type: ExpectValueLengthsToEqual, Column: "v", Kwargs: map[string]any{"value": 1}},
		{Type: ExpectColumnToExist, Column: "missing"},
		{Type: ExpectValuesUnique, Column: "missing"},
		{Type: ExpectValuesPassCustomCheck, Column: "v", Kwargs: map[string]any{"check": "no_such_check"}},
		{Type: ExpectValuesMatchRegex, Column: "v", Kwargs: map[string]any{"regex": "("}},
	}}

	result, err := quietRunner().Run(context.Background(), table, suite)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Summary.Unsuccessful != 6 {
		t.Fatalf("Unsuccessful = %d, want 6", result.Summary.Unsuccessful)
	}

	notNull := result.Results[0].Details
	if notNull.UnexpectedCount != 2 || notNull.MissingCount != 2 || notNull.UnexpectedPercent != 50 {
		t.Errorf("not_null details = %+v", notNull)
	}

	length := result.Results[1].Details
	if length.UnexpectedCount != 1 || length.UnexpectedPercent != 50 || length.PartialUnexpectedList[0] != "bb" {
		t.Errorf("length details = %+v", length)
	}

	for i, want := range []string{"not found", "not found", "not registered", "invalid regex"} {
		if d := result.Results[i+2].Details; d == nil || !strings.Contains(d.Error, want) {
			t.Errorf("Results[%d].Details = %+v, want error containing %q", i+2, d, want)
		}
	}
}

func TestRunner_TypesAndRanges(t *testing.T) {
	tests := []struct {
		name   string
		cells  []any
		exp    Expectation
		failed []any
	}{
		{
			name:   "integer type",
			cells:  []any{"1", "2.5", "x", int64(3)},
			exp:    Expectation{Type: ExpectValuesOfType, Kwargs: map[string]any{"type_": "int64"}},
			failed: []any{"2.5", "x"},
		},
		{
			name:   "float type",
			cells:  []any{"1", "2.5", "x"},
			exp:    Expectation{Type: ExpectValuesOfType, Kwargs: map[string]any{"type_": "float64"}},
			failed: []any{"x"},
		},
		{
			name:   "boolean type",
			cells:  []any{"true", "no", "maybe"},
			exp:    Expectation{Type: ExpectValuesOfType, Kwargs: map[string]any{"type_": "bool"}},
			failed: []any{"maybe"},
		},
		{
			name:   "datetime type",
			cells:  []any{"2024-01-02", "yesterday"},
			exp:    Expectation{Type: ExpectValuesOfType, Kwargs: map[string]any{"type_": "DateType"}},
			failed: []any{"yesterday"},
		},
		{
			name:   "numeric range",
			cells:  []any{"0", "5", "10.5", int64(-1)},
			exp:    Expectation{Type: ExpectValuesBetween, Kwargs: map[string]any{"min_value": int64(0), "max_value": 10.0}},
			failed: []any{"10.5", int64(-1)},
		},
		{
			name:   "datetime range",
			cells:  []any{"2024-01-01", "2023-12-31"},
			exp:    Expectation{Type: ExpectValuesBetween, Kwargs: map[string]any{"min_value": "2024-01-01", "max_value": nil}},
			failed: []any{"2023-12-31"},
		},
		{
			name:   "numeric set",
			cells:  []any{"1", "2", "3"},
			exp:    Expectation{Type: ExpectValuesInSet, Kwargs: map[string]any{"value_set": []any{int64(1), int64(2)}}},
			failed: []any{"3"},
		},
		{
			name:   "number format",
			cells:  []any{"1,234.50", "1234.5", 99.0},
			exp:    Expectation{Type: ExpectValuesMatchNumberFormat, Kwargs: map[string]any{"number_format": "{:,.2f}"}},
			failed: []any{"1234.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := dataset.NewTable("t", []string{"v"})
			for _, c := range tt.cells {
				if err := table.AppendRow([]any{c}); err != nil {
					t.Fatal(err)
				}
			}
			tt.exp.Column = "v"
			result, err := quietRunner().Run(context.Background(), table, &Suite{Expectations: []Expectation{tt.exp}})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			r := result.Results[0]
			if len(tt.failed) == 0 {
				if !r.Success {
					t.Errorf("Success = false, details = %+v", r.Details)
				}
				return
			}
			if r.Success || r.Details == nil {
				t.Fatalf("Success = true, want failures %v", tt.failed)
			}
			if !slices.Equal(r.Details.PartialUnexpectedList, tt.failed) {
				t.Errorf("unexpected = %v, want %v", r.Details.PartialUnexpectedList, tt.failed)
			}
		})
	}
}

func TestRunner_RunColumn(t *testing.T) {
	suite, table := loadReturns(t)

	result, err := quietRunner().RunColumn(context.Background(), table, "survey", suite)
	if err != nil {
		t.Fatalf("RunColumn() error = %v", err)
	}
	if result.Summary.Evaluated != 4 || result.Summary.Unsuccessful != 1 {
		t.Errorf("Summary = %+v", result.Summary)
	}
	for _, r := range result.Results {
		if r.Column != "survey" {
			t.Errorf("result for column %q", r.Column)
		}
	}
}

func TestRunner_Cancelled(t *testing.T) {
	suite, table := loadReturns(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := quietRunner().Run(ctx, table, suite)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if result.Summary.Evaluated != 0 {
		t.Errorf("Evaluated = %d, want 0", result.Summary.Evaluated)
	}
}

func TestFormat(t *testing.T) {
	suite, table := loadReturns(t)
	result, err := quietRunner().Run(context.Background(), table, suite)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := Format(result)
	wantLines := []string{
		"Validation Summary: 18 of 23 expectations passed (5 failed)",
		"Column 'reference' has 2 failed expectation(s):",
		"  - expect_column_values_to_be_in_set: 1 of 4 values unexpected (25.0%), e.g. [099]",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}
