package validator

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func gateReport() *Report {
	r := newReport("schema.toml")
	r.addColumn("col_a", []string{"Column 'col_a' has an invalid description."})
	r.addColumn("col_b", nil)
	r.addColumn("col_c", []string{"first problem", "second problem"})
	return r
}

func TestGate_DecideStops(t *testing.T) {
	report := gateReport()

	decision, err := DefaultGate().Decide(report)
	if decision != DecisionNoGo {
		t.Errorf("Decide() decision = %q, want %q", decision, DecisionNoGo)
	}

	var gateErr *GateError
	if !errors.As(err, &gateErr) {
		t.Fatalf("Decide() error = %v, want *GateError", err)
	}
	if gateErr.Total != 3 {
		t.Errorf("Total = %d, want 3", gateErr.Total)
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "Validation failed with 3 errors:\n") {
		t.Errorf("Error() = %q", msg)
	}
	for _, pair := range report.Pairs() {
		if !strings.Contains(msg, pair.String()) {
			t.Errorf("Error() missing %q", pair.String())
		}
	}
	wantLines := []string{
		"Column 'col_a': Column 'col_a' has an invalid description.",
		"Column 'col_c': first problem",
		"Column 'col_c': second problem",
	}
	if got := strings.Join(wantLines, "\n"); !strings.HasSuffix(msg, got) {
		t.Errorf("Error() = %q, want suffix %q", msg, got)
	}
}

func TestGate_DecideDegraded(t *testing.T) {
	tests := []struct {
		name string
		gate Gate
	}{
		{name: "within threshold", gate: Gate{Threshold: 5, StopOnErrors: true}},
		{name: "stop disabled", gate: Gate{Threshold: 0, StopOnErrors: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.gate.Logger = slog.New(slog.NewTextHandler(&buf, nil))

			decision, err := tt.gate.Decide(gateReport())
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if decision != DecisionDegraded {
				t.Errorf("Decide() decision = %q, want %q", decision, DecisionDegraded)
			}
			if n := strings.Count(buf.String(), "level=WARN"); n != 3 {
				t.Errorf("logged %d warnings, want 3:\n%s", n, buf.String())
			}
		})
	}
}

func TestGate_DecideGo(t *testing.T) {
	var buf bytes.Buffer
	g := DefaultGate()
	g.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	report := newReport("")
	report.addColumn("col_a", nil)

	decision, err := g.Decide(report)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decision != DecisionGo {
		t.Errorf("Decide() decision = %q, want %q", decision, DecisionGo)
	}
	if !strings.Contains(buf.String(), "Validation successful. No errors found.") {
		t.Errorf("log = %q, want success message", buf.String())
	}
}

func TestGate_StrictCountsWarnings(t *testing.T) {
	report := newReport("")
	report.addColumn("col_a", nil)
	report.Diagnostics = []Diagnostic{
		{Level: LevelWarning, Column: "col_a", Message: "careful"},
		{Level: LevelInfo, Column: "col_a", Message: "fyi"},
	}

	g := Gate{StopOnErrors: true, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
	if decision, err := g.Decide(report); err != nil || decision != DecisionGo {
		t.Errorf("non-strict Decide() = %q, %v, want go", decision, err)
	}

	g.Strict = true
	_, err := g.Decide(report)
	var gateErr *GateError
	if !errors.As(err, &gateErr) {
		t.Fatalf("strict Decide() error = %v, want *GateError", err)
	}
	if gateErr.Total != 1 {
		t.Errorf("Total = %d, want 1", gateErr.Total)
	}
}
