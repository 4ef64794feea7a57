package validator

import (
	"context"
	"fmt"
	"log/slog"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Diagnostic is a non-fatal finding: something worth telling the schema
// author that does not count as a validation error.
type Diagnostic struct {
	Level      Level  `json:"level" yaml:"level"`
	Column     string `json:"column" yaml:"column"`
	Field      string `json:"field,omitempty" yaml:"field,omitempty"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	if d.Suggestion != "" {
		return fmt.Sprintf("%s (%s)", d.Message, d.Suggestion)
	}
	return d.Message
}

// Diagnostics collects diagnostics during a validation pass.
type Diagnostics struct {
	records []Diagnostic
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.records = append(d.records, diag)
}

// Info records an informational diagnostic.
func (d *Diagnostics) Info(column string, field Field, message string) {
	d.Add(Diagnostic{Level: LevelInfo, Column: column, Field: field.String(), Message: message})
}

// Warn records a warning diagnostic.
func (d *Diagnostics) Warn(column string, field Field, message string) {
	d.Add(Diagnostic{Level: LevelWarning, Column: column, Field: field.String(), Message: message})
}

// Records returns the collected diagnostics in the order they were added.
func (d *Diagnostics) Records() []Diagnostic {
	return append([]Diagnostic(nil), d.records...)
}

// Count returns the number of diagnostics at the given level.
func (d *Diagnostics) Count(level Level) int {
	n := 0
	for _, r := range d.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

// LogDiagnostics writes diagnostics to logger at their own level.
func LogDiagnostics(logger *slog.Logger, diags []Diagnostic) {
	for _, d := range diags {
		level := slog.LevelInfo
		if d.Level == LevelWarning {
			level = slog.LevelWarn
		}
		attrs := []any{"column", d.Column}
		if d.Field != "" {
			attrs = append(attrs, "field", d.Field)
		}
		if d.Suggestion != "" {
			attrs = append(attrs, "suggestion", d.Suggestion)
		}
		logger.Log(context.Background(), level, d.Message, attrs...)
	}
}
