package validator

import (
	"fmt"
	"log/slog"
	"strings"
)

// Decision is the outcome of the go/no-go gate.
type Decision string

const (
	// DecisionGo means validation found no errors.
	DecisionGo Decision = "go"
	// DecisionDegraded means errors were found but tolerated.
	DecisionDegraded Decision = "degraded"
	// DecisionNoGo means the error count exceeded the threshold.
	DecisionNoGo Decision = "no-go"
)

// Gate decides whether a validation run may continue.
type Gate struct {
	// Threshold is the number of errors tolerated before stopping.
	Threshold int

	// StopOnErrors makes Decide return a *GateError when the threshold is
	// exceeded. When false, excess errors only degrade the run.
	StopOnErrors bool

	// Strict counts warning diagnostics as errors.
	Strict bool

	// Logger receives the degraded-pass warnings and the success message.
	Logger *slog.Logger
}

// DefaultGate stops on the first error.
func DefaultGate() Gate {
	return Gate{Threshold: 0, StopOnErrors: true}
}

// GateError is returned when a run is stopped. Its message lists every
// column/error pair.
type GateError struct {
	Total  int
	Errors []ColumnError
}

// Error implements the error interface.
func (e *GateError) Error() string {
	lines := make([]string, 0, len(e.Errors))
	for _, pair := range e.Errors {
		lines = append(lines, pair.String())
	}
	return fmt.Sprintf("Validation failed with %d errors:\n%s", e.Total, strings.Join(lines, "\n"))
}

// Decide applies the gate to a report.
func (g Gate) Decide(report *Report) (Decision, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pairs := report.Pairs()
	if g.Strict {
		for _, w := range report.Warnings() {
			pairs = append(pairs, ColumnError{Column: w.Column, Message: w.Message})
		}
	}
	total := len(pairs)

	switch {
	case total > g.Threshold && g.StopOnErrors:
		return DecisionNoGo, &GateError{Total: total, Errors: pairs}
	case total > 0:
		for _, pair := range pairs {
			logger.Warn(pair.String(), "column", pair.Column)
		}
		return DecisionDegraded, nil
	default:
		logger.Info("Validation successful. No errors found.")
		return DecisionGo, nil
	}
}
