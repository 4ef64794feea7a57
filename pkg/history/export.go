package history

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Exporter writes runs in a file format.
type Exporter interface {
	Export(ctx context.Context, runs []*Run, w io.Writer) error
}

// NewExporter returns the exporter for format ("json" or "csv").
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{Pretty: true}, nil
	case "csv":
		return &CSVExporter{IncludeHeader: true}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q (want json or csv)", format)
}

// JSONExporter writes runs as a JSON array.
type JSONExporter struct {
	Pretty bool
}

func (e *JSONExporter) Export(ctx context.Context, runs []*Run, w io.Writer) error {
	if runs == nil {
		runs = []*Run{}
	}
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(runs); err != nil {
		return &ExportError{Format: "json", RunCount: len(runs), Cause: err}
	}
	return nil
}

// CSVExporter writes one row per run. Errors are flattened to
// "column: message" entries joined by " | ".
type CSVExporter struct {
	IncludeHeader bool
}

var csvHeader = []string{
	"id", "kind", "source", "data_asset", "started_at", "duration_ms",
	"error_count", "warning_count", "decision", "errors",
}

func (e *CSVExporter) Export(ctx context.Context, runs []*Run, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return &ExportError{Format: "csv", RunCount: len(runs), Cause: err}
		}
	}
	for i, run := range runs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(runToRow(run)); err != nil {
			return &ExportError{Format: "csv", RunCount: i, Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ExportError{Format: "csv", RunCount: len(runs), Cause: err}
	}
	return nil
}

func runToRow(run *Run) []string {
	return []string{
		run.ID,
		string(run.Kind),
		run.Source,
		run.DataAsset,
		run.StartedAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(run.Duration.Milliseconds(), 10),
		strconv.Itoa(run.ErrorCount),
		strconv.Itoa(run.WarningCount),
		run.Decision,
		flattenErrors(run.Errors),
	}
}

func flattenErrors(errs map[string][]string) string {
	var parts []string
	for _, col := range slices.Sorted(maps.Keys(errs)) {
		for _, msg := range errs[col] {
			parts = append(parts, col+": "+msg)
		}
	}
	return strings.Join(parts, " | ")
}
