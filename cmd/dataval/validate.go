package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/history"
	"rdsa-hq/dataval/pkg/schema/validator"
	"rdsa-hq/dataval/pkg/telemetry/logging"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

var validateFlags struct {
	file      string
	dir       string
	rules     string
	threshold int
	strict    bool
	format    string
	jobs      int
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate schema files against the rule configuration",
	Long: `Validate TOML schema files against the rule configuration.

Every column of every schema is checked field by field: data types must be
declared by the rules, bounds must be consistent, regex patterns, date and
number formats must compile, and custom checks must be registered. The
error count is then passed through the go/no-go gate.

Examples:
  # Validate a single schema
  dataval validate --file schemas/returns.toml

  # Validate a directory of schemas with custom rules
  dataval validate --dir schemas/ --rules rules.toml

  # Tolerate up to 3 errors, counting warnings as errors
  dataval validate --file schemas/returns.toml --threshold 3 --strict

  # JSON output for CI/CD
  dataval validate --dir schemas/ --format json

Schemas in a directory are validated concurrently (--jobs, default: one per
CPU); results are always reported in file order.`,
	RunE: validateSchemas,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "schema file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of schema files")
	validateCmd.Flags().StringVar(&validateFlags.rules, "rules", "", "rule configuration file (default: config rules.path, then built-in rules)")
	validateCmd.Flags().IntVar(&validateFlags.threshold, "threshold", -1, "errors tolerated before no-go (default: config validation.error_threshold)")
	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "count warnings as errors")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json, yaml")
	validateCmd.Flags().IntVarP(&validateFlags.jobs, "jobs", "j", 0, "schemas validated concurrently (default: number of CPUs)")
}

// schemaResult is the outcome of validating one schema file.
type schemaResult struct {
	Source    string                  `json:"source" yaml:"source"`
	RunID     string                  `json:"run_id" yaml:"run_id"`
	Decision  validator.Decision      `json:"decision,omitempty" yaml:"decision,omitempty"`
	Columns   int                     `json:"columns" yaml:"columns"`
	Errors    []validator.ColumnError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings  []validator.Diagnostic  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	LoadError string                  `json:"load_error,omitempty" yaml:"load_error,omitempty"`
	Duration  time.Duration           `json:"duration" yaml:"duration"`
}

func (r schemaResult) passed() bool {
	return r.LoadError == "" && r.Decision != validator.DecisionNoGo
}

// validateOutput is the result of the validate command.
type validateOutput struct {
	Schemas  []schemaResult `json:"schemas" yaml:"schemas"`
	Passed   int            `json:"passed" yaml:"passed"`
	Rejected int            `json:"rejected" yaml:"rejected"`
	Failed   int            `json:"failed" yaml:"failed"`
}

func (o *validateOutput) add(r schemaResult) {
	o.Schemas = append(o.Schemas, r)
	switch {
	case r.LoadError != "":
		o.Failed++
	case r.Decision == validator.DecisionNoGo:
		o.Rejected++
	default:
		o.Passed++
	}
}

// WriteText implements cli.TextWriter.
func (o *validateOutput) WriteText(w io.Writer) error {
	for _, r := range o.Schemas {
		switch {
		case r.LoadError != "":
			fmt.Fprintf(w, "✗ %s: %s\n", r.Source, r.LoadError)
			continue
		case r.passed():
			fmt.Fprintf(w, "✓ %s: %s (%d columns)\n", r.Source, r.Decision, r.Columns)
		default:
			fmt.Fprintf(w, "✗ %s: %s (%d errors)\n", r.Source, r.Decision, len(r.Errors))
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
		for _, d := range r.Warnings {
			fmt.Fprintf(w, "  ! %s\n", d)
		}
	}
	_, err := fmt.Fprintf(w, "\nSummary: %d passed, %d rejected, %d failed to load\n", o.Passed, o.Rejected, o.Failed)
	return err
}

// err maps the outcome to the command error.
func (o *validateOutput) err() error {
	switch {
	case o.Failed > 0:
		return fmt.Errorf("%d of %d schemas could not be validated", o.Failed, len(o.Schemas))
	case o.Rejected > 0:
		return fmt.Errorf("%d of %d schemas rejected: %w", o.Rejected, len(o.Schemas), cli.ErrChecksFailed)
	}
	return nil
}

func validateSchemas(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	files, err := schemaFiles(validateFlags.file, validateFlags.dir)
	if err != nil {
		return err
	}
	r, err := app.loadRules(validateFlags.rules)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	v := app.newValidator(r, app.gate(validateFlags.threshold, validateFlags.strict))

	ctx := commandContext(cmd)
	var progress cli.ProgressReporter
	if len(files) > 1 && format == cli.FormatText {
		progress = cli.NewProgressReporter(os.Stderr, "files")
		progress.Start(int64(len(files)))
	}

	jobs := validateFlags.jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]schemaResult, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(gctx, v, path)
			if progress != nil {
				progress.Update(done.Add(1))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if progress != nil {
			progress.Error(err)
		}
		return err
	}
	if progress != nil {
		progress.Finish()
	}

	out := &validateOutput{}
	for _, r := range results {
		out.add(r)
	}

	if err := cli.NewFormatter(format).FormatTo(stdout, out); err != nil {
		return err
	}
	return out.err()
}

// validateFile validates one schema, recording the run in metrics, traces
// and the history.
func validateFile(ctx context.Context, v *validator.Validator, path string) schemaResult {
	run := history.NewRun(history.KindSchema, path)
	ctx = logging.WithRunID(ctx, run.ID)
	ctx = logging.WithSource(ctx, path)

	ctx, span := app.tracer.Start(ctx, tracing.SpanSchemaValidate)
	defer span.End()
	span.SetAttributes(tracing.AttrRunID.String(run.ID), tracing.AttrSource.String(path))

	result := schemaResult{Source: path, RunID: run.ID}
	report, err := v.RunValidation(ctx, path)
	run.Finish()
	result.Duration = run.Duration

	if report == nil {
		// The schema or the rules could not be loaded; there is nothing to
		// gate or record.
		result.LoadError = err.Error()
		app.metrics.ObserveLoadError("schema")
		tracing.SetError(span, err)
		return result
	}

	result.Decision = report.Decision
	result.Columns = len(report.Columns)
	result.Errors = report.Pairs()
	result.Warnings = report.Warnings()

	tracing.SetReportAttributes(span, report, report.Decision)
	tracing.SetStatus(span, err)
	app.metrics.ObserveSchemaValidation(report, report.Decision, run.Duration)

	run.ApplyReport(report, report.Decision)
	app.record(ctx, run)
	return result
}

// schemaFiles resolves the --file and --dir flags into a sorted list of
// schema paths.
func schemaFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if file != "" {
		files = append(files, file)
	}
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
		if err != nil {
			return nil, fmt.Errorf("failed to list schema files: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no .toml schema files in %s", dir)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// commandContext returns the command's context, or a background context
// when the command runs outside cobra.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
