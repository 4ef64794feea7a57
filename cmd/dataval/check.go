package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/dataset"
	"rdsa-hq/dataval/pkg/expectations"
	"rdsa-hq/dataval/pkg/history"
	"rdsa-hq/dataval/pkg/schema/validator"
	"rdsa-hq/dataval/pkg/telemetry/logging"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

var checkFlags struct {
	schema string
	data   string
	query  string
	asset  string
	rules  string
	column string
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a dataset against a schema",
	Long: `Check a CSV file, SQLite file or database query result against a schema.

The schema is validated first; only a schema without errors is turned into
an expectation suite. The suite is then run against the data and every
failed expectation is reported with a sample of the unexpected values.

Data files ending in .db, .sqlite or .sqlite3 and postgres://, mysql:// or
sqlserver:// URLs are read with --query (default: every row of the table
named after the data asset). Anything else is read as CSV using the dataset
settings from the config.

Examples:
  # Check a CSV file
  dataval check --schema schemas/returns.toml --data returns.csv

  # Check a SQLite table
  dataval check --schema schemas/returns.toml --data survey.db --query "SELECT * FROM returns"

  # Check a Postgres table named after the data asset
  dataval check --schema schemas/returns.toml --data postgres://user@db:5432/survey

  # Check one column only, JSON output
  dataval check --schema schemas/returns.toml --data returns.csv --column turnover --format json`,
	RunE: checkData,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.schema, "schema", "s", "", "schema file (required)")
	checkCmd.Flags().StringVar(&checkFlags.data, "data", "", "CSV file, SQLite file or database URL (required)")
	checkCmd.Flags().StringVar(&checkFlags.query, "query", "", "SQL query for database sources")
	checkCmd.Flags().StringVar(&checkFlags.asset, "asset", "", "data asset name (default: schema data_asset, then file name)")
	checkCmd.Flags().StringVar(&checkFlags.rules, "rules", "", "rule configuration file")
	checkCmd.Flags().StringVar(&checkFlags.column, "column", "", "only run the expectations of this column")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json, yaml")
	_ = checkCmd.MarkFlagRequired("schema")
	_ = checkCmd.MarkFlagRequired("data")
}

// checkOutput is the result of the check command.
type checkOutput struct {
	RunID  string                  `json:"run_id" yaml:"run_id"`
	Rows   int                     `json:"rows" yaml:"rows"`
	Result *expectations.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	Schema []validator.ColumnError `json:"schema_errors,omitempty" yaml:"schema_errors,omitempty"`
}

// WriteText implements cli.TextWriter.
func (o *checkOutput) WriteText(w io.Writer) error {
	if o.Result == nil {
		fmt.Fprintln(w, "✗ schema has errors, data not checked:")
		for _, e := range o.Schema {
			fmt.Fprintf(w, "    %s\n", e)
		}
		return nil
	}
	mark := "✓"
	if !o.Result.Success {
		mark = "✗"
	}
	_, err := fmt.Fprintf(w, "%s %s (%d rows, suite %s)\n%s\n",
		mark, o.Result.DataAsset, o.Rows, o.Result.Suite, expectations.Format(o.Result))
	return err
}

func checkData(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return err
	}
	if checkFlags.schema == "" || checkFlags.data == "" {
		return fmt.Errorf("both --schema and --data must be specified")
	}
	r, err := app.loadRules(checkFlags.rules)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	ctx := commandContext(cmd)
	run := history.NewRun(history.KindData, dataset.RedactDSN(checkFlags.data))
	ctx = logging.WithRunID(ctx, run.ID)
	ctx = logging.WithSource(ctx, checkFlags.schema)

	ctx, span := app.tracer.Start(ctx, tracing.SpanSuiteRun)
	defer span.End()
	span.SetAttributes(tracing.AttrRunID.String(run.ID), tracing.AttrSource.String(checkFlags.schema))

	out := &checkOutput{RunID: run.ID}
	v := app.newValidator(r, app.gate(-1, false))

	suite, report, err := buildValidatedSuite(ctx, v, checkFlags.schema, checkFlags.asset)
	if errors.Is(err, expectations.ErrInvalidSchema) {
		out.Schema = report.Pairs()
		tracing.SetError(span, err)
		if ferr := cli.NewFormatter(format).FormatTo(stdout, out); ferr != nil {
			return ferr
		}
		return fmt.Errorf("%s: %w", checkFlags.schema, cli.ErrChecksFailed)
	}
	if err != nil {
		tracing.SetError(span, err)
		return cli.NewCommandError("check", err)
	}
	if checkFlags.column != "" && len(suite.ForColumn(checkFlags.column)) == 0 {
		return cli.NewCommandError("check", fmt.Errorf("column %q is not declared in %s", checkFlags.column, checkFlags.schema))
	}
	ctx = logging.WithDataAsset(ctx, suite.DataAsset)
	run.DataAsset = suite.DataAsset

	table, err := loadDataset(ctx, checkFlags.data, checkFlags.query, suite.DataAsset)
	if err != nil {
		app.metrics.ObserveLoadError("dataset")
		tracing.SetError(span, err)
		return cli.NewCommandError("check", err)
	}
	out.Rows = table.Len()

	runner := expectations.NewRunner(
		expectations.WithRules(r),
		expectations.WithChecks(app.checks),
		expectations.WithLogger(app.component("expectations")),
	)
	start := time.Now()
	var result *expectations.Result
	if checkFlags.column != "" {
		result, err = runner.RunColumn(ctx, table, checkFlags.column, suite)
	} else {
		result, err = runner.Run(ctx, table, suite)
	}
	if err != nil {
		tracing.SetError(span, err)
		return cli.NewCommandError("check", err)
	}
	run.Finish()
	out.Result = result

	tracing.SetResultAttributes(span, result, table.Len())
	app.metrics.ObserveExpectationRun(result, table.Len(), time.Since(start))
	run.ApplyResult(result)
	app.record(ctx, run)

	if err := cli.NewFormatter(format).FormatTo(stdout, out); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%d of %d expectations failed: %w",
			result.Summary.Unsuccessful, result.Summary.Evaluated, cli.ErrChecksFailed)
	}
	return nil
}

// buildValidatedSuite validates the schema at path and builds its suite.
// A non-empty asset overrides the data asset name.
func buildValidatedSuite(ctx context.Context, v *validator.Validator, path, asset string) (*expectations.Suite, *validator.Report, error) {
	ctx, span := app.tracer.Start(ctx, tracing.SpanSuiteBuild)
	defer span.End()

	suite, report, err := expectations.FromValidatedSchema(ctx, path, v)
	if err != nil {
		if !errors.Is(err, expectations.ErrInvalidSchema) {
			app.metrics.ObserveLoadError("schema")
		}
		tracing.SetError(span, err)
		return nil, report, err
	}
	if asset != "" {
		suite.DataAsset = asset
		suite.Name = asset + "_suite"
	}
	span.SetAttributes(tracing.AttrDataAsset.String(suite.DataAsset))
	return suite, report, nil
}

// loadDataset reads a CSV file, a SQLite file or a database URL. Database
// sources run query, defaulting to every row of the table named asset.
func loadDataset(ctx context.Context, source, query, asset string) (*dataset.Table, error) {
	_, span := app.tracer.Start(ctx, tracing.SpanDatasetLoad)
	defer span.End()
	span.SetAttributes(tracing.AttrSource.String(dataset.RedactDSN(source)))

	isDB := dataset.IsDSN(source) || dataset.IsSQLiteFile(source)
	if isDB && query == "" {
		if asset == "" {
			return nil, fmt.Errorf("--query is required for %s", dataset.RedactDSN(source))
		}
		query = `SELECT * FROM "` + strings.ReplaceAll(asset, `"`, `""`) + `"`
	}
	if !isDB && query != "" {
		return nil, fmt.Errorf("--query only applies to database sources")
	}

	var (
		table *dataset.Table
		err   error
	)
	switch {
	case dataset.IsDSN(source):
		table, err = dataset.LoadSQL(ctx, source, query, asset)
	case dataset.IsSQLiteFile(source):
		table, err = dataset.LoadSQLite(ctx, source, query)
	default:
		table, err = dataset.LoadCSV(source, app.csvOptions())
	}
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}
	span.SetAttributes(tracing.AttrRows.Int(table.Len()))
	return table, nil
}
