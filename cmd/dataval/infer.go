package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/schema"
	"rdsa-hq/dataval/pkg/schema/ast"
	"rdsa-hq/dataval/pkg/schemagen"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

var inferFlags struct {
	data          string
	query         string
	asset         string
	out           string
	maxCategories int
	dateFormats   []string
	force         bool
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Draft a schema from existing data",
	Long: `Infer a TOML schema from a CSV file or a SQLite or database query result.

Each column gets a data type, nullability and a placeholder description.
Numeric columns get their observed bounds, date columns a date_format and
low-cardinality text columns their possible_values. The draft is validated
before it is written; review and edit it before use.

Examples:
  # Print a draft schema
  dataval infer --data returns.csv

  # Write it to a file, recognizing dd.mm.yyyy dates
  dataval infer --data returns.csv --date-format "%d.%m.%Y" --out schemas/returns.toml`,
	RunE: inferSchema,
}

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVar(&inferFlags.data, "data", "", "CSV file, SQLite file or database URL (required)")
	inferCmd.Flags().StringVar(&inferFlags.query, "query", "", "SQL query for database sources")
	inferCmd.Flags().StringVar(&inferFlags.asset, "asset", "", "data asset name (default: data file name)")
	inferCmd.Flags().StringVarP(&inferFlags.out, "out", "o", "", "output file (default: stdout)")
	inferCmd.Flags().IntVar(&inferFlags.maxCategories, "max-categories", 0, "most distinct values a category column may have (default: config dataset.max_categories)")
	inferCmd.Flags().StringSliceVar(&inferFlags.dateFormats, "date-format", nil, "strftime date formats to try (repeatable)")
	inferCmd.Flags().BoolVar(&inferFlags.force, "force", false, "overwrite an existing output file")
	_ = inferCmd.MarkFlagRequired("data")
}

func inferSchema(cmd *cobra.Command, args []string) error {
	if inferFlags.data == "" {
		return fmt.Errorf("--data must be specified")
	}
	if inferFlags.out != "" && !inferFlags.force {
		if _, err := os.Stat(inferFlags.out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", inferFlags.out)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	ctx := commandContext(cmd)
	ctx, span := app.tracer.Start(ctx, tracing.SpanSchemaInfer)
	defer span.End()

	table, err := loadDataset(ctx, inferFlags.data, inferFlags.query, inferFlags.asset)
	if err != nil {
		app.metrics.ObserveLoadError("dataset")
		tracing.SetError(span, err)
		return cli.NewCommandError("infer", err)
	}
	if inferFlags.asset != "" {
		table.Name = inferFlags.asset
	}

	maxCategories := inferFlags.maxCategories
	if maxCategories <= 0 {
		maxCategories = app.cfg.Dataset.MaxCategories
	}
	doc := schemagen.Infer(table, schemagen.Options{
		MaxCategories: maxCategories,
		DateFormats:   inferFlags.dateFormats,
	})
	span.SetAttributes(tracing.AttrDataAsset.String(doc.AssetName()), tracing.AttrColumns.Int(len(doc.Columns)))

	var buf bytes.Buffer
	if err := schemagen.Write(&buf, doc); err != nil {
		tracing.SetError(span, err)
		return cli.NewCommandError("infer", err)
	}
	checkDraft(buf.Bytes(), doc)

	if inferFlags.out == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(inferFlags.out, buf.Bytes(), 0o644); err != nil {
		return cli.NewCommandError("infer", err)
	}
	app.logger.InfoContext(ctx, "schema written", "path", inferFlags.out, "columns", len(doc.Columns), "rows", table.Len())
	return nil
}

// checkDraft re-reads the rendered schema and logs any validation errors.
// Inferred schemas should always validate; a failure is reported but the
// draft is still written so it can be fixed by hand.
func checkDraft(data []byte, doc *ast.Document) {
	logger := app.component("infer")
	_, report, err := schema.ParseAndValidateBytes(data, doc.Source+".toml")
	if err != nil {
		logger.Warn("inferred schema could not be re-read", "error", err)
		return
	}
	for _, pair := range report.Pairs() {
		logger.Warn("inferred schema has an error", "column", pair.Column, "error", pair.Message)
	}
}
