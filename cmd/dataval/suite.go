package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/expectations"
	"rdsa-hq/dataval/pkg/schema/validator"
)

var suiteFlags struct {
	schema     string
	asset      string
	rules      string
	skipChecks bool
	format     string
}

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Print the expectation suite generated from a schema",
	Long: `Print the expectation suite a schema translates to.

Each column produces an existence expectation followed by one expectation
per checkable field. By default the schema is validated first and the suite
is only printed when it has no errors; --skip-validation builds the suite
from the parsed schema as is.

Examples:
  # Suite as YAML
  dataval suite --schema schemas/returns.toml --format yaml

  # Override the data asset name
  dataval suite --schema schemas/returns.toml --asset returns_2024 --format json`,
	RunE: printSuite,
}

func init() {
	rootCmd.AddCommand(suiteCmd)

	suiteCmd.Flags().StringVarP(&suiteFlags.schema, "schema", "s", "", "schema file (required)")
	suiteCmd.Flags().StringVar(&suiteFlags.asset, "asset", "", "data asset name (default: schema data_asset, then file name)")
	suiteCmd.Flags().StringVar(&suiteFlags.rules, "rules", "", "rule configuration file")
	suiteCmd.Flags().BoolVar(&suiteFlags.skipChecks, "skip-validation", false, "build the suite without validating the schema")
	suiteCmd.Flags().StringVar(&suiteFlags.format, "format", "yaml", "output format: text, json, yaml")
	_ = suiteCmd.MarkFlagRequired("schema")
}

// suiteText renders a suite as one line per expectation.
type suiteText struct {
	*expectations.Suite
}

// WriteText implements cli.TextWriter.
func (s suiteText) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Suite %s (data asset %q): %d expectations\n", s.Name, s.DataAsset, len(s.Expectations))
	for _, e := range s.Expectations {
		if len(e.Kwargs) == 0 {
			fmt.Fprintf(w, "  %-24s %s\n", e.Column, e.Type)
			continue
		}
		fmt.Fprintf(w, "  %-24s %s %v\n", e.Column, e.Type, e.Kwargs)
	}
	return nil
}

func printSuite(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(suiteFlags.format)
	if err != nil {
		return err
	}
	if suiteFlags.schema == "" {
		return fmt.Errorf("--schema must be specified")
	}

	var suite *expectations.Suite
	if suiteFlags.skipChecks {
		suite, err = expectations.CreateSuiteFromTOML(suiteFlags.schema, suiteFlags.asset)
		if err != nil {
			app.metrics.ObserveLoadError("schema")
			return cli.NewCommandError("suite", err)
		}
	} else {
		r, err := app.loadRules(suiteFlags.rules)
		if err != nil {
			return cli.NewCommandError("suite", err)
		}
		v := app.newValidator(r, app.gate(-1, false))

		var report *validator.Report
		suite, report, err = buildValidatedSuite(commandContext(cmd), v, suiteFlags.schema, suiteFlags.asset)
		if errors.Is(err, expectations.ErrInvalidSchema) {
			return fmt.Errorf("%s has %d schema errors (run dataval validate for details): %w",
				suiteFlags.schema, report.TotalErrors(), cli.ErrChecksFailed)
		}
		if err != nil {
			return cli.NewCommandError("suite", err)
		}
	}

	if format == cli.FormatText {
		return cli.NewFormatter(format).FormatTo(stdout, suiteText{suite})
	}
	return cli.NewFormatter(format).FormatTo(stdout, suite)
}
