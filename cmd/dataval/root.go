package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

// stdout receives command results. Logs go to stderr.
var stdout io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "dataval",
	Short: "dataval - TOML schema driven data validation",
	Long: `dataval validates data schemas written in TOML and checks tabular data
against them.

A schema declares, per column, the data type, nullability, length, value
range, allowed values, regex, date and number formats, uniqueness and
registered custom checks. dataval:
  - validates schema definitions against a rule configuration
  - applies a go/no-go gate to the validation errors
  - turns schemas into expectation suites and runs them on CSV files,
    SQLite files or Postgres, MySQL and SQL Server tables
  - infers draft schemas from existing data
  - records every run in a history store with scheduled retention`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown(context.WithoutCancel(cmd.Context()))
	},
}

// Execute runs the root command and returns the error the command failed
// with, after printing it.
func Execute() error {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	ctx = tracing.ExtractFromEnv(ctx)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		teardown(context.Background())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: built-in defaults and DATAVAL_* environment)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// setup loads the configuration and builds the shared services before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == cobra.ShellCompRequestCmd {
		return nil
	}
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}

	e, err := newEnv(cfg, os.Stderr)
	if err != nil {
		return err
	}
	app = e
	return nil
}

func teardown(ctx context.Context) {
	if app == nil {
		return
	}
	app.close(ctx)
	app = nil
}
