package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/history"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

var historyFlags struct {
	kind     string
	source   string
	asset    string
	decision string
	since    string
	until    string
	limit    int
	offset   int
	format   string
	export   string
	output   string
	days     int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded validation runs",
	Long: `Query, export and prune the history of validation runs.

Every validate and check run is recorded with its decision, error counts and
error messages when history is enabled in the config.

Time filters accept RFC3339 timestamps, dates and most common date formats.

Examples:
  # Recent rejected runs
  dataval history list --decision no-go --since 2024-05-01

  # Show one run with its errors
  dataval history show 3f1c...

  # Export data checks as CSV
  dataval history export --kind data --format csv --output runs.csv

  # Delete runs older than 30 days
  dataval history prune --days 30`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  listRuns,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its errors",
	Args:  cobra.ExactArgs(1),
	RunE:  showRun,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs as JSON or CSV",
	RunE:  exportRuns,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention period",
	RunE:  pruneRuns,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd, historyPruneCmd)

	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().StringVar(&historyFlags.kind, "kind", "", "filter by kind: schema, data")
		c.Flags().StringVar(&historyFlags.source, "source", "", "filter by schema or data path")
		c.Flags().StringVar(&historyFlags.asset, "asset", "", "filter by data asset")
		c.Flags().StringVar(&historyFlags.decision, "decision", "", "filter by decision: go, degraded, no-go")
		c.Flags().StringVar(&historyFlags.since, "since", "", "only runs started at or after this time")
		c.Flags().StringVar(&historyFlags.until, "until", "", "only runs started at or before this time")
		c.Flags().IntVar(&historyFlags.limit, "limit", 100, "max results")
		c.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	}
	historyListCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, yaml")
	historyShowCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, yaml")
	historyExportCmd.Flags().StringVar(&historyFlags.export, "format", "json", "export format: json, csv")
	historyExportCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (default: stdout)")
	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention in days (default: config history.retention.days)")
}

// buildQuery converts the filter flags into a history query.
func buildQuery() (*history.Query, error) {
	q := &history.Query{
		Kind:      history.Kind(historyFlags.kind),
		Source:    historyFlags.source,
		DataAsset: historyFlags.asset,
		Decision:  historyFlags.decision,
		Limit:     historyFlags.limit,
		Offset:    historyFlags.offset,
	}
	switch q.Kind {
	case "", history.KindSchema, history.KindData:
	default:
		return nil, fmt.Errorf("invalid --kind %q (want schema or data)", historyFlags.kind)
	}

	var err error
	if q.Since, err = parseTime("since", historyFlags.since); err != nil {
		return nil, err
	}
	if q.Until, err = parseTime("until", historyFlags.until); err != nil {
		return nil, err
	}
	if q.Since != nil && q.Until != nil && q.Until.Before(*q.Since) {
		return nil, fmt.Errorf("--until is before --since")
	}
	return q, nil
}

func parseTime(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return &t, nil
}

// runList renders runs as a table.
type runList []*history.Run

// WriteText implements cli.TextWriter.
func (l runList) WriteText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tDECISION\tERRORS\tWARNINGS\tSOURCE")
	for _, r := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Kind, r.StartedAt.Format(time.RFC3339), r.Decision,
			r.ErrorCount, r.WarningCount, r.Source)
	}
	return tw.Flush()
}

// runDetail renders one run with its errors.
type runDetail struct {
	*history.Run
}

// WriteText implements cli.TextWriter.
func (d runDetail) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Run:       %s\n", d.ID)
	fmt.Fprintf(w, "Kind:      %s\n", d.Kind)
	fmt.Fprintf(w, "Source:    %s\n", d.Source)
	if d.DataAsset != "" {
		fmt.Fprintf(w, "Asset:     %s\n", d.DataAsset)
	}
	fmt.Fprintf(w, "Started:   %s\n", d.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:  %s\n", d.Duration)
	fmt.Fprintf(w, "Decision:  %s\n", d.Decision)
	fmt.Fprintf(w, "Errors:    %d\n", d.ErrorCount)
	fmt.Fprintf(w, "Warnings:  %d\n", d.WarningCount)
	for _, col := range slices.Sorted(maps.Keys(d.Errors)) {
		for _, msg := range d.Errors[col] {
			fmt.Fprintf(w, "  %s: %s\n", col, msg)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	store, err := app.requireHistory(ctx)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	runs, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	return cli.NewFormatter(format).FormatTo(stdout, runList(runs))
}

func showRun(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	store, err := app.requireHistory(ctx)
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	run, err := store.Get(ctx, args[0])
	if history.IsNotFound(err) {
		return fmt.Errorf("run %s not found", args[0])
	}
	if err != nil {
		return cli.NewCommandError("history show", err)
	}
	if format == cli.FormatText {
		return cli.NewFormatter(format).FormatTo(stdout, runDetail{run})
	}
	return cli.NewFormatter(format).FormatTo(stdout, run)
}

func exportRuns(cmd *cobra.Command, args []string) error {
	exporter, err := history.NewExporter(historyFlags.export)
	if err != nil {
		return err
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	store, err := app.requireHistory(ctx)
	if err != nil {
		return cli.NewCommandError("history export", err)
	}
	runs, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("history export", err)
	}

	w := stdout
	if historyFlags.output != "" {
		f, err := os.Create(historyFlags.output)
		if err != nil {
			return cli.NewCommandError("history export", err)
		}
		defer f.Close()
		w = f
	}
	if err := exporter.Export(ctx, runs, w); err != nil {
		return cli.NewCommandError("history export", err)
	}
	if historyFlags.output != "" {
		fmt.Fprintf(os.Stderr, "✓ Exported %d runs to %s\n", len(runs), historyFlags.output)
	}
	return nil
}

func pruneRuns(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	store, err := app.requireHistory(ctx)
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	retention := app.retention()
	if historyFlags.days > 0 {
		retention.RetentionDays = historyFlags.days
	}
	if retention.RetentionDays <= 0 {
		return fmt.Errorf("no retention period: set --days or history.retention.days")
	}

	ctx, span := app.tracer.Start(ctx, tracing.SpanHistoryPrune)
	defer span.End()

	deleted, err := history.NewScheduler(store, retention).Prune(ctx)
	if err != nil {
		tracing.SetError(span, err)
		return cli.NewCommandError("history prune", err)
	}
	span.SetAttributes(tracing.AttrPruned.Int64(deleted))
	app.metrics.ObservePrune(deleted)

	fmt.Fprintf(stdout, "✓ Deleted %d runs older than %d days\n", deleted, retention.RetentionDays)
	return nil
}

