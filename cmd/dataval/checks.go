package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/cli"
)

var checksFlags struct {
	format string
}

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the custom checks a schema can reference",
	Long: `List the registered custom checks.

A schema's custom_check field must name one of these checks; validation
rejects any other name.`,
	RunE: listChecks,
}

func init() {
	rootCmd.AddCommand(checksCmd)
	checksCmd.Flags().StringVar(&checksFlags.format, "format", "text", "output format: text, json, yaml")
}

// checkInfo is the printable form of a registered check.
type checkInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type checkList []checkInfo

// WriteText implements cli.TextWriter.
func (l checkList) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range l {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Description)
	}
	return tw.Flush()
}

func listChecks(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checksFlags.format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(stdout, describeChecks(app.checks))
}

func describeChecks(reg *checks.Registry) checkList {
	var out checkList
	for _, c := range reg.List() {
		out = append(out, checkInfo{Name: c.Name, Description: c.Description})
	}
	return out
}
