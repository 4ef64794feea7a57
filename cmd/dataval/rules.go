package main

import (
	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/schema/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the built-in rule configuration",
	Long: `Print the built-in rule configuration as TOML.

The output is a starting point for a custom rules file: edit the required
fields or data type categories and pass the file with --rules or the
rules.path config setting.

Examples:
  dataval rules > rules.toml`,
	Args: cobra.NoArgs,
	RunE: printRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func printRules(cmd *cobra.Command, args []string) error {
	_, err := stdout.Write(rules.DefaultBytes())
	return err
}
