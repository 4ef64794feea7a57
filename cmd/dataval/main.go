// Dataval validates TOML data schemas and checks tabular data against them.
//
// A schema describes each column of a dataset: its type, nullability,
// bounds, allowed values and formats. dataval checks the schema itself
// against a rule configuration, turns it into an expectation suite, and
// runs that suite against CSV files or SQLite queries.
//
// Usage:
//
//	# Validate one schema, or every schema in a directory
//	dataval validate --file schemas/returns.toml
//	dataval validate --dir schemas/ --format json
//
//	# Check a CSV file against its schema
//	dataval check --schema schemas/returns.toml --data returns.csv
//
//	# Print the expectation suite a schema produces
//	dataval suite --schema schemas/returns.toml --format yaml
//
//	# Draft a schema from existing data
//	dataval infer --data returns.csv --out schemas/returns.toml
//
//	# Re-validate schemas as they change, serving metrics and health
//	dataval watch --dir schemas/ --metrics-addr :9090
//
//	# Inspect recorded runs
//	dataval history list --decision no-go
package main

import (
	"os"

	"rdsa-hq/dataval/pkg/cli"
)

func main() {
	os.Exit(cli.ExitCode(Execute()))
}
