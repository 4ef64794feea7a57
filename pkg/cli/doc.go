/*
Package cli provides helpers shared by the dataval commands.

Output formatting renders command results as text, JSON or YAML. Results
that implement TextWriter control their own text form:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)

Commands return errors and main maps them to exit codes with ExitCode:
0 on success, 2 when validation ran and rejected the input, 1 otherwise.

Long-running commands derive their context from SetupSignalHandler so that
SIGINT and SIGTERM trigger a clean shutdown.
*/
package cli
