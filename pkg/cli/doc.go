/*
Package cli provides command-line helpers shared by the jimmybridge commands.

Output Formatting:

Commands that report results accept --format text or --format json:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Values implementing TextRenderer control their own text rendering.

Errors:

ConfigError and CommandError carry the exit status the process ends with,
see ExitCode.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// ctx is canceled on the first signal; a second one exits at once.
*/
package cli
