/*
Package cli provides command-line interface utilities for Palisade.

The cli package includes output formatters, progress reporting, and common
CLI helpers used by the palisade command.

Output Formatting:

Command results render as text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Text output uses the value's String method when it has one. CSV output
requires the value to implement Tabular.

Progress Reporting:

For long-running operations such as benchmark runs:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalItems)
	for i := 0; i < totalItems; i++ {
		// Do work
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For operations that should stop on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Pass ctx to cancellable work
*/
package cli
