// Package logging builds the slog loggers used across the CLI.
//
// Two output formats are supported: a human-oriented console format that
// promotes the "component" attribute into the message prefix, and JSON with
// ts/level/msg keys. Output goes to stderr (optionally teed into a log file)
// so stdout stays free for the run summary.
package logging
