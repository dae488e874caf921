// Package pipeline drives a de-identification run.
//
// Rows are processed one at a time, in input order, on a single goroutine:
// pseudonym assignment, imaging path resolution, engine invocation, output
// renaming, and the cleaned spreadsheet append. Failures scoped to one row
// or file are logged and skipped; failures that compromise the whole run
// (unwritable spreadsheet, unreachable engine, schema mismatch) abort it.
package pipeline
