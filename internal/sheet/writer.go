package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
)

// ErrWrite indicates the destination spreadsheet could not be opened or
// appended. Fatal: the run aborts rather than leave a silently truncated
// output.
var ErrWrite = errors.New("write cleaned spreadsheet")

// Writer appends cleaned records to the destination CSV in input order.
// Every record is flushed as soon as it is written, so an interrupted run
// leaves only complete rows behind.
type Writer struct {
	file *os.File
	csv  *csv.Writer
}

// NewWriter creates (or truncates) the destination file.
func NewWriter(path string, delimiter rune) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	cw := csv.NewWriter(file)
	cw.Comma = delimiter
	return &Writer{file: file, csv: cw}, nil
}

// Append writes one record and flushes it.
func (w *Writer) Append(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Close flushes and closes the destination file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
