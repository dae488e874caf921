package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Row is one source record. Fields are read-only once parsed; Index is the
// 1-based position in the input (header excluded) and appears in log
// messages so skipped rows can be followed up manually.
type Row struct {
	Index  int
	Fields []string
}

// Validate checks the row against the positional contract.
func (r Row) Validate() error {
	if len(r.Fields) < MinFields {
		return fmt.Errorf("%w: row %d has %d fields, need %d", ErrMalformedRow, r.Index, len(r.Fields), MinFields)
	}
	return nil
}

// PersonID returns the personal identifier column. Callers must validate
// the row first.
func (r Row) PersonID() string { return r.Fields[ColPersonID] }

// InvitationID returns the invitation identifier column.
func (r Row) InvitationID() string { return r.Fields[ColInvitationID] }

// ScreeningDate returns the raw screening date column.
func (r Row) ScreeningDate() string { return r.Fields[ColScreeningDate] }

// DiagnosisDate returns the raw diagnosis date column.
func (r Row) DiagnosisDate() string { return r.Fields[ColDiagnosisDate] }

// Reader yields rows from the variables CSV. When the input declares a
// header, the header is validated once against the expected schema before
// any row is returned.
type Reader struct {
	csv    *csv.Reader
	index  int
	Header []string
}

// NewReader wraps r. Rows may have varying field counts; short rows are
// reported by Row.Validate, not by the reader.
func NewReader(r io.Reader, delimiter rune) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// ReadHeader consumes the first line and validates it against expected.
// It must be called before Read when the input has a header.
func (r *Reader) ReadHeader(expected []string) error {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if err := ValidateHeader(record, expected); err != nil {
		return err
	}
	r.Header = record
	return nil
}

// Read returns the next row, or io.EOF when the input is exhausted.
func (r *Reader) Read() (Row, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	r.index++
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return Row{}, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, r.index, err)
		}
		return Row{}, fmt.Errorf("read row %d: %w", r.index, err)
	}
	return Row{Index: r.index, Fields: record}, nil
}
