package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// Positional contract for the registry export, 0-indexed. The person and
// invitation IDs occupy the first two columns, the screening date the third,
// and the diagnosis date the tenth.
const (
	ColPersonID      = 0
	ColInvitationID  = 1
	ColScreeningDate = 2
	ColDiagnosisDate = 9

	// MinFields is the smallest usable row: everything up to and including
	// the diagnosis date column must be present.
	MinFields = ColDiagnosisDate + 1
)

// ErrSchemaMismatch indicates the input header disagrees with the declared
// column layout. It is fatal: no row is processed after a mismatch.
var ErrSchemaMismatch = errors.New("header does not match declared schema")

// ErrMalformedRow indicates a row too short (or otherwise unusable) under
// the positional contract. Row-local: the row is skipped and logged.
var ErrMalformedRow = errors.New("malformed row")

// ValidateHeader checks the input header against the expected column names.
// Empty entries in expected are wildcards; comparison is case-insensitive
// and ignores surrounding whitespace. A header shorter than MinFields always
// mismatches.
func ValidateHeader(header, expected []string) error {
	if len(header) < MinFields {
		return fmt.Errorf("%w: header has %d columns, need at least %d", ErrSchemaMismatch, len(header), MinFields)
	}
	for i, want := range expected {
		if strings.TrimSpace(want) == "" {
			continue
		}
		if i >= len(header) {
			return fmt.Errorf("%w: column %d (%q) missing", ErrSchemaMismatch, i+1, want)
		}
		got := strings.TrimSpace(header[i])
		if !strings.EqualFold(got, strings.TrimSpace(want)) {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrSchemaMismatch, i+1, got, want)
		}
	}
	return nil
}
