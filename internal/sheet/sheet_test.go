package sheet

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dicomscrub/internal/config"
)

func expectedHeader() []string {
	return []string{"pID", "invID", "O2_Bildetakingsdato", "", "", "", "", "", "", "Diagnosedato"}
}

func TestReadHeaderValidatesSchema(t *testing.T) {
	input := "pID,invID,O2_Bildetakingsdato,a,b,c,d,e,f,Diagnosedato\n123,INV-01,2020-01-15,a,b,c,d,e,f,2020-03-01\n"
	r := NewReader(strings.NewReader(input), ',')
	if err := r.ReadHeader(expectedHeader()); err != nil {
		t.Fatalf("ReadHeader returned error: %v", err)
	}

	row, err := r.Read()
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if row.Index != 1 {
		t.Fatalf("expected row index 1, got %d", row.Index)
	}
	if row.PersonID() != "123" || row.InvitationID() != "INV-01" {
		t.Fatalf("unexpected identifiers: %q %q", row.PersonID(), row.InvitationID())
	}
}

func TestReadHeaderMismatchFailsFast(t *testing.T) {
	input := "pID,visit,date,a,b,c,d,e,f,Diagnosedato\n"
	r := NewReader(strings.NewReader(input), ',')
	err := r.ReadHeader(expectedHeader())
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestValidateHeaderWildcardsAndCase(t *testing.T) {
	header := []string{"PID", "INVID", " o2_bildetakingsdato ", "x", "y", "z", "q", "w", "e", "diagnosedato"}
	if err := ValidateHeader(header, expectedHeader()); err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}
	if err := ValidateHeader([]string{"pID", "invID"}, expectedHeader()); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatal("expected short header to mismatch")
	}
}

func TestRowValidateRejectsShortRows(t *testing.T) {
	row := Row{Index: 3, Fields: []string{"1", "2", "3"}}
	if err := row.Validate(); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
	full := Row{Index: 4, Fields: make([]string, MinFields)}
	if err := full.Validate(); err != nil {
		t.Fatalf("expected ten-field row to validate, got %v", err)
	}
}

func TestCleanCollapsesIdentifiersAndCoarsensDates(t *testing.T) {
	row := Row{
		Index:  1,
		Fields: []string{"123456789", "INV-01", "2020-01-15", "a", "b", "c", "d", "e", "f", "2020-03-01"},
	}
	out, err := Clean(row, "abc123", Policy{Granularity: config.GranularityMonth})
	if err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}
	if out[0] != "abc123" {
		t.Fatalf("expected pseudonym first, got %q", out[0])
	}
	if out[1] != "2020-01" {
		t.Fatalf("expected coarsened screening date, got %q", out[1])
	}
	if out[8] != "2020-03" {
		t.Fatalf("expected coarsened diagnosis date, got %q", out[8])
	}
	if len(out) != len(row.Fields)-1 {
		t.Fatalf("expected %d output fields, got %d", len(row.Fields)-1, len(out))
	}
	for _, field := range out {
		if field == "123456789" || field == "INV-01" {
			t.Fatalf("cleaned row leaked a source identifier: %v", out)
		}
	}
}

func TestCleanYearGranularityAndDottedDates(t *testing.T) {
	row := Row{
		Index:  1,
		Fields: []string{"1", "2", "15.01.2020", "a", "b", "c", "d", "e", "f", "01.03.2020"},
	}
	out, err := Clean(row, "p", Policy{Granularity: config.GranularityYear})
	if err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}
	if out[1] != "2020" || out[8] != "2020" {
		t.Fatalf("unexpected coarsened dates: %q %q", out[1], out[8])
	}
}

func TestCleanDeltaDays(t *testing.T) {
	row := Row{
		Index:  1,
		Fields: []string{"1", "2", "2020-01-15", "a", "b", "c", "d", "e", "f", "2020-03-01"},
	}
	out, err := Clean(row, "p", Policy{Granularity: config.GranularityMonth, DiagnosisAsDeltaDays: true})
	if err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}
	if out[8] != "46" {
		t.Fatalf("expected 46-day delta, got %q", out[8])
	}
}

func TestCleanUnparsableDateIsMalformed(t *testing.T) {
	row := Row{
		Index:  1,
		Fields: []string{"1", "2", "sometime", "a", "b", "c", "d", "e", "f", "2020-03-01"},
	}
	if _, err := Clean(row, "p", Policy{Granularity: config.GranularityMonth}); !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected ErrMalformedRow, got %v", err)
	}
	// Granularity none passes dates through without parsing.
	out, err := Clean(row, "p", Policy{Granularity: config.GranularityNone})
	if err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}
	if out[1] != "sometime" {
		t.Fatalf("expected passthrough date, got %q", out[1])
	}
}

func TestWriterAppendsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewWriter(path, ',')
	if err != nil {
		t.Fatalf("NewWriter returned error: %v", err)
	}

	header := []string{"pID", "invID", "O2_Bildetakingsdato", "a", "b", "c", "d", "e", "f", "Diagnosedato"}
	if err := w.Append(CleanHeader(header)); err != nil {
		t.Fatalf("append header: %v", err)
	}
	if err := w.Append([]string{"p", "2020-01", "a", "b", "c", "d", "e", "f", "2020-03"}); err != nil {
		t.Fatalf("append row: %v", err)
	}

	// Flushed before Close: an interrupted run keeps complete rows.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines before Close, got %d", len(lines))
	}
	if lines[0] != "pseudonym,O2_Bildetakingsdato,a,b,c,d,e,f,Diagnosedato" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReaderEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""), ',')
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
