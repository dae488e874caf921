package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dicomscrub/internal/config"
)

// Policy controls how date columns are rewritten in the cleaned output.
type Policy struct {
	// Granularity is one of config.GranularityMonth, GranularityYear,
	// GranularityNone.
	Granularity string
	// DiagnosisAsDeltaDays rewrites the diagnosis date as the number of
	// days since the screening date instead of coarsening it.
	DiagnosisAsDeltaDays bool
}

// dateLayouts are the input formats accepted for the date columns. The
// registry export has used both ISO dates and dotted European dates.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable date %q", ErrMalformedRow, value)
}

// Coarsen reduces a date to the configured granularity.
func Coarsen(value, granularity string) (string, error) {
	if granularity == config.GranularityNone {
		return value, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return "", err
	}
	switch granularity {
	case config.GranularityMonth:
		return t.Format("2006-01"), nil
	case config.GranularityYear:
		return t.Format("2006"), nil
	default:
		return "", fmt.Errorf("unknown granularity %q", granularity)
	}
}

// Clean builds the de-identified output record for a validated row: the two
// identifier columns collapse into the single pseudonym column, the
// screening date is coarsened, and the diagnosis date is coarsened or
// rewritten as a day delta per the policy. All other columns pass through
// untouched.
func Clean(row Row, pseudonym string, policy Policy) ([]string, error) {
	screening, err := Coarsen(row.ScreeningDate(), policy.Granularity)
	if err != nil {
		return nil, fmt.Errorf("row %d screening date: %w", row.Index, err)
	}

	var diagnosis string
	if policy.DiagnosisAsDeltaDays {
		start, err := parseDate(row.ScreeningDate())
		if err != nil {
			return nil, fmt.Errorf("row %d screening date: %w", row.Index, err)
		}
		end, err := parseDate(row.DiagnosisDate())
		if err != nil {
			return nil, fmt.Errorf("row %d diagnosis date: %w", row.Index, err)
		}
		days := int(end.Sub(start).Hours() / 24)
		diagnosis = strconv.Itoa(days)
	} else {
		diagnosis, err = Coarsen(row.DiagnosisDate(), policy.Granularity)
		if err != nil {
			return nil, fmt.Errorf("row %d diagnosis date: %w", row.Index, err)
		}
	}

	out := make([]string, 0, len(row.Fields)-1)
	out = append(out, pseudonym)
	out = append(out, row.Fields[ColScreeningDate:]...)
	// After dropping the two identifier columns, the date columns shift
	// left: screening lands at index 1, diagnosis at ColDiagnosisDate-1.
	out[1] = screening
	out[ColDiagnosisDate-1] = diagnosis
	return out, nil
}

// CleanHeader rewrites the input header for the cleaned output: the two
// identifier columns are replaced by a single "pseudonym" column.
func CleanHeader(header []string) []string {
	out := make([]string, 0, len(header)-1)
	out = append(out, "pseudonym")
	if len(header) > ColScreeningDate {
		out = append(out, header[ColScreeningDate:]...)
	}
	return out
}
