package pipeline

import (
	"errors"

	"dicomscrub/internal/dicomanon"
	"dicomscrub/internal/registry"
	"dicomscrub/internal/sheet"
)

// ErrUnresolvedSource marks a row whose imaging files could not be located.
// Row-local: the cleaned row is still written, only the imaging step is
// skipped.
var ErrUnresolvedSource = errors.New("imaging files unresolved")

// ErrLocked indicates another run holds the destination lock.
var ErrLocked = errors.New("destination locked by another run")

// Fatal reports whether err compromises the integrity of the whole run.
// Everything else is scoped to one row or one file: it is logged with
// enough context for manual follow-up and processing continues.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	var conflict *registry.ErrPseudonymConflict
	switch {
	case errors.Is(err, sheet.ErrWrite),
		errors.Is(err, sheet.ErrSchemaMismatch),
		errors.Is(err, dicomanon.ErrEngineUnavailable),
		errors.Is(err, ErrLocked),
		errors.As(err, &conflict):
		return true
	}
	return false
}
