package dicomanon

import (
	"context"
	"errors"
)

// Quarantine is the routing decision for a processed file.
type Quarantine int

const (
	// QuarantineNone routes the file to the normal cleaned destination.
	QuarantineNone Quarantine = iota
	// QuarantineBurntIn routes files the engine or header flags as carrying
	// burnt-in annotations.
	QuarantineBurntIn
	// QuarantineProtocol routes files whose series description is
	// "Patient Protocol"; those dose summaries routinely embed patient
	// demographics in the pixel data.
	QuarantineProtocol
)

// String implements fmt.Stringer for log output.
func (q Quarantine) String() string {
	switch q {
	case QuarantineBurntIn:
		return "burnt-in"
	case QuarantineProtocol:
		return "patient-protocol"
	default:
		return "none"
	}
}

// Result is what the external engine reports for one cleaned file.
type Result struct {
	// CleanedAttributes maps audited DICOM attribute names to the values
	// the engine wrote into the cleaned file.
	CleanedAttributes map[string]string
	// BurntIn is set when the engine detects burnt-in annotation.
	BurntIn bool
	// SeriesDescription as the engine read it from the source file.
	SeriesDescription string
}

// Engine is the external de-identification collaborator. Implementations
// must write the cleaned file to outputPath on success.
type Engine interface {
	// Deidentify cleans inputPath into outputPath and reports the result.
	Deidentify(ctx context.Context, inputPath, outputPath string) (Result, error)
	// Available reports whether the engine can be invoked at all. Called
	// once before the run; failure aborts it.
	Available() error
}

// ErrEngine marks a per-file engine failure. File-local: the file is
// skipped and logged, the run continues.
var ErrEngine = errors.New("de-identification engine failed")

// ErrEngineUnavailable marks an engine that cannot be invoked at all.
// Fatal: the run aborts.
var ErrEngineUnavailable = errors.New("de-identification engine unavailable")
