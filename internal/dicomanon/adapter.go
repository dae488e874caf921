package dicomanon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// patientProtocolDescription quarantines series that embed demographics in
// the image itself regardless of what the engine reports.
const patientProtocolDescription = "Patient Protocol"

// WorkItem is one imaging file queued for de-identification.
type WorkItem struct {
	SourcePath string
	Pseudonym  string
}

// Outcome describes what the adapter did with one work item.
type Outcome struct {
	// Skipped is set when the file's modality is not allowed. Skipped files
	// are neither copied nor counted as errors.
	Skipped  bool
	Modality string
	// Quarantine is the routing decision for accepted files.
	Quarantine Quarantine
	// OriginalAttributes/CleanedAttributes feed the audit store.
	OriginalAttributes map[string]string
	CleanedAttributes  map[string]string
}

// Adapter drives the external engine for single files: modality filtering,
// engine invocation, and the quarantine decision. Copying the cleaned file
// to its final name is the caller's job; the adapter writes the engine
// output to the path it is given.
type Adapter struct {
	engine     Engine
	readHeader HeaderReader
	allowed    map[string]struct{}
	logger     *slog.Logger
}

// NewAdapter builds an adapter allowing the given modalities
// (case-insensitive).
func NewAdapter(engine Engine, allowedModalities []string, logger *slog.Logger, opts ...AdapterOption) *Adapter {
	allowed := make(map[string]struct{}, len(allowedModalities))
	for _, modality := range allowedModalities {
		allowed[strings.ToUpper(strings.TrimSpace(modality))] = struct{}{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{
		engine:     engine,
		readHeader: ReadHeader,
		allowed:    allowed,
		logger:     logger.With("component", "dicomanon"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithHeaderReader substitutes header parsing, primarily for tests.
func WithHeaderReader(read HeaderReader) AdapterOption {
	return func(a *Adapter) {
		if read != nil {
			a.readHeader = read
		}
	}
}

// Process handles one work item. outputPath is called only after the
// modality gate passes, so skipped files never consume an output name; the
// cleaned file is written to the returned path. Errors wrapping ErrEngine
// are file-local; ErrEngineUnavailable must abort the run.
func (a *Adapter) Process(ctx context.Context, item WorkItem, outputPath func() string) (Outcome, error) {
	header, err := a.readHeader(item.SourcePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	modality := strings.ToUpper(header.Modality)
	if _, ok := a.allowed[modality]; !ok {
		a.logger.Info("skipping disallowed modality", "modality", header.Modality, "source", item.SourcePath)
		return Outcome{Skipped: true, Modality: modality}, nil
	}

	result, err := a.engine.Deidentify(ctx, item.SourcePath, outputPath())
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Modality:           modality,
		OriginalAttributes: header.Attributes,
		CleanedAttributes:  result.CleanedAttributes,
	}

	description := result.SeriesDescription
	if description == "" {
		description = header.SeriesDescription
	}
	switch {
	case result.BurntIn || header.BurntIn:
		outcome.Quarantine = QuarantineBurntIn
	case strings.EqualFold(strings.TrimSpace(description), patientProtocolDescription):
		outcome.Quarantine = QuarantineProtocol
	}

	return outcome, nil
}
