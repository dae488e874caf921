package dicomanon

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type fakeEngine struct {
	result Result
	err    error
	calls  int
	input  string
	output string
}

func (f *fakeEngine) Deidentify(_ context.Context, inputPath, outputPath string) (Result, error) {
	f.calls++
	f.input = inputPath
	f.output = outputPath
	return f.result, f.err
}

func (f *fakeEngine) Available() error { return nil }

func headerReader(headers map[string]Header) HeaderReader {
	return func(path string) (Header, error) {
		header, ok := headers[path]
		if !ok {
			return Header{}, errors.New("no such fixture")
		}
		return header, nil
	}
}

func TestProcessSkipsDisallowedModality(t *testing.T) {
	engine := &fakeEngine{}
	adapter := NewAdapter(engine, []string{"MG", "OT"}, slog.Default(), WithHeaderReader(headerReader(map[string]Header{
		"/src/ct.dcm": {Modality: "CT"},
	})))

	named := false
	outcome, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/ct.dcm", Pseudonym: "p"}, func() string {
		named = true
		return "/out/p_0.dcm"
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !outcome.Skipped {
		t.Fatal("expected CT file to be skipped")
	}
	if engine.calls != 0 {
		t.Fatal("engine must not run for skipped modalities")
	}
	if named {
		t.Fatal("skipped files must not consume an output name")
	}
}

func TestProcessCleanFile(t *testing.T) {
	engine := &fakeEngine{result: Result{CleanedAttributes: map[string]string{"PatientID": "ANON"}}}
	adapter := NewAdapter(engine, []string{"mg"}, slog.Default(), WithHeaderReader(headerReader(map[string]Header{
		"/src/a.dcm": {Modality: "MG", Attributes: map[string]string{"PatientID": "123456789"}},
	})))

	outcome, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/a.dcm", Pseudonym: "p"}, func() string { return "/out/p_0.dcm" })
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if outcome.Skipped || outcome.Quarantine != QuarantineNone {
		t.Fatalf("expected clean outcome, got %+v", outcome)
	}
	if engine.input != "/src/a.dcm" || engine.output != "/out/p_0.dcm" {
		t.Fatalf("engine invoked with %q -> %q", engine.input, engine.output)
	}
	if outcome.OriginalAttributes["PatientID"] != "123456789" || outcome.CleanedAttributes["PatientID"] != "ANON" {
		t.Fatalf("audit attributes missing: %+v", outcome)
	}
}

func TestProcessQuarantinesBurntIn(t *testing.T) {
	engine := &fakeEngine{result: Result{BurntIn: true}}
	adapter := NewAdapter(engine, []string{"MG"}, slog.Default(), WithHeaderReader(headerReader(map[string]Header{
		"/src/a.dcm": {Modality: "MG"},
	})))

	outcome, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/a.dcm"}, func() string { return "/out/x.dcm" })
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if outcome.Quarantine != QuarantineBurntIn {
		t.Fatalf("expected burnt-in quarantine, got %s", outcome.Quarantine)
	}
}

func TestProcessQuarantinesPatientProtocolFromHeader(t *testing.T) {
	engine := &fakeEngine{}
	adapter := NewAdapter(engine, []string{"OT"}, slog.Default(), WithHeaderReader(headerReader(map[string]Header{
		"/src/proto.dcm": {Modality: "OT", SeriesDescription: "patient protocol"},
	})))

	outcome, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/proto.dcm"}, func() string { return "/out/x.dcm" })
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if outcome.Quarantine != QuarantineProtocol {
		t.Fatalf("expected protocol quarantine, got %s", outcome.Quarantine)
	}
}

func TestProcessHeaderFailureIsEngineError(t *testing.T) {
	adapter := NewAdapter(&fakeEngine{}, []string{"MG"}, slog.Default(), WithHeaderReader(headerReader(nil)))

	_, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/missing.dcm"}, func() string { return "/out/x.dcm" })
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("expected ErrEngine, got %v", err)
	}
}

func TestProcessPropagatesUnavailable(t *testing.T) {
	engine := &fakeEngine{err: ErrEngineUnavailable}
	adapter := NewAdapter(engine, []string{"MG"}, slog.Default(), WithHeaderReader(headerReader(map[string]Header{
		"/src/a.dcm": {Modality: "MG"},
	})))

	_, err := adapter.Process(context.Background(), WorkItem{SourcePath: "/src/a.dcm"}, func() string { return "/out/x.dcm" })
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}
