package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dicomscrub/internal/registry"
)

func TestLayoutResolverListsSubjectFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "1001", "100001")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"b.dcm", "a.dicom", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	r := NewLayoutResolver(root)
	paths, err := r.Resolve(registry.SubjectKey{PersonID: "1001", InvitationID: "100001"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected two DICOM files, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a.dicom" || filepath.Base(paths[1]) != "b.dcm" {
		t.Fatalf("expected sorted paths, got %v", paths)
	}
}

func TestLayoutResolverMissingDirectoryIsUnresolved(t *testing.T) {
	r := NewLayoutResolver(t.TempDir())
	paths, err := r.Resolve(registry.SubjectKey{PersonID: "9", InvitationID: "9"})
	if err != nil {
		t.Fatalf("expected no error for missing directory, got %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestLayoutResolverEmptyKeyIsUnresolved(t *testing.T) {
	r := NewLayoutResolver(t.TempDir())
	paths, err := r.Resolve(registry.SubjectKey{})
	if err != nil || len(paths) != 0 {
		t.Fatalf("expected unresolved for empty key, got %v %v", paths, err)
	}
}

func TestUnconfiguredFails(t *testing.T) {
	_, err := Unconfigured().Resolve(registry.SubjectKey{PersonID: "1"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
