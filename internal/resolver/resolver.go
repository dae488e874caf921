package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dicomscrub/internal/registry"
)

// PathResolver maps a subject to the imaging files belonging to it. Every
// site stores its archive differently, so the implementation is supplied by
// the operator; LayoutResolver covers the common person/invitation
// directory convention.
//
// Resolve returns the absolute paths of the subject's imaging files. An
// empty slice with a nil error means "no files for this subject" and is not
// an error: the row is still written to the cleaned spreadsheet, only the
// imaging step is skipped.
type PathResolver interface {
	Resolve(key registry.SubjectKey) ([]string, error)
}

// Func adapts a plain function to the PathResolver interface.
type Func func(key registry.SubjectKey) ([]string, error)

// Resolve implements PathResolver.
func (f Func) Resolve(key registry.SubjectKey) ([]string, error) {
	return f(key)
}

// ErrNotConfigured is returned by Unconfigured. It signals that the operator
// has not supplied a site-specific resolver yet.
var ErrNotConfigured = errors.New("path resolver not configured for this site")

// Unconfigured returns a resolver that always fails with ErrNotConfigured.
// It is the default so a misconfigured run fails loudly on the first row
// instead of silently producing an empty destination.
func Unconfigured() PathResolver {
	return Func(func(registry.SubjectKey) ([]string, error) {
		return nil, ErrNotConfigured
	})
}

// LayoutResolver resolves files under <Root>/<personID>/<invitationID>/,
// the directory convention the screening archive has historically used.
type LayoutResolver struct {
	Root string
	// Extensions filters candidate files by extension (case-insensitive,
	// with leading dot). Empty means every regular file matches.
	Extensions []string
}

// NewLayoutResolver builds a LayoutResolver accepting .dcm and .dicom files.
func NewLayoutResolver(root string) *LayoutResolver {
	return &LayoutResolver{Root: root, Extensions: []string{".dcm", ".dicom"}}
}

// Resolve lists the subject's directory. A missing directory resolves to no
// files rather than an error, per the unresolved-source contract.
func (r *LayoutResolver) Resolve(key registry.SubjectKey) ([]string, error) {
	if strings.TrimSpace(key.PersonID) == "" || strings.TrimSpace(key.InvitationID) == "" {
		return nil, nil
	}
	dir := filepath.Join(r.Root, key.PersonID, key.InvitationID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !r.matchesExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *LayoutResolver) matchesExtension(name string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range r.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
