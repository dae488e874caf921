// Package testsupport provides fixtures shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"dicomscrub/internal/config"
)

// NewConfig returns a fully normalized configuration rooted in temporary
// directories, suitable for exercising the pipeline without touching the
// user's home directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.AuditDB = filepath.Join(base, "identity.db")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default test config invalid: %v", err)
	}
	return &cfg
}
