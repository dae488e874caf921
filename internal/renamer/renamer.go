// Package renamer derives non-identifying output filenames.
package renamer

import (
	"fmt"
	"strings"
)

// Renamer hands out destination filenames of the form
// <pseudonym>_<n><ext>, with n counting up from 0 per pseudonym. It never
// looks at the original filename, so nothing identifying can survive into
// the output name. Counters are shared across the clean and quarantine
// destinations; a subject's files never collide regardless of routing.
//
// Owned by the single processing goroutine; not safe for concurrent use.
type Renamer struct {
	counters map[string]int
}

// New constructs a Renamer with no assigned names.
func New() *Renamer {
	return &Renamer{counters: make(map[string]int)}
}

// Next returns the next filename for the pseudonym. extension should carry
// its leading dot; an empty extension defaults to ".dcm" so outputs are
// always recognizable as DICOM.
func (r *Renamer) Next(pseudonym, extension string) string {
	extension = strings.TrimSpace(extension)
	if extension == "" {
		extension = ".dcm"
	} else if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	n := r.counters[pseudonym]
	r.counters[pseudonym] = n + 1
	return fmt.Sprintf("%s_%d%s", pseudonym, n, extension)
}

// Count reports how many names have been handed out for the pseudonym.
func (r *Renamer) Count(pseudonym string) int {
	return r.counters[pseudonym]
}
