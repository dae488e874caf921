package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SubjectKey identifies one subject across rows and files. Both parts come
// straight from the source spreadsheet and must never appear in any output.
type SubjectKey struct {
	PersonID     string
	InvitationID string
}

// String renders the key for log and error messages only. It is safe to log
// because conflict errors redact it before surfacing.
func (k SubjectKey) String() string {
	return k.PersonID + "/" + k.InvitationID
}

// ErrPseudonymConflict is returned when two distinct subject keys are
// preloaded with the same externally supplied pseudonym.
type ErrPseudonymConflict struct {
	Pseudonym string
}

func (e *ErrPseudonymConflict) Error() string {
	return fmt.Sprintf("pseudonym %q assigned to more than one subject", e.Pseudonym)
}

// Registry assigns a stable pseudonym to every subject key it sees. It is
// scoped to a single run: construct one per invocation, pass it through the
// pipeline, and drop it when the run ends. Assignments are never persisted,
// so re-running the tool produces fresh pseudonyms.
//
// Not safe for concurrent use; the pipeline is single-threaded by design.
type Registry struct {
	assignments map[SubjectKey]string
	claimed     map[string]SubjectKey
	generate    func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithGenerator overrides pseudonym generation, primarily for deterministic
// tests.
func WithGenerator(generate func() string) Option {
	return func(r *Registry) {
		if generate != nil {
			r.generate = generate
		}
	}
}

// New constructs an empty registry. Generated pseudonyms are 32-character
// lowercase hex tokens (a random UUID with the dashes stripped), which makes
// them collision-free for any realistic run size.
func New(opts ...Option) *Registry {
	r := &Registry{
		assignments: make(map[SubjectKey]string),
		claimed:     make(map[string]SubjectKey),
		generate: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Preload records an externally supplied pseudonym for a subject before the
// run starts. It fails with ErrPseudonymConflict if the pseudonym is already
// claimed by a different subject, and is a no-op when re-registering an
// identical assignment.
func (r *Registry) Preload(key SubjectKey, pseudonym string) error {
	if existing, ok := r.claimed[pseudonym]; ok && existing != key {
		return &ErrPseudonymConflict{Pseudonym: pseudonym}
	}
	if existing, ok := r.assignments[key]; ok && existing != pseudonym {
		return fmt.Errorf("subject already assigned pseudonym %q", existing)
	}
	r.assignments[key] = pseudonym
	r.claimed[pseudonym] = key
	return nil
}

// AssignOrGet returns the pseudonym for key, generating and recording one on
// first encounter. Repeated calls with an equal key always return the same
// value; distinct keys always receive distinct values.
func (r *Registry) AssignOrGet(key SubjectKey) string {
	if pseudonym, ok := r.assignments[key]; ok {
		return pseudonym
	}
	pseudonym := r.generate()
	for {
		if _, taken := r.claimed[pseudonym]; !taken {
			break
		}
		pseudonym = r.generate()
	}
	r.assignments[key] = pseudonym
	r.claimed[pseudonym] = key
	return pseudonym
}

// Len reports how many subjects have been assigned a pseudonym.
func (r *Registry) Len() int {
	return len(r.assignments)
}

// Pseudonyms returns the assigned pseudonyms in sorted order. Keys are
// deliberately not exposed; nothing outside the registry can walk back from
// a pseudonym to a person.
func (r *Registry) Pseudonyms() []string {
	out := make([]string, 0, len(r.claimed))
	for pseudonym := range r.claimed {
		out = append(out, pseudonym)
	}
	sort.Strings(out)
	return out
}
