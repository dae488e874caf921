package registry

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssignOrGetIsIdempotent(t *testing.T) {
	r := New()
	key := SubjectKey{PersonID: "1001", InvitationID: "100001"}

	first := r.AssignOrGet(key)
	if first == "" {
		t.Fatal("expected non-empty pseudonym")
	}
	if len(first) != 32 {
		t.Fatalf("expected 32-char hex token, got %q", first)
	}
	for i := 0; i < 5; i++ {
		if got := r.AssignOrGet(key); got != first {
			t.Fatalf("call %d returned %q, want %q", i, got, first)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected one assignment, got %d", r.Len())
	}
}

func TestDistinctKeysGetDistinctPseudonyms(t *testing.T) {
	r := New()
	seen := map[string]SubjectKey{}
	for i := 0; i < 100; i++ {
		key := SubjectKey{PersonID: fmt.Sprintf("p%d", i), InvitationID: "inv"}
		pseudonym := r.AssignOrGet(key)
		if prev, dup := seen[pseudonym]; dup {
			t.Fatalf("pseudonym %q assigned to both %v and %v", pseudonym, prev, key)
		}
		seen[pseudonym] = key
	}
	// Same person, different invitation is a different subject.
	a := r.AssignOrGet(SubjectKey{PersonID: "p0", InvitationID: "other"})
	b := r.AssignOrGet(SubjectKey{PersonID: "p0", InvitationID: "inv"})
	if a == b {
		t.Fatal("expected distinct pseudonyms for distinct invitation IDs")
	}
}

func TestGeneratorRetriesOnCollision(t *testing.T) {
	tokens := []string{"aaaa", "aaaa", "bbbb"}
	r := New(WithGenerator(func() string {
		token := tokens[0]
		if len(tokens) > 1 {
			tokens = tokens[1:]
		}
		return token
	}))

	first := r.AssignOrGet(SubjectKey{PersonID: "1"})
	second := r.AssignOrGet(SubjectKey{PersonID: "2"})
	if first != "aaaa" || second != "bbbb" {
		t.Fatalf("expected collision retry, got %q and %q", first, second)
	}
}

func TestPreloadConflicts(t *testing.T) {
	r := New()
	if err := r.Preload(SubjectKey{PersonID: "1"}, "tok"); err != nil {
		t.Fatalf("preload: %v", err)
	}
	// Re-registering the identical assignment is fine.
	if err := r.Preload(SubjectKey{PersonID: "1"}, "tok"); err != nil {
		t.Fatalf("idempotent preload: %v", err)
	}

	err := r.Preload(SubjectKey{PersonID: "2"}, "tok")
	var conflict *ErrPseudonymConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrPseudonymConflict, got %v", err)
	}

	if got := r.AssignOrGet(SubjectKey{PersonID: "1"}); got != "tok" {
		t.Fatalf("expected preloaded pseudonym, got %q", got)
	}
}

func TestPseudonymsDoesNotExposeKeys(t *testing.T) {
	r := New(WithGenerator(func() string { return "zz" }))
	r.AssignOrGet(SubjectKey{PersonID: "secret", InvitationID: "hidden"})

	for _, pseudonym := range r.Pseudonyms() {
		if pseudonym == "secret" || pseudonym == "hidden" {
			t.Fatal("registry leaked a source identifier")
		}
	}
}
