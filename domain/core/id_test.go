package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(id.String())
	if err != nil {
		t.Fatalf("ParseRunID(%q): %v", id, err)
	}
	if parsed != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := ParseRunID("  "); err == nil {
		t.Error("expected error for blank run ID")
	}
	if _, err := ParseRunID("not-a-uuid"); err == nil {
		t.Error("expected error for malformed run ID")
	}
}

func TestErrorHelpers(t *testing.T) {
	ref := NewReferenceError("age", "not found in dataset")
	if !IsReferenceError(ref) || IsPreconditionError(ref) {
		t.Errorf("reference error misclassified: %v", ref)
	}
	if ref.Error() != "reference error: variable age: not found in dataset" {
		t.Errorf("unexpected message: %q", ref.Error())
	}

	pre := NewPreconditionError("", "no variables selected")
	if !errors.Is(pre, ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", pre)
	}

	ins := NewInsufficientDataError("shapiro-wilk", 3, 2)
	if !IsStatisticalError(ins) {
		t.Errorf("expected statistical error, got %v", ins)
	}
}
