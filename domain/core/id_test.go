package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

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

func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to report IsEmpty")
	}
	if NewID().IsEmpty() {
		t.Error("Expected generated ID to be non-empty")
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID("  " + id.String() + " ")
	if err != nil {
		t.Fatalf("ParseID returned error for generated ID: %v", err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
