package utils

import (
	"strings"
	"testing"
)

func TestNewPublicIDFormat(t *testing.T) {
	id, err := NewPublicID()
	if err != nil {
		t.Fatalf("NewPublicID: %v", err)
	}
	if !strings.HasPrefix(id, "A-") {
		t.Fatalf("expected A- prefix, got %q", id)
	}
	if len(id) != 11 {
		t.Fatalf("expected 11 characters, got %d (%q)", len(id), id)
	}
	for _, r := range id[2:] {
		if !strings.ContainsRune(publicIDAlphabet, r) {
			t.Fatalf("unexpected character %q in %q", r, id)
		}
	}
}

func TestNewPublicIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NewPublicID()
		if err != nil {
			t.Fatalf("NewPublicID: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = struct{}{}
	}
}
