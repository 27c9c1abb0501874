package session

import "testing"

func TestNewGeneratesStableID(t *testing.T) {
	src, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	id := src.ID()
	if len(id) != 16 {
		t.Fatalf("expected 16-char id, got %q", id)
	}
	for i := 0; i < 10; i++ {
		if src.ID() != id {
			t.Fatalf("ID() changed between calls: %q != %q", src.ID(), id)
		}
	}
}

func TestNewSourcesDoNotCollide(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		src, err := New()
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if seen[src.ID()] {
			t.Fatalf("duplicate id %q", src.ID())
		}
		seen[src.ID()] = true
	}
}
