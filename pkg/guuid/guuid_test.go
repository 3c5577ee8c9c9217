package guuid

import "testing"

func TestNewProducesDistinctIDs(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a == b {
		t.Fatal("two consecutive New() calls produced the same GUUID")
	}
}

func TestStringIsLowercaseHex(t *testing.T) {
	g, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := g.String()
	if len(s) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(s), s)
	}
	for _, r := range s {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isHex {
			t.Fatalf("non-lowercase-hex rune %q in %q", r, s)
		}
	}
}
