package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	if !strings.HasPrefix(id, LocalPrefix) {
		t.Fatalf("expected prefix %q, got %q", LocalPrefix, id)
	}
	hexPart := strings.TrimPrefix(id, LocalPrefix)
	if len(hexPart) != 12 {
		t.Errorf("expected 12 hex characters, got %d", len(hexPart))
	}
	for _, c := range hexPart {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("expected hex character, got %c", c)
		}
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Generate()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{Generate(), true},
		{"local-abc", true},
		{"3f2a9c1e-0000-4000-8000-000000000000", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsLocal(tt.id); got != tt.want {
			t.Errorf("IsLocal(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
