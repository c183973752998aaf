package club

import "testing"

func TestNewLookup(t *testing.T) {
	lookup := NewLookup([]Club{
		{ID: "club-1", ExternalID: "owner-1"},
		{ID: "club-2", ExternalID: "owner-2"},
		{ID: "club-3"},
	})

	if len(lookup) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lookup))
	}
	if lookup["owner-2"] != "club-2" {
		t.Fatalf("unexpected club for owner-2: %q", lookup["owner-2"])
	}
}
