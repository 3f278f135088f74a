package main

import (
	"strings"
	"testing"
)

// TestToggleID_AddRemove verifies the flip semantics: absent id added, present
// id removed, and the reported taken state matches.
func TestToggleID_AddRemove(t *testing.T) {
	ids, taken := toggleID(nil, "preset:creatine")
	if !taken || len(ids) != 1 {
		t.Fatalf("first toggle = (%v, %v), want added", ids, taken)
	}

	ids, taken = toggleID(ids, "preset:creatine")
	if taken || len(ids) != 0 {
		t.Errorf("second toggle = (%v, %v), want removed", ids, taken)
	}
}

// TestToggleID_OthersUntouched verifies toggling one id leaves the rest of
// the list alone.
func TestToggleID_OthersUntouched(t *testing.T) {
	ids := []string{"a", "b", "c"}
	got, taken := toggleID(ids, "b")
	if taken {
		t.Error("removing b reported taken=true")
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("ids after removing b = %v, want [a c]", got)
	}
}

// TestSupplementPresets_StableDistinctIDs verifies every preset id carries
// the "preset:" prefix (so it can never collide with a custom uuid) and is
// unique within the catalog.
func TestSupplementPresets_StableDistinctIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range supplementPresets {
		if !strings.HasPrefix(p.ID, "preset:") {
			t.Errorf("preset %q id %q lacks the preset: prefix", p.Name, p.ID)
		}
		if seen[p.ID] {
			t.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true
		if !validSupplementKinds[p.Kind] {
			t.Errorf("preset %q has unknown kind %q", p.Name, p.Kind)
		}
	}
}
