package migration

import (
	"testing"
)

func TestRegistryHasNoDuplicateVersions(t *testing.T) {
	seen := make(map[int]string)
	for _, m := range registry {
		if other, ok := seen[m.Version]; ok {
			t.Errorf("version %d registered twice: %q and %q", m.Version, other, m.Name)
		}
		seen[m.Version] = m.Name
	}
}

func TestRegistryVersionsAreContiguousFromOne(t *testing.T) {
	if len(registry) == 0 {
		t.Fatal("no migrations registered")
	}
	seen := make(map[int]bool)
	for _, m := range registry {
		seen[m.Version] = true
	}
	for v := 1; v <= len(registry); v++ {
		if !seen[v] {
			t.Errorf("missing migration version %d", v)
		}
	}
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate version")
		}
	}()

	Register(Migration{Version: registry[0].Version, Name: "dup", Run: nil})
}
