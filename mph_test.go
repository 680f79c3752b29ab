package strata

import "testing"

func TestBuildMPHEmpty(t *testing.T) {
	m, err := BuildMPH([]string{}, hashString)
	if err != nil {
		t.Fatalf("BuildMPH(empty) error = %v", err)
	}
	if _, ok := m.Lookup("anything"); ok {
		t.Error("Lookup on empty MPH returned ok=true")
	}
}

func TestBuildMPHLookupAllKeys(t *testing.T) {
	keys := []string{"quick", "brown", "fox", "jump", "lazi", "dog", "run", "sand", "slow"}
	m, err := BuildMPH(keys, hashString)
	if err != nil {
		t.Fatalf("BuildMPH error = %v", err)
	}
	if m.Len() != len(keys) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(keys))
	}

	seen := make(map[int]string)
	for _, k := range keys {
		slot, ok := m.Lookup(k)
		if !ok {
			t.Fatalf("Lookup(%q) ok = false, want true", k)
		}
		if slot < 0 || slot >= len(keys) {
			t.Fatalf("Lookup(%q) slot = %d out of range", k, slot)
		}
		if prev, dup := seen[slot]; dup {
			t.Fatalf("slot %d assigned to both %q and %q", slot, prev, k)
		}
		seen[slot] = k
	}
}

func TestBuildMPHUnknownKeyRejected(t *testing.T) {
	keys := []string{"quick", "brown", "fox"}
	m, err := BuildMPH(keys, hashString)
	if err != nil {
		t.Fatalf("BuildMPH error = %v", err)
	}
	for _, unknown := range []string{"zzzzz", "slow", ""} {
		if _, ok := m.Lookup(unknown); ok {
			t.Errorf("Lookup(%q) ok = true, want false", unknown)
		}
	}
}

func TestBuildMPHUint32Keys(t *testing.T) {
	keys := []uint32{1, 2, 3, 4, 5, 100, 1000}
	m, err := BuildMPH(keys, hashUint32)
	if err != nil {
		t.Fatalf("BuildMPH error = %v", err)
	}
	for _, k := range keys {
		if _, ok := m.Lookup(k); !ok {
			t.Errorf("Lookup(%d) ok = false, want true", k)
		}
	}
	if _, ok := m.Lookup(uint32(999)); ok {
		t.Error("Lookup(999) ok = true, want false")
	}
}

func TestBuildMPHSentenceIDKeys(t *testing.T) {
	keys := []SentenceID{{1, 0}, {1, 1}, {2, 0}, {3, 5}}
	m, err := BuildMPH(keys, hashSentenceID)
	if err != nil {
		t.Fatalf("BuildMPH error = %v", err)
	}
	for _, k := range keys {
		if _, ok := m.Lookup(k); !ok {
			t.Errorf("Lookup(%+v) ok = false, want true", k)
		}
	}
	if _, ok := m.Lookup(SentenceID{9, 9}); ok {
		t.Error("Lookup on absent SentenceID returned ok=true")
	}
}
