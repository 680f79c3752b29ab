package strata

import (
	"path/filepath"
	"testing"
)

func TestFlatStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	values := []uint32{10, 20, 30, 40}

	store, err := BuildFlatStorage(filepath.Join(dir, "flat.strata"), values, Uint32Codec{})
	if err != nil {
		t.Fatalf("BuildFlatStorage error = %v", err)
	}
	defer store.Close()

	if store.Len() != len(values) {
		t.Fatalf("Len() = %d, want %d", store.Len(), len(values))
	}
	for i, want := range values {
		if got := store.Get(i); got != want {
			t.Errorf("Get(%d) = %d, want %d", i, got, want)
		}
	}
	if _, ok := store.TryGet(len(values)); ok {
		t.Error("TryGet out of range returned ok=true")
	}
}

func TestVariableStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lists := [][]SentenceID{
		{{1, 0}, {1, 1}, {2, 0}},
		{},
		{{3, 5}},
	}

	store, err := BuildVariableStorage(filepath.Join(dir, "var.strata"), lists, SentenceIDCodec{})
	if err != nil {
		t.Fatalf("BuildVariableStorage error = %v", err)
	}
	defer store.Close()

	if store.Len() != len(lists) {
		t.Fatalf("Len() = %d, want %d", store.Len(), len(lists))
	}
	for i, want := range lists {
		got, ok := store.TryGet(i)
		if !ok {
			t.Fatalf("TryGet(%d) ok = false", i)
		}
		if len(got) != len(want) {
			t.Fatalf("slot %d: got %d elements, want %d", i, len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("slot %d elem %d = %+v, want %+v", i, j, got[j], want[j])
			}
		}
	}
}

type stringCodec struct{}

func (stringCodec) Encode(v string) []byte { return []byte(v) }
func (stringCodec) Decode(b []byte) string { return string(b) }

func TestArchivedStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	values := []string{"the quick brown fox", "", "jumps over the lazy dog"}

	store, err := BuildArchivedStorage(filepath.Join(dir, "archived.strata"), values, stringCodec{})
	if err != nil {
		t.Fatalf("BuildArchivedStorage error = %v", err)
	}
	defer store.Close()

	for i, want := range values {
		got, ok := store.TryGet(i)
		if !ok {
			t.Fatalf("TryGet(%d) ok = false", i)
		}
		if got != want {
			t.Errorf("slot %d = %q, want %q", i, got, want)
		}
	}
}
