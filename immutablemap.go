package strata

// keyedStorage is the subset of FlatStorage/VariableStorage/ArchivedStorage
// that ImmutableMap needs: fetch by MPH slot, report element count.
type keyedStorage[V any] interface {
	GetUnchecked(i int) V
	Len() int
}

// ImmutableMap combines a minimal perfect hash over a fixed key set with one
// of the three storage variants, plus the parallel reordered-key array used
// to verify a lookup actually found the requested key (see MPH's doc
// comment). This is the substrate every on-disk structure in the database is
// built on: sentences.index (K=uint32 term id, V=[]SentenceID), sentences.storage
// (K=SentenceID, V=archived Sentence), documents.storage (K=uint32 doc id,
// V=archived D).
type ImmutableMap[K comparable, V any] struct {
	mph   *MPH[K]
	store keyedStorage[V]
}

// NewImmutableMap wraps an already-built MPH and storage variant. The two
// must have been built over the same key set, in the same order, which is
// the contract the builder establishes by laying values out with
// reorderKeyed.
func NewImmutableMap[K comparable, V any](mph *MPH[K], store keyedStorage[V]) *ImmutableMap[K, V] {
	return &ImmutableMap[K, V]{mph: mph, store: store}
}

// Get looks up k, returning ok=false if k is absent from the key set (which
// includes the case of an MPH collision with an unrelated, present key —
// Lookup's key-array check is what makes this distinction possible).
func (m *ImmutableMap[K, V]) Get(k K) (V, bool) {
	slot, ok := m.mph.Lookup(k)
	if !ok {
		var zero V
		return zero, false
	}
	return m.store.GetUnchecked(slot), true
}

// Len returns the number of keys in the map.
func (m *ImmutableMap[K, V]) Len() int {
	return m.mph.Len()
}

// reorderKeyed reorders values so that values[i] corresponds to mph's slot i,
// i.e. so that a later ImmutableMap.Get(keys[j]) finds values[j]. This is
// the "record positions[slot]... store k in reordered_keys[slot]" step of the
// build protocol, applied generically to whichever slice of values a given
// storage variant is about to be built from.
func reorderKeyed[K comparable, V any](mph *MPH[K], keys []K, values []V) []V {
	out := make([]V, len(keys))
	index := make(map[K]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	for slot, k := range mph.keys {
		out[slot] = values[index[k]]
	}
	return out
}
