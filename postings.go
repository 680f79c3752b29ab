package strata

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// defaultMergeThreshold is the element count below which Merge falls back to
// a scalar two-pointer merge instead of fanning out in parallel. It is a var,
// not a const, so Config.Apply can override it for corpora whose sizes make
// the default a poor fit; spec's design notes call 32,768 "a starting
// point... expose as a tuning constant."
var defaultMergeThreshold = 32768

// SentenceIDList is a posting list: the sorted sequence of sentence ids
// containing one term. The reserved Tombstone value may appear in positions
// marked for removal by Retain but not yet compacted; Iter filters it
// out on read, trading an O(n) linear scan for never having to shift
// elements during a parallel Retain pass.
type SentenceIDList []SentenceID

// Iter returns a new slice containing only the non-tombstone entries, in
// their original order (which remains ascending, since the tombstone sorts
// below every real id).
func (l SentenceIDList) Iter() []SentenceID {
	out := make([]SentenceID, 0, len(l))
	for _, id := range l {
		if !id.IsTombstone() {
			out = append(out, id)
		}
	}
	return out
}

// Retain overwrites, in place, every valid slot whose predicate returns
// false with the tombstone. Length is unchanged; retain never shifts
// elements, which is what lets it run over disjoint chunks in parallel.
// Lists shorter than parallelRetainThreshold run on the calling goroutine.
func (l SentenceIDList) Retain(pred func(SentenceID) bool) {
	const parallelRetainThreshold = 4096
	if len(l) < parallelRetainThreshold {
		retainRange(l, pred)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	chunk := (len(l) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(l); start += chunk {
		end := start + chunk
		if end > len(l) {
			end = len(l)
		}
		slice := l[start:end]
		g.Go(func() error {
			retainRange(slice, pred)
			return nil
		})
	}
	_ = g.Wait() // retainRange never errors
}

func retainRange(slice SentenceIDList, pred func(SentenceID) bool) {
	for i, id := range slice {
		if id.IsTombstone() {
			continue
		}
		if !pred(id) {
			slice[i] = Tombstone
		}
	}
}

// RetainByBinarySearch is the common shape Retain is used in by the query
// algebra: keep v iff it is present in other (itself sorted) and passes
// filter. other must already be tombstone-free (e.g. a raw posting list
// fetched from the index, never itself Retain'd).
func (l SentenceIDList) RetainByBinarySearch(other []SentenceID, filter func(SentenceID) bool) {
	l.Retain(func(id SentenceID) bool {
		if filter != nil && !filter(id) {
			return false
		}
		_, found := sort.Find(len(other), func(i int) int { return id.Compare(other[i]) })
		return found
	})
}

// Merge returns the sorted multiset union of already-sorted a and b.
// Duplicates are preserved, not removed — callers that need a deduplicated
// result (e.g. a top-level union query) dedup afterward. Below threshold
// elements total, Merge runs a scalar two-pointer merge; above it, it picks
// the median of the larger side, binary-searches that value's insertion
// point in the smaller side, places the pivot at the correct output index,
// and recurses on the two halves in parallel via errgroup.
func Merge(a, b []SentenceID, threshold int) []SentenceID {
	out := make([]SentenceID, len(a)+len(b))
	mergeInto(out, a, b, threshold)
	return out
}

func mergeInto(dst []SentenceID, a, b []SentenceID, threshold int) {
	if len(a)+len(b) <= threshold {
		scalarMerge(dst, a, b)
		return
	}

	// Ensure a is the larger side so the pivot is always drawn from it.
	if len(a) < len(b) {
		mergeInto(dst, b, a, threshold)
		// scalarMerge/recursion below write in (a,b) order; since we swapped
		// the roles, reuse the symmetric call directly instead of unswapping.
		return
	}

	mid := len(a) / 2
	pivot := a[mid]

	// Position of pivot within b: first index whose element is > pivot.
	bSplit := sort.Search(len(b), func(i int) bool { return pivot.Compare(b[i]) < 0 })

	outLeft := mid + bSplit
	dst[outLeft] = pivot

	leftDst := dst[:outLeft]
	rightDst := dst[outLeft+1:]

	var g errgroup.Group
	g.Go(func() error {
		mergeInto(leftDst, a[:mid], b[:bSplit], threshold)
		return nil
	})
	g.Go(func() error {
		mergeInto(rightDst, a[mid+1:], b[bSplit:], threshold)
		return nil
	})
	_ = g.Wait()
}

// scalarMerge is a textbook two-pointer merge, O(len(a)+len(b)).
func scalarMerge(dst []SentenceID, a, b []SentenceID) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Compare(b[j]) <= 0 {
			dst[k] = a[i]
			i++
		} else {
			dst[k] = b[j]
			j++
		}
		k++
	}
	for ; i < len(a); i++ {
		dst[k] = a[i]
		k++
	}
	for ; j < len(b); j++ {
		dst[k] = b[j]
		k++
	}
}

// dedupSorted removes adjacent duplicates from an already-sorted slice,
// in place, returning the shortened slice.
func dedupSorted(ids []SentenceID) []SentenceID {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
