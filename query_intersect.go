package strata

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// IntersectingQuery matches sentences satisfying every one of its
// sub-queries (logical AND). Sub-queries are evaluated in parallel — each
// told CallerIntersection so it can skip deduplicating its own output,
// since this node's binary-search retain tolerates duplicates — then
// combined exactly like PhraseQuery: sort by length ascending, seed from
// the smallest, retain the rest by binary search.
type IntersectingQuery[DM, SM any] struct {
	Subs   []Query[DM, SM]
	Filter DocumentFilter[DM]
}

// NewIntersectingQuery builds an IntersectingQuery over subs, restricted by
// an additional filter (sub-queries may also carry their own filters;
// applying both is redundant work, not a correctness problem).
func NewIntersectingQuery[DM, SM any](subs []Query[DM, SM], filter DocumentFilter[DM]) *IntersectingQuery[DM, SM] {
	return &IntersectingQuery[DM, SM]{Subs: subs, Filter: filter}
}

func (q *IntersectingQuery[DM, SM]) docFilterFunc(engine *Engine[DM, SM]) func(SentenceID) bool {
	if q.Filter == nil || !q.Filter.Needed() {
		return nil
	}
	return func(id SentenceID) bool { return q.Filter.FilterDocument(engine.docMetaFor(id)) }
}

func (q *IntersectingQuery[DM, SM]) FindSentenceIDs(engine *Engine[DM, SM], caller CallerKind) SentenceIDList {
	if len(q.Subs) == 0 {
		return nil
	}

	lists := make([]SentenceIDList, len(q.Subs))
	var g errgroup.Group
	for i, sub := range q.Subs {
		i, sub := i, sub
		g.Go(func() error {
			lists[i] = sub.FindSentenceIDs(engine, CallerIntersection)
			return nil
		})
	}
	_ = g.Wait() // sub-queries never error

	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	seed := make(SentenceIDList, len(lists[0]))
	copy(seed, lists[0])

	filter := q.docFilterFunc(engine)
	if len(lists) > 1 {
		for _, other := range lists[1:] {
			// Sub-query results may carry tombstones from their own
			// Retain; drop them so the binary search sees a sorted list.
			seed.RetainByBinarySearch(other.Iter(), filter)
		}
	} else if filter != nil {
		seed.Retain(filter)
	}
	return seed
}

// FilterMap requires every sub-query to match, short-circuiting on the
// first failure without polluting result's highlights with a partial,
// ultimately-discarded match.
func (q *IntersectingQuery[DM, SM]) FilterMap(result *SearchResult[SM]) bool {
	local := &SearchResult[SM]{ID: result.ID, Sentence: result.Sentence}
	for _, sub := range q.Subs {
		if !sub.FilterMap(local) {
			return false
		}
	}
	result.Highlights = append(result.Highlights, collapseHighlights(local.Highlights)...)
	return true
}

func (q *IntersectingQuery[DM, SM]) FindHighlights(result *SearchResult[SM]) {
	local := &SearchResult[SM]{ID: result.ID, Sentence: result.Sentence}
	for _, sub := range q.Subs {
		sub.FindHighlights(local)
	}
	result.Highlights = append(result.Highlights, collapseHighlights(local.Highlights)...)
}

// collapseHighlights sorts ranges by start and merges overlapping spans.
func collapseHighlights(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return collapseRanges(ranges)
}
