package strata

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// UnionQuery matches sentences satisfying at least one sub-query (logical
// OR). Sub-queries are evaluated in parallel, each told CallerUnion so it
// knows this node will deduplicate the flattened result itself — but a
// sub-query under a union must still apply its own document filter, since
// nothing above it will.
type UnionQuery[DM, SM any] struct {
	Subs []Query[DM, SM]
}

func NewUnionQuery[DM, SM any](subs []Query[DM, SM]) *UnionQuery[DM, SM] {
	return &UnionQuery[DM, SM]{Subs: subs}
}

func (q *UnionQuery[DM, SM]) FindSentenceIDs(engine *Engine[DM, SM], caller CallerKind) SentenceIDList {
	if len(q.Subs) == 0 {
		return nil
	}

	lists := make([]SentenceIDList, len(q.Subs))
	var g errgroup.Group
	for i, sub := range q.Subs {
		i, sub := i, sub
		g.Go(func() error {
			lists[i] = sub.FindSentenceIDs(engine, CallerUnion)
			return nil
		})
	}
	_ = g.Wait() // sub-queries never error

	var total int
	for _, l := range lists {
		total += len(l)
	}
	flat := make(SentenceIDList, 0, total)
	for _, l := range lists {
		flat = append(flat, l.Iter()...)
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].Less(flat[j]) })
	return dedupSorted(flat)
}

// FilterMap does not ask each sub-query whether it matches (the id was
// already produced by a union of posting lists, an approximate membership
// test); instead it asks each sub for its highlights directly and accepts
// the result iff at least one sub actually produced one, which doubles as
// the precise re-verification a phrase sub-query needs.
func (q *UnionQuery[DM, SM]) FilterMap(result *SearchResult[SM]) bool {
	local := &SearchResult[SM]{ID: result.ID, Sentence: result.Sentence}
	for _, sub := range q.Subs {
		sub.FindHighlights(local)
	}
	if len(local.Highlights) == 0 {
		return false
	}
	result.Highlights = append(result.Highlights, collapseHighlights(local.Highlights)...)
	return true
}

func (q *UnionQuery[DM, SM]) FindHighlights(result *SearchResult[SM]) {
	local := &SearchResult[SM]{ID: result.ID, Sentence: result.Sentence}
	for _, sub := range q.Subs {
		sub.FindHighlights(local)
	}
	result.Highlights = append(result.Highlights, collapseHighlights(local.Highlights)...)
}
