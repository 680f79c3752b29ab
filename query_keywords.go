package strata

import "sort"

// KeywordsQuery matches any sentence containing at least one of its
// keywords — a flat multi-term OR, evaluated directly against posting
// lists rather than wrapped in a tree of single-term UnionQuery nodes.
type KeywordsQuery[DM, SM any] struct {
	Keywords []uint32
	Filter   DocumentFilter[DM]
	// MergeThreshold overrides defaultMergeThreshold for the two-keyword
	// fast path; zero means "use the default".
	MergeThreshold int
}

// NewKeywordsQuery builds a KeywordsQuery over keywords (already-tokenized
// term ids), restricted by filter.
func NewKeywordsQuery[DM, SM any](keywords []uint32, filter DocumentFilter[DM]) *KeywordsQuery[DM, SM] {
	return &KeywordsQuery[DM, SM]{Keywords: keywords, Filter: filter}
}

func (q *KeywordsQuery[DM, SM]) threshold() int {
	if q.MergeThreshold > 0 {
		return q.MergeThreshold
	}
	return defaultMergeThreshold
}

func (q *KeywordsQuery[DM, SM]) docFilterFunc(engine *Engine[DM, SM]) func(SentenceID) bool {
	if q.Filter == nil || !q.Filter.Needed() {
		return nil
	}
	return func(id SentenceID) bool { return q.Filter.FilterDocument(engine.docMetaFor(id)) }
}

// FindSentenceIDs handles three shapes: a single keyword is just its
// posting list; two keywords go through the parallel sorted Merge,
// avoiding the concat+sort generic path;
// three or more keywords fall back to concat, sort, and dedup. The
// two-keyword path only skips dedup for a CallerIntersection parent, which
// retains by membership alone and tolerates duplicates; three-or-more
// always dedups, since an IntersectingQuery may pick this node as its
// smallest sub-query and return its result verbatim as the final set.
func (q *KeywordsQuery[DM, SM]) FindSentenceIDs(engine *Engine[DM, SM], caller CallerKind) SentenceIDList {
	var merged SentenceIDList

	switch len(q.Keywords) {
	case 0:
		return nil
	case 1:
		list := engine.postingList(q.Keywords[0])
		merged = make(SentenceIDList, len(list))
		copy(merged, list)
	case 2:
		a := engine.postingList(q.Keywords[0])
		b := engine.postingList(q.Keywords[1])
		merged = Merge(a, b, q.threshold())
		if caller != CallerIntersection {
			merged = dedupSorted(merged)
		}
	default:
		var total int
		lists := make([][]SentenceID, len(q.Keywords))
		for i, term := range q.Keywords {
			lists[i] = engine.postingList(term)
			total += len(lists[i])
		}
		merged = make(SentenceIDList, 0, total)
		for _, l := range lists {
			merged = append(merged, l...)
		}
		sort.Slice(merged, func(i, j int) bool { return merged[i].Less(merged[j]) })
		merged = dedupSorted(merged)
	}

	if filter := q.docFilterFunc(engine); filter != nil {
		merged.Retain(filter)
	}
	return merged
}

// FilterMap keeps the result iff at least one keyword occurs in the
// sentence, collapsing overlapping single-token highlights.
func (q *KeywordsQuery[DM, SM]) FilterMap(result *SearchResult[SM]) bool {
	ranges := q.findRanges(result.Sentence)
	if len(ranges) == 0 {
		return false
	}
	result.Highlights = append(result.Highlights, ranges...)
	return true
}

func (q *KeywordsQuery[DM, SM]) FindHighlights(result *SearchResult[SM]) {
	result.Highlights = append(result.Highlights, q.findRanges(result.Sentence)...)
}

func (q *KeywordsQuery[DM, SM]) findRanges(s *Sentence[SM]) []Range {
	var ranges []Range
	for _, kw := range q.Keywords {
		for _, pos := range s.TermsByValue[kw] {
			tok := s.Tokens[pos]
			ranges = append(ranges, Range{Start: tok.Start, End: tok.End})
		}
	}
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return collapseRanges(ranges)
}
