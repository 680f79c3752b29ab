package strata

// CallerKind tells a sub-query what kind of parent invoked it, so it can
// elide work the parent will redo anyway (deduplication). It is threaded
// down the query tree on every FindSentenceIDs call. Document filtering is
// not elided: every query node applies its own filter whatever its caller.
type CallerKind int

const (
	// CallerTopLevel means this query is the root of the tree: it must do
	// its own deduplication and filtering, since nothing above it will.
	CallerTopLevel CallerKind = iota
	// CallerIntersection means the parent is an IntersectingQuery, which
	// will retain by binary search (applying its own filter, if it has
	// one); sub-queries may return a sorted, non-deduplicated candidate set,
	// but still apply their own document filter.
	CallerIntersection
	// CallerUnion means the parent is a UnionQuery, which deduplicates the
	// flattened result itself, but does NOT re-apply a document filter —
	// sub-queries under a union must still filter documents themselves.
	CallerUnion
)

// Intersects reports whether the caller is an IntersectingQuery.
func (c CallerKind) Intersects() bool { return c == CallerIntersection }

// DocumentFilter restricts a query to documents whose metadata satisfies
// FilterDocument. Needed lets callers skip the filter check entirely on the
// (very common) unfiltered path.
type DocumentFilter[DM any] interface {
	FilterDocument(meta DM) bool
	Needed() bool
}

// DocumentFilterFunc adapts a plain func(DM) bool into a DocumentFilter whose
// Needed() is always true.
type DocumentFilterFunc[DM any] func(DM) bool

func (f DocumentFilterFunc[DM]) FilterDocument(meta DM) bool { return f(meta) }
func (f DocumentFilterFunc[DM]) Needed() bool                { return true }

// TrivialFilter is the always-true DocumentFilter whose Needed() is false,
// letting every query skip document-metadata lookups entirely.
type TrivialFilter[DM any] struct{}

func (TrivialFilter[DM]) FilterDocument(DM) bool { return true }
func (TrivialFilter[DM]) Needed() bool           { return false }

// SearchResult is one matched sentence, together with the byte ranges within
// its text that caused the match.
type SearchResult[SM any] struct {
	ID         SentenceID
	Sentence   *Sentence[SM]
	Highlights []Range
}

// Highlighted splits Sentence.Text into alternating normal/highlighted parts
// using Highlights, which must already be sorted and non-overlapping (the
// output of collapseRanges).
func (r *SearchResult[SM]) Highlighted() []SentencePart {
	if len(r.Highlights) == 0 {
		return []SentencePart{{Text: r.Sentence.Text, Highlight: false}}
	}
	var parts []SentencePart
	cursor := uint32(0)
	for _, h := range r.Highlights {
		if h.Start > cursor {
			parts = append(parts, SentencePart{Text: r.Sentence.Text[cursor:h.Start], Highlight: false})
		}
		parts = append(parts, SentencePart{Text: r.Sentence.Text[h.Start:h.End], Highlight: true})
		cursor = h.End
	}
	if int(cursor) < len(r.Sentence.Text) {
		parts = append(parts, SentencePart{Text: r.Sentence.Text[cursor:], Highlight: false})
	}
	return parts
}

// SentencePart is one alternating normal/highlighted slice of a matched
// sentence's text.
type SentencePart struct {
	Text      string
	Highlight bool
}

// Query is the capability every node in the query tree exposes. The tree is
// a tagged sum realized as a Go interface over four concrete node types
// (PhraseQuery, KeywordsQuery, IntersectingQuery, UnionQuery) rather than a
// Rust-style enum, since Go has no closed sum types; each node owns its term
// slices directly instead of borrowing them, sidestepping the
// lifetime-tangled-borrow problem the Rust source solves with an
// owning-slice-plus-view pattern.
type Query[DM, SM any] interface {
	// FindSentenceIDs returns the sorted candidate set matching this query
	// node, given the kind of caller invoking it.
	FindSentenceIDs(engine *Engine[DM, SM], caller CallerKind) SentenceIDList

	// FilterMap runs this node's highlighter over result.Sentence, appends
	// to result.Highlights, and reports whether the result should be kept.
	FilterMap(result *SearchResult[SM]) bool

	// FindHighlights populates result.Highlights without deciding whether
	// to keep the result (used when a parent query has already decided).
	FindHighlights(result *SearchResult[SM])
}

// Engine is the read-only set of indexes a Query evaluates against: the
// inverted index (an MPH-backed map from term id to posting list) and the
// flat per-document metadata array. It is a narrower
// view than Database itself so that query nodes do not need the document
// payload store or term map to run.
type Engine[DM, SM any] struct {
	index      *ImmutableMap[uint32, []SentenceID]
	docMeta    *FlatStorage[DM]
	docMetaLen int
}

// postingList returns the posting list for term, or an empty list on miss
// (e.g. term id 0, "unknown term", or a term absent from this corpus).
func (e *Engine[DM, SM]) postingList(term uint32) []SentenceID {
	list, ok := e.index.Get(term)
	if !ok {
		return nil
	}
	return list
}

// docMetaFor returns the metadata for the document owning id, used by
// DocumentFilter checks. Document ids are dense and start at 1; doc_meta is
// a flat array sized max(doc_id)+1, so this is a direct indexed lookup.
func (e *Engine[DM, SM]) docMetaFor(id SentenceID) DM {
	return e.docMeta.GetUnchecked(int(id.Doc))
}
