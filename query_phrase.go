package strata

import (
	"bytes"
	"sort"
)

// PhraseQuery matches sentences containing an exact, contiguous run of terms.
// Candidate sentences are found by intersecting each term's posting list
// (fast, approximate: "all terms present"); exact adjacency is then verified
// during highlighting by a byte-level substring search over the sentence's
// packed term-id sequence.
type PhraseQuery[DM, SM any] struct {
	Phrase []uint32
	Filter DocumentFilter[DM]
	packed []byte
}

// NewPhraseQuery builds a PhraseQuery over phrase (already-tokenized term
// ids, e.g. from FrozenTermMap.TokenizePhrase), restricted by filter.
func NewPhraseQuery[DM, SM any](phrase []uint32, filter DocumentFilter[DM]) *PhraseQuery[DM, SM] {
	packed := make([]byte, 4*len(phrase))
	for i, t := range phrase {
		putUint32LE(packed[4*i:], t)
	}
	return &PhraseQuery[DM, SM]{Phrase: phrase, Filter: filter, packed: packed}
}

func (q *PhraseQuery[DM, SM]) docFilterFunc(engine *Engine[DM, SM]) func(SentenceID) bool {
	if q.Filter == nil || !q.Filter.Needed() {
		return nil
	}
	return func(id SentenceID) bool { return q.Filter.FilterDocument(engine.docMetaFor(id)) }
}

// FindSentenceIDs fetches each term's posting list, sorts them ascending by
// length (rarest term first), seeds the candidate set from the smallest
// list, then retains candidates present in every other list (and passing
// the document filter, if one is active).
func (q *PhraseQuery[DM, SM]) FindSentenceIDs(engine *Engine[DM, SM], caller CallerKind) SentenceIDList {
	if len(q.Phrase) == 0 {
		return nil
	}

	lists := make([][]SentenceID, len(q.Phrase))
	for i, term := range q.Phrase {
		lists[i] = engine.postingList(term)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	seed := make(SentenceIDList, len(lists[0]))
	copy(seed, lists[0])

	filter := q.docFilterFunc(engine)
	if len(lists) > 1 {
		for _, other := range lists[1:] {
			seed.RetainByBinarySearch(other, filter)
		}
	} else if filter != nil {
		seed.Retain(filter)
	}
	return seed
}

// FilterMap runs the phrase highlighter over the result's sentence, keeping
// the result iff at least one exact phrase occurrence was found.
func (q *PhraseQuery[DM, SM]) FilterMap(result *SearchResult[SM]) bool {
	ranges := findPhraseRanges(result.Sentence, q.packed, len(q.Phrase))
	if len(ranges) == 0 {
		return false
	}
	result.Highlights = append(result.Highlights, collapseRanges(ranges)...)
	return true
}

// FindHighlights populates highlights without deciding whether to keep the
// result; used when a parent query (e.g. IntersectingQuery) has already
// decided to keep it.
func (q *PhraseQuery[DM, SM]) FindHighlights(result *SearchResult[SM]) {
	result.Highlights = append(result.Highlights, findPhraseRanges(result.Sentence, q.packed, len(q.Phrase))...)
}

// findPhraseRanges locates every exact, contiguous occurrence of a packed
// little-endian term-id sequence within a sentence's packed terms, and maps
// each byte-index match back to a token-index highlight span. Matches are
// only accepted at 4-byte-aligned offsets (term boundaries); a match found
// at a non-aligned offset is a coincidental byte pattern straddling two term
// ids and must be skipped, not reported.
func findPhraseRanges[SM any](s *Sentence[SM], packed []byte, phraseLen int) []Range {
	if phraseLen == 0 || len(s.Terms) < phraseLen {
		return nil
	}
	hay := s.packedTerms()

	var ranges []Range
	offset := 0
	for {
		idx := bytes.Index(hay[offset:], packed)
		if idx < 0 {
			break
		}
		pos := offset + idx
		if pos%4 != 0 {
			offset = pos + 1
			continue
		}
		tokenStart := pos / 4
		tokenEnd := tokenStart + phraseLen - 1
		ranges = append(ranges, Range{Start: s.Tokens[tokenStart].Start, End: s.Tokens[tokenEnd].End})
		offset = pos + 4
	}
	return ranges
}
