package strata

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// wordSpan is one (byte_offset, word) pair produced by Unicode word
// segmentation, before lowercasing or stemming.
type wordSpan struct {
	start int
	word  string
}

// segmentWords splits text on any rune that is neither a letter nor a number,
// recording the UTF-8 byte offset each surviving word starts at. This mirrors
// the teacher's tokenize (analyzer.go), generalized from strings.FieldsFunc
// (which discards offsets) to a manual scan that keeps them, since Sentence
// tokens need byte ranges rather than bare words.
func segmentWords(text string) []wordSpan {
	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	}

	var spans []wordSpan
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, wordSpan{start: start, word: text[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{start: start, word: text[start:]})
	}
	return spans
}

// stem lowercases and Porter2-stems one word. Term maps call it only when
// stemming is enabled (Config.EnableStemming, fixed at build time and
// recorded in the term-map header); otherwise words are just lowercased.
func stem(word string) string {
	return snowballeng.Stem(strings.ToLower(word), false)
}

// TermMap interns stemmed, lowercased words into dense term ids. Ids start at
// 1; id 0 is reserved for "unknown term" at query time. The zero value is not
// usable; construct with NewTermMap.
type TermMap struct {
	ids   map[string]uint32
	terms []string // index i+1 -> terms[i]; reverse of ids
	stem  bool
}

// NewTermMap returns an empty mutable term map. When stemEnabled is false,
// words are still lowercased but not run through the Snowball stemmer —
// an escape hatch exposed via Config for corpora where stemming would hurt
// precision (the format itself is unchanged; only what gets interned differs).
func NewTermMap(stemEnabled bool) *TermMap {
	return &TermMap{
		ids:  make(map[string]uint32),
		stem: stemEnabled,
	}
}

func (m *TermMap) normalize(word string) string {
	if m.stem {
		return stem(word)
	}
	return strings.ToLower(word)
}

// Intern returns the term id for word, assigning a new one if word has not
// been seen before.
func (m *TermMap) Intern(word string) uint32 {
	key := m.normalize(word)
	if id, ok := m.ids[key]; ok {
		return id
	}
	id := uint32(len(m.terms) + 1)
	m.ids[key] = id
	m.terms = append(m.terms, key)
	return id
}

// Term returns the id already assigned to word, without interning it.
func (m *TermMap) Term(word string) (uint32, bool) {
	id, ok := m.ids[m.normalize(word)]
	return id, ok
}

// Len returns the number of distinct terms interned so far.
func (m *TermMap) Len() int {
	return len(m.terms)
}

// Word returns the normalized word interned under id, if any.
func (m *TermMap) Word(id uint32) (string, bool) {
	if id == 0 || int(id) > len(m.terms) {
		return "", false
	}
	return m.terms[id-1], true
}

// TokenizeSentence splits one line of text into its Token byte-ranges and the
// parallel, index-aligned Terms sequence, interning any new stems it sees.
func (m *TermMap) TokenizeSentence(line string) ([]Token, []uint32) {
	spans := segmentWords(line)
	tokens := make([]Token, len(spans))
	terms := make([]uint32, len(spans))
	for i, span := range spans {
		tokens[i] = Token{Start: uint32(span.start), End: uint32(span.start + len(span.word))}
		terms[i] = m.Intern(span.word)
	}
	return tokens, terms
}

// TokenizeAll splits doc text into sentences on line boundaries and tokenizes
// each one. Empty lines produce empty sentences (zero tokens), which are
// still kept: a SentenceID is assigned to every line, not just non-blank ones,
// so sentence indices stay stable regardless of content.
func (m *TermMap) TokenizeAll(text string) []struct {
	Tokens []Token
	Terms  []uint32
	Text   string
} {
	lines := strings.Split(text, "\n")
	out := make([]struct {
		Tokens []Token
		Terms  []uint32
		Text   string
	}, len(lines))
	for i, line := range lines {
		tokens, terms := m.TokenizeSentence(line)
		out[i] = struct {
			Tokens []Token
			Terms  []uint32
			Text   string
		}{Tokens: tokens, Terms: terms, Text: line}
	}
	return out
}

// Freeze builds the lookup-only, MPH-backed form of the term map. After
// Freeze, m may still be mutated and interned further (Freeze takes a
// snapshot), but the builder only ever freezes once, at BuildIn time.
func (m *TermMap) Freeze() (*FrozenTermMap, error) {
	keys := make([]string, len(m.terms))
	copy(keys, m.terms)

	hashed, err := BuildMPH(keys, hashString)
	if err != nil {
		return nil, err
	}

	// ids[slot] corresponds to hashed's reordered keys: slot i holds the term
	// id for hashed.keys[i], which is (index of that key in m.terms) + 1.
	ids := make([]uint32, len(keys))
	for i, k := range hashed.keys {
		ids[i] = m.ids[k]
	}

	return &FrozenTermMap{mph: hashed, ids: ids, stem: m.stem}, nil
}

// FrozenTermMap is the lookup-only, read-optimized form of a TermMap, backed
// by a minimal perfect hash over the interned stems.
type FrozenTermMap struct {
	mph  *MPH[string]
	ids  []uint32
	stem bool
}

// Term looks up the term id for word, applying the same normalization the
// mutable map used when building. Unknown words return (0, false).
func (f *FrozenTermMap) Term(word string) (uint32, bool) {
	key := word
	if f.stem {
		key = stem(word)
	} else {
		key = strings.ToLower(word)
	}
	slot, ok := f.mph.Lookup(key)
	if !ok {
		return 0, false
	}
	return f.ids[slot], true
}

// TokenizePhrase tokenizes a query-time phrase into term ids. Unknown words
// become term id 0, which matches nothing in PhraseQuery or KeywordsQuery —
// this is intentional, not an error: a phrase containing an out-of-vocabulary
// word simply cannot match any indexed sentence.
func (f *FrozenTermMap) TokenizePhrase(phrase string) []uint32 {
	spans := segmentWords(phrase)
	ids := make([]uint32, len(spans))
	for i, span := range spans {
		id, ok := f.Term(span.word)
		if !ok {
			ids[i] = 0
			continue
		}
		ids[i] = id
	}
	return ids
}

// Len returns the number of distinct terms in the frozen map (M in the
// spec's invariant that term ids are exactly {1..=M}).
func (f *FrozenTermMap) Len() int {
	return len(f.ids)
}
