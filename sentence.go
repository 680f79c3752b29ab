package strata

// Sentence is one line-delimited unit of a document's text, together with its
// tokenization and term interning. Invariant: Terms[i] is the interned term
// for Tokens[i] (same length, index-aligned); TermsByValue[t] lists exactly
// the positions i where Terms[i] == t, sorted ascending.
type Sentence[SM any] struct {
	Text         string
	Tokens       []Token
	Terms        []uint32
	TermsByValue map[uint32][]uint32
	Metadata     SM
}

// packedTerms returns Terms encoded as a little-endian byte sequence, four
// bytes per term id. findPhraseRanges searches this representation with a
// substring scan to locate exact contiguous phrase matches.
func (s *Sentence[SM]) packedTerms() []byte {
	buf := make([]byte, 4*len(s.Terms))
	for i, t := range s.Terms {
		putUint32LE(buf[4*i:], t)
	}
	return buf
}

func putUint32LE(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getUint32LE(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}

// SentenceCodec is the Codec[Sentence[SM]] ArchivedStorage uses to persist
// and reload sentences.storage.strata. TermsByValue is not serialized; it is
// cheaply rebuilt from Terms on decode rather than stored twice.
type SentenceCodec[SM any] struct {
	Meta Codec[SM]
}

func (c SentenceCodec[SM]) Encode(s Sentence[SM]) []byte {
	var buf []byte
	textBytes := []byte(s.Text)
	buf = appendUint64(buf, uint64(len(textBytes)))
	buf = append(buf, textBytes...)

	buf = appendUint64(buf, uint64(len(s.Tokens)))
	for _, tok := range s.Tokens {
		buf = appendUint32(buf, tok.Start)
		buf = appendUint32(buf, tok.End)
	}

	buf = appendUint64(buf, uint64(len(s.Terms)))
	for _, t := range s.Terms {
		buf = appendUint32(buf, t)
	}

	metaBytes := c.Meta.Encode(s.Metadata)
	buf = appendUint64(buf, uint64(len(metaBytes)))
	buf = append(buf, metaBytes...)
	return buf
}

func (c SentenceCodec[SM]) Decode(b []byte) Sentence[SM] {
	textLen, b, err := readUint64(b)
	if err != nil {
		panic(err)
	}
	text := string(b[:textLen])
	b = b[textLen:]

	tokenCount, b, err := readUint64(b)
	if err != nil {
		panic(err)
	}
	tokens := make([]Token, tokenCount)
	for i := range tokens {
		var start, end uint32
		start, b, err = readUint32(b)
		if err != nil {
			panic(err)
		}
		end, b, err = readUint32(b)
		if err != nil {
			panic(err)
		}
		tokens[i] = Token{Start: start, End: end}
	}

	termCount, b, err := readUint64(b)
	if err != nil {
		panic(err)
	}
	terms := make([]uint32, termCount)
	for i := range terms {
		terms[i], b, err = readUint32(b)
		if err != nil {
			panic(err)
		}
	}

	metaLen, b, err := readUint64(b)
	if err != nil {
		panic(err)
	}
	metadata := c.Meta.Decode(b[:metaLen])

	return Sentence[SM]{
		Text:         text,
		Tokens:       tokens,
		Terms:        terms,
		TermsByValue: buildTermsByValue(terms),
		Metadata:     metadata,
	}
}

// buildTermsByValue derives the term -> token-index map from terms. Positions
// come out ascending within each bucket for free, since terms is walked in
// index order. Builders call this once per sentence at tokenization time
// rather than deriving it lazily on every query.
func buildTermsByValue(terms []uint32) map[uint32][]uint32 {
	byValue := make(map[uint32][]uint32)
	for i, t := range terms {
		byValue[t] = append(byValue[t], uint32(i))
	}
	return byValue
}
