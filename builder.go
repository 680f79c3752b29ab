package strata

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/RoaringBitmap/roaring/roaring64"
)

// DocumentData is one document handed to DatabaseBuilder.AddDocument: its
// id, its raw text (split into sentences on line boundaries and indexed),
// an arbitrary caller-defined payload D (e.g. the document's stored body or
// a reference to it), and fast per-document metadata DM kept in a flat
// array for cheap document-filter checks during search.
type DocumentData[D, DM any] struct {
	ID       uint32
	Text     string
	Payload  D
	Metadata DM
}

// DatabaseBuilder accumulates documents in memory and writes the four
// on-disk data files (plus headers) that make up a Database, in one BuildIn
// call. Not safe for concurrent AddDocument calls, matching the teacher's
// general trust-the-caller style rather than guarding state with a mutex.
type DatabaseBuilder[D, DM, SM any] struct {
	terms *TermMap

	documents map[uint32]D
	docMeta   map[uint32]DM
	sentences map[SentenceID]Sentence[SM]

	// postings accumulates, per term id, the set of sentence ids containing
	// it, as a roaring64.Bitmap over SentenceID.Encode() values: adding to a
	// bitmap gives a sorted, deduplicated posting list for free at ToArray
	// time, replacing an append-then-sort-then-dedup map[uint32][]SentenceID.
	postings map[uint32]*roaring64.Bitmap
	// termDocs is a diagnostic-only accumulator (not persisted): the set of
	// document ids containing each term, answered cheaply via Cardinality
	// for "strata build --stats" without walking posting lists.
	termDocs map[uint32]*roaring.Bitmap

	metaFactory       func(text string) SM
	payloadCodec      Codec[D]
	docMetaCodec      FixedCodec[DM]
	sentenceMetaCodec Codec[SM]

	maxDocID uint32
}

// NewDatabaseBuilder constructs an empty builder. stemEnabled controls
// whether interned terms are Porter2-stemmed or just lowercased; the codecs
// are how the builder serializes the caller's arbitrary D/DM/SM types into
// the archived and flat storage variants.
func NewDatabaseBuilder[D, DM, SM any](stemEnabled bool, payloadCodec Codec[D], docMetaCodec FixedCodec[DM], sentenceMetaCodec Codec[SM]) *DatabaseBuilder[D, DM, SM] {
	return &DatabaseBuilder[D, DM, SM]{
		terms:             NewTermMap(stemEnabled),
		documents:         make(map[uint32]D),
		docMeta:           make(map[uint32]DM),
		sentences:         make(map[SentenceID]Sentence[SM]),
		postings:          make(map[uint32]*roaring64.Bitmap),
		termDocs:          make(map[uint32]*roaring.Bitmap),
		payloadCodec:      payloadCodec,
		docMetaCodec:      docMetaCodec,
		sentenceMetaCodec: sentenceMetaCodec,
	}
}

// SetSentenceMetadataFactory installs f as the function deriving each
// sentence's SM metadata from its raw text at indexing time. Without one,
// every sentence gets the zero value of SM.
func (b *DatabaseBuilder[D, DM, SM]) SetSentenceMetadataFactory(f func(text string) SM) {
	b.metaFactory = f
}

// AddDocument tokenizes doc.Text into sentences, interns their terms, and
// accumulates the document's payload and metadata. doc.ID must be nonzero
// (0 collides with the posting-list tombstone) and must not have been added
// before.
func (b *DatabaseBuilder[D, DM, SM]) AddDocument(doc DocumentData[D, DM]) error {
	if doc.ID == 0 {
		return fmt.Errorf("%w: document id 0 collides with the tombstone sentinel", ErrInvalidCorpus)
	}
	if _, exists := b.documents[doc.ID]; exists {
		return fmt.Errorf("%w: document id %d added twice", ErrInvalidCorpus, doc.ID)
	}

	lines := b.terms.TokenizeAll(doc.Text)
	for i, line := range lines {
		sid := SentenceID{Doc: doc.ID, Sentence: uint32(i)}

		var meta SM
		if b.metaFactory != nil {
			meta = b.metaFactory(line.Text)
		}
		b.sentences[sid] = Sentence[SM]{
			Text:         line.Text,
			Tokens:       line.Tokens,
			Terms:        line.Terms,
			TermsByValue: buildTermsByValue(line.Terms),
			Metadata:     meta,
		}

		seen := make(map[uint32]struct{}, len(line.Terms))
		for _, term := range line.Terms {
			if term == 0 {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}

			bm, ok := b.postings[term]
			if !ok {
				bm = roaring64.New()
				b.postings[term] = bm
			}
			bm.Add(sid.Encode())

			docBM, ok := b.termDocs[term]
			if !ok {
				docBM = roaring.New()
				b.termDocs[term] = docBM
			}
			docBM.Add(doc.ID)
		}
	}

	b.documents[doc.ID] = doc.Payload
	b.docMeta[doc.ID] = doc.Metadata
	if doc.ID > b.maxDocID {
		b.maxDocID = doc.ID
	}

	slog.Info("indexing document", slog.Int("docID", int(doc.ID)), slog.Int("sentences", len(lines)))
	return nil
}

// TermDocumentCount reports how many distinct documents contain term, using
// the in-memory diagnostic bitmap accumulated during AddDocument. The bitmap
// is never written to disk and BuildIn leaves it in place; exists to back
// "strata build --stats".
func (b *DatabaseBuilder[D, DM, SM]) TermDocumentCount(term uint32) int {
	bm, ok := b.termDocs[term]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// TermFrequency pairs a term's interned word with the document count
// TermDocumentCount reports for it.
type TermFrequency struct {
	Term  string
	Count int
}

// TopTermsByDocumentFrequency returns up to n terms with the highest
// document frequency, most frequent first, ties broken by term text. Backs
// "strata build --stats".
func (b *DatabaseBuilder[D, DM, SM]) TopTermsByDocumentFrequency(n int) []TermFrequency {
	freqs := make([]TermFrequency, 0, len(b.termDocs))
	for term, bm := range b.termDocs {
		word, ok := b.terms.Word(term)
		if !ok {
			continue
		}
		freqs = append(freqs, TermFrequency{Term: word, Count: int(bm.GetCardinality())})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Term < freqs[j].Term
	})
	if n < len(freqs) {
		freqs = freqs[:n]
	}
	return freqs
}

// BuildIn freezes the term map, finalizes every posting list, and writes the
// four on-disk data files (plus their headers) to dir, returning a Database
// handle backed by the freshly written, freshly mapped-in files.
func (b *DatabaseBuilder[D, DM, SM]) BuildIn(dir string) (*Database[D, DM, SM], error) {
	if err := os.MkdirAll(filepath.Join(dir, "headers"), 0o755); err != nil {
		return nil, fmt.Errorf("strata: creating %s: %w", dir, err)
	}

	frozen, err := b.terms.Freeze()
	if err != nil {
		return nil, fmt.Errorf("strata: freezing term map: %w", err)
	}

	if err := b.buildPostingIndex(dir, frozen); err != nil {
		return nil, err
	}
	if err := b.buildSentenceStore(dir); err != nil {
		return nil, err
	}
	if err := b.buildDocumentStore(dir); err != nil {
		return nil, err
	}
	if err := b.buildDocMetaStore(dir); err != nil {
		return nil, err
	}

	if err := writeFile(filepath.Join(dir, "headers", "term_map.strata"), EncodeTermMapHeader(frozen)); err != nil {
		return nil, err
	}

	slog.Info("build complete", slog.String("dir", dir), slog.Int("documents", len(b.documents)), slog.Int("sentences", len(b.sentences)), slog.Int("terms", frozen.Len()))

	return Load[D, DM, SM](dir, b.payloadCodec, b.docMetaCodec, b.sentenceMetaCodec)
}

func (b *DatabaseBuilder[D, DM, SM]) buildPostingIndex(dir string, frozen *FrozenTermMap) error {
	n := uint32(frozen.Len())
	termIDs := make([]uint32, n)
	values := make([][]SentenceID, n)
	for i := range termIDs {
		id := uint32(i + 1)
		termIDs[i] = id
		bm, ok := b.postings[id]
		if !ok {
			continue
		}
		arr := bm.ToArray()
		list := make([]SentenceID, len(arr))
		for j, v := range arr {
			list[j] = DecodeSentenceID(v)
		}
		values[i] = list
	}

	mph, err := BuildMPH(termIDs, hashUint32)
	if err != nil {
		return fmt.Errorf("strata: building posting-list MPH: %w", err)
	}
	reordered := reorderKeyed(mph, termIDs, values)

	storage, err := BuildVariableStorage(filepath.Join(dir, "sentences.index.strata"), reordered, SentenceIDCodec{})
	if err != nil {
		return fmt.Errorf("strata: writing sentences.index.strata: %w", err)
	}
	header := EncodeImmutableMapHeader(mph, Uint32Codec{}, storage.positions)
	return writeFile(filepath.Join(dir, "headers", "sentence_index.header.strata"), header)
}

func (b *DatabaseBuilder[D, DM, SM]) buildSentenceStore(dir string) error {
	keys := make([]SentenceID, 0, len(b.sentences))
	for k := range b.sentences {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	values := make([]Sentence[SM], len(keys))
	for i, k := range keys {
		values[i] = b.sentences[k]
	}

	mph, err := BuildMPH(keys, hashSentenceID)
	if err != nil {
		return fmt.Errorf("strata: building sentence-store MPH: %w", err)
	}
	reordered := reorderKeyed(mph, keys, values)

	codec := SentenceCodec[SM]{Meta: b.sentenceMetaCodec}
	storage, err := BuildArchivedStorage(filepath.Join(dir, "sentences.storage.strata"), reordered, codec)
	if err != nil {
		return fmt.Errorf("strata: writing sentences.storage.strata: %w", err)
	}
	header := EncodeImmutableMapHeader(mph, SentenceIDCodec{}, storage.positions)
	return writeFile(filepath.Join(dir, "headers", "sentences.header.strata"), header)
}

func (b *DatabaseBuilder[D, DM, SM]) buildDocumentStore(dir string) error {
	keys := make([]uint32, 0, len(b.documents))
	for k := range b.documents {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	values := make([]D, len(keys))
	for i, k := range keys {
		values[i] = b.documents[k]
	}

	mph, err := BuildMPH(keys, hashUint32)
	if err != nil {
		return fmt.Errorf("strata: building document-store MPH: %w", err)
	}
	reordered := reorderKeyed(mph, keys, values)

	storage, err := BuildArchivedStorage(filepath.Join(dir, "documents.storage.strata"), reordered, b.payloadCodec)
	if err != nil {
		return fmt.Errorf("strata: writing documents.storage.strata: %w", err)
	}
	header := EncodeImmutableMapHeader(mph, Uint32Codec{}, storage.positions)
	return writeFile(filepath.Join(dir, "headers", "documents.header.strata"), header)
}

func (b *DatabaseBuilder[D, DM, SM]) buildDocMetaStore(dir string) error {
	n := int(b.maxDocID) + 1
	values := make([]DM, n)
	for id, meta := range b.docMeta {
		values[id] = meta
	}

	if _, err := BuildFlatStorage(filepath.Join(dir, "documents.fast.strata"), values, b.docMetaCodec); err != nil {
		return fmt.Errorf("strata: writing documents.fast.strata: %w", err)
	}

	header := appendUint64(nil, uint64(n))
	return writeFile(filepath.Join(dir, "headers", "doc_meta.header.strata"), header)
}
