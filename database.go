package strata

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
)

// Database is an immutable, memory-mapped handle onto a built corpus: the
// frozen term map, the inverted index, the sentence store, the document
// store, and per-document fast metadata. All reads are lock-free; callers
// wanting to hot-swap to a newer build should hold their own
// atomic.Pointer[Database], since Database itself is a plain reference-
// counted-by-GC value with no swap mechanism of its own.
type Database[D, DM, SM any] struct {
	dir    string
	terms  *FrozenTermMap
	engine *Engine[DM, SM]

	sentences *ImmutableMap[SentenceID, Sentence[SM]]
	documents *ImmutableMap[uint32, D]
}

var onDiskFiles = []string{
	"sentences.index.strata",
	"sentences.storage.strata",
	"documents.storage.strata",
	"documents.fast.strata",
	filepath.Join("headers", "sentence_index.header.strata"),
	filepath.Join("headers", "sentences.header.strata"),
	filepath.Join("headers", "documents.header.strata"),
	filepath.Join("headers", "doc_meta.header.strata"),
	filepath.Join("headers", "term_map.strata"),
}

// Load maps an already-built database directory back in. The three codecs
// must match the ones the corpus was originally built with: Load has no way
// to recover a caller's serialization format from the bytes alone.
func Load[D, DM, SM any](dir string, payloadCodec Codec[D], docMetaCodec FixedCodec[DM], sentenceMetaCodec Codec[SM]) (*Database[D, DM, SM], error) {
	termMapHeader, err := os.ReadFile(filepath.Join(dir, "headers", "term_map.strata"))
	if err != nil {
		return nil, fmt.Errorf("strata: opening term map header: %w", err)
	}
	terms, err := DecodeTermMapHeader(termMapHeader)
	if err != nil {
		return nil, err
	}

	indexHeader, err := os.ReadFile(filepath.Join(dir, "headers", "sentence_index.header.strata"))
	if err != nil {
		return nil, fmt.Errorf("strata: opening posting-index header: %w", err)
	}
	indexMPH, indexPositions, err := DecodeImmutableMapHeader(indexHeader, Uint32Codec{}, hashUint32)
	if err != nil {
		return nil, err
	}
	indexStorage, err := OpenVariableStorage(filepath.Join(dir, "sentences.index.strata"), indexPositions, SentenceIDCodec{})
	if err != nil {
		return nil, fmt.Errorf("strata: opening sentences.index.strata: %w", err)
	}
	index := NewImmutableMap[uint32, []SentenceID](indexMPH, indexStorage)

	sentencesHeader, err := os.ReadFile(filepath.Join(dir, "headers", "sentences.header.strata"))
	if err != nil {
		return nil, fmt.Errorf("strata: opening sentences header: %w", err)
	}
	sentenceMPH, sentencePositions, err := DecodeImmutableMapHeader(sentencesHeader, SentenceIDCodec{}, hashSentenceID)
	if err != nil {
		return nil, err
	}
	sentenceStorage, err := OpenArchivedStorage(filepath.Join(dir, "sentences.storage.strata"), sentencePositions, SentenceCodec[SM]{Meta: sentenceMetaCodec})
	if err != nil {
		return nil, fmt.Errorf("strata: opening sentences.storage.strata: %w", err)
	}
	sentences := NewImmutableMap[SentenceID, Sentence[SM]](sentenceMPH, sentenceStorage)

	documentsHeader, err := os.ReadFile(filepath.Join(dir, "headers", "documents.header.strata"))
	if err != nil {
		return nil, fmt.Errorf("strata: opening documents header: %w", err)
	}
	docMPH, docPositions, err := DecodeImmutableMapHeader(documentsHeader, Uint32Codec{}, hashUint32)
	if err != nil {
		return nil, err
	}
	docStorage, err := OpenArchivedStorage(filepath.Join(dir, "documents.storage.strata"), docPositions, payloadCodec)
	if err != nil {
		return nil, fmt.Errorf("strata: opening documents.storage.strata: %w", err)
	}
	documents := NewImmutableMap[uint32, D](docMPH, docStorage)

	docMetaHeader, err := os.ReadFile(filepath.Join(dir, "headers", "doc_meta.header.strata"))
	if err != nil {
		return nil, fmt.Errorf("strata: opening doc meta header: %w", err)
	}
	docMetaLen, _, err := readUint64(docMetaHeader)
	if err != nil {
		return nil, err
	}
	docMetaStorage, err := OpenFlatStorage(filepath.Join(dir, "documents.fast.strata"), int(docMetaLen), docMetaCodec)
	if err != nil {
		return nil, fmt.Errorf("strata: opening documents.fast.strata: %w", err)
	}

	slog.Info("database loaded", slog.String("dir", dir), slog.Int("terms", terms.Len()), slog.Int("documents", documents.Len()))

	return &Database[D, DM, SM]{
		dir:   dir,
		terms: terms,
		engine: &Engine[DM, SM]{
			index:      index,
			docMeta:    docMetaStorage,
			docMetaLen: int(docMetaLen),
		},
		sentences: sentences,
		documents: documents,
	}, nil
}

// Persist copies this database's on-disk artifacts into a new directory.
// Since every file is already the canonical serialized form, persisting
// elsewhere is a byte-for-byte copy rather than a re-encode.
func (db *Database[D, DM, SM]) Persist(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "headers"), 0o755); err != nil {
		return fmt.Errorf("strata: creating %s: %w", dir, err)
	}
	for _, rel := range onDiskFiles {
		data, err := os.ReadFile(filepath.Join(db.dir, rel))
		if err != nil {
			return fmt.Errorf("strata: reading %s: %w", rel, err)
		}
		if err := os.WriteFile(filepath.Join(dir, rel), data, fs.FileMode(0o644)); err != nil {
			return fmt.Errorf("strata: writing %s: %w", rel, err)
		}
	}
	return nil
}

// TokenizePhrase tokenizes s into term ids using this database's frozen term
// map, the same normalization (lowercasing, and stemming if enabled) used
// when the corpus was built.
func (db *Database[D, DM, SM]) TokenizePhrase(s string) []uint32 {
	return db.terms.TokenizePhrase(s)
}

// ParseQuery lexes and parses the query string s against this database's
// term map, threading filter down to every leaf query node. optimize
// enables the fused lowering of an OR of two single-term literals into one
// KeywordsQuery; AND is never fused.
func (db *Database[D, DM, SM]) ParseQuery(s string, filter DocumentFilter[DM], optimize bool) (Query[DM, SM], error) {
	slog.Debug("parsing query", slog.String("query", s), slog.Bool("optimize", optimize))
	return ParseQuery[DM, SM](db.terms, s, filter, optimize)
}

// PhraseQuery tokenizes s and wraps it directly in a PhraseQuery, bypassing
// the AND/OR parser for callers that already know they want an exact phrase
// match.
func (db *Database[D, DM, SM]) PhraseQuery(s string, filter DocumentFilter[DM]) Query[DM, SM] {
	if filter == nil {
		filter = TrivialFilter[DM]{}
	}
	return NewPhraseQuery[DM, SM](db.terms.TokenizePhrase(s), filter)
}

// Query evaluates q against this database and returns a lazy iterator over
// matching sentences, in ascending SentenceID order. Query never errors: an
// empty result set is simply a range with nothing to yield.
func (db *Database[D, DM, SM]) Query(q Query[DM, SM]) iter.Seq[SearchResult[SM]] {
	return func(yield func(SearchResult[SM]) bool) {
		candidates := q.FindSentenceIDs(db.engine, CallerTopLevel)
		for _, id := range candidates.Iter() {
			sentence, ok := db.sentences.Get(id)
			if !ok {
				continue
			}
			result := SearchResult[SM]{ID: id, Sentence: &sentence}
			if !q.FilterMap(&result) {
				continue
			}
			if !yield(result) {
				return
			}
		}
	}
}

// GetDoc returns the stored payload for docID.
func (db *Database[D, DM, SM]) GetDoc(docID uint32) (D, bool) {
	return db.documents.Get(docID)
}
