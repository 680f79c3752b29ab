package strata

import (
	"sort"
	"testing"
)

type testDoc = DocumentData[string, struct{}]

func buildTestDB(t *testing.T, docs []testDoc) *Database[string, struct{}, struct{}] {
	t.Helper()
	dir := t.TempDir()

	b := NewDatabaseBuilder[string, struct{}, struct{}](true, StringCodec{}, EmptyCodec{}, EmptyCodec{})
	for _, d := range docs {
		if err := b.AddDocument(d); err != nil {
			t.Fatalf("AddDocument(%d): %v", d.ID, err)
		}
	}
	db, err := b.BuildIn(dir)
	if err != nil {
		t.Fatalf("BuildIn: %v", err)
	}
	return db
}

func collectDocSentences(t *testing.T, db *Database[string, struct{}, struct{}], q Query[struct{}, struct{}]) []SentenceID {
	t.Helper()
	var got []SentenceID
	for r := range db.Query(q) {
		got = append(got, r.ID)
	}
	sort.Slice(got, func(i, j int) bool { return got[i].Less(got[j]) })
	return got
}

func testCorpus() []testDoc {
	return []testDoc{
		{ID: 1, Text: "the quick brown fox jumps over the lazy dog\na second sentence about foxes", Payload: "the quick brown fox jumps over the lazy dog\na second sentence about foxes"},
		{ID: 2, Text: "the lazy cat sleeps all day\nno foxes here at all", Payload: "the lazy cat sleeps all day\nno foxes here at all"},
		{ID: 3, Text: "quick thinking saves the day\nthe brown bear is not a fox", Payload: "quick thinking saves the day\nthe brown bear is not a fox"},
	}
}

func TestDatabasePhraseQuery(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q := db.PhraseQuery("quick brown fox", TrivialFilter[struct{}]{})
	got := collectDocSentences(t, db, q)
	assertSentenceIDsEqual(t, got, []SentenceID{{Doc: 1, Sentence: 0}})
}

func TestDatabasePhraseQueryNoMatch(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q := db.PhraseQuery("brown quick fox", TrivialFilter[struct{}]{})
	got := collectDocSentences(t, db, q)
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestDatabaseKeywordsQuery(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q := NewKeywordsQuery[struct{}, struct{}](db.TokenizePhrase("fox cat"), TrivialFilter[struct{}]{})
	got := collectDocSentences(t, db, q)
	// "foxes" stems to "fox", so the plural sentences match too.
	want := []SentenceID{{Doc: 1, Sentence: 0}, {Doc: 1, Sentence: 1}, {Doc: 2, Sentence: 0}, {Doc: 2, Sentence: 1}, {Doc: 3, Sentence: 1}}
	assertSentenceIDsEqual(t, got, want)
}

func TestDatabaseParseQueryPrecedence(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	// "fox AND quick OR cat" parses as And(fox, Or(quick, cat)): sentences
	// containing fox AND (quick OR cat).
	q, err := db.ParseQuery("fox AND quick OR cat", TrivialFilter[struct{}]{}, true)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	got := collectDocSentences(t, db, q)
	// Doc1/Sentence0 has fox+quick; doc3/sentence1 has fox but not quick/cat
	// in the same sentence, so it must NOT match.
	want := []SentenceID{{Doc: 1, Sentence: 0}}
	assertSentenceIDsEqual(t, got, want)
}

func TestDatabaseParseQueryOr(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q, err := db.ParseQuery("bear OR cat", TrivialFilter[struct{}]{}, true)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	got := collectDocSentences(t, db, q)
	want := []SentenceID{{Doc: 2, Sentence: 0}, {Doc: 3, Sentence: 1}}
	assertSentenceIDsEqual(t, got, want)
}

func TestDatabaseGetDoc(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	doc, ok := db.GetDoc(2)
	if !ok {
		t.Fatal("expected doc 2 to be present")
	}
	if doc != testCorpus()[1].Text {
		t.Fatalf("doc 2 = %q, want %q", doc, testCorpus()[1].Text)
	}
	if _, ok := db.GetDoc(99); ok {
		t.Fatal("expected doc 99 to be absent")
	}
}

func TestDatabasePersistRoundTrip(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	dir2 := t.TempDir()
	if err := db.Persist(dir2); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	reloaded, err := Load[string, struct{}, struct{}](dir2, StringCodec{}, EmptyCodec{}, EmptyCodec{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	doc, ok := reloaded.GetDoc(1)
	if !ok || doc != testCorpus()[0].Text {
		t.Fatalf("reloaded doc 1 = %q, %v", doc, ok)
	}
}

func TestAddDocumentRejectsZeroID(t *testing.T) {
	b := NewDatabaseBuilder[string, struct{}, struct{}](true, StringCodec{}, EmptyCodec{}, EmptyCodec{})
	if err := b.AddDocument(testDoc{ID: 0, Text: "x"}); err == nil {
		t.Fatal("expected error for document id 0")
	}
}

func TestDatabasePhraseQueryHighlight(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q := db.PhraseQuery("quick brown fox", TrivialFilter[struct{}]{})

	var got []SentencePart
	for r := range db.Query(q) {
		got = r.Highlighted()
	}
	if got == nil {
		t.Fatal("expected a match with highlights")
	}

	var highlighted string
	for _, part := range got {
		if part.Highlight {
			highlighted += part.Text
		}
	}
	if highlighted != "quick brown fox" {
		t.Fatalf("highlighted text = %q, want %q", highlighted, "quick brown fox")
	}
	// The surrounding text must still be present, just unhighlighted.
	var full string
	for _, part := range got {
		full += part.Text
	}
	if full != "the quick brown fox jumps over the lazy dog" {
		t.Fatalf("reassembled text = %q", full)
	}
}

func TestDatabaseKeywordsQueryHighlight(t *testing.T) {
	db := buildTestDB(t, testCorpus())
	q := NewKeywordsQuery[struct{}, struct{}](db.TokenizePhrase("brown"), TrivialFilter[struct{}]{})

	found := false
	for r := range db.Query(q) {
		if r.ID != (SentenceID{Doc: 1, Sentence: 0}) {
			continue
		}
		found = true
		var highlighted string
		for _, part := range r.Highlighted() {
			if part.Highlight {
				highlighted += part.Text
			}
		}
		if highlighted != "brown" {
			t.Fatalf("highlighted text = %q, want %q", highlighted, "brown")
		}
	}
	if !found {
		t.Fatal("expected doc 1 sentence 0 to match \"brown\"")
	}
}

type maxPriorityFilter struct{ max uint32 }

func (f maxPriorityFilter) FilterDocument(priority uint32) bool { return priority <= f.max }
func (f maxPriorityFilter) Needed() bool                        { return true }

func TestDatabaseDocumentFilterExcludesDocument(t *testing.T) {
	dir := t.TempDir()
	b := NewDatabaseBuilder[string, uint32, struct{}](true, StringCodec{}, Uint32Codec{}, EmptyCodec{})
	docs := []DocumentData[string, uint32]{
		{ID: 1, Text: "the quick brown fox", Payload: "doc1", Metadata: 1},
		{ID: 2, Text: "a second quick fox story", Payload: "doc2", Metadata: 9},
	}
	for _, d := range docs {
		if err := b.AddDocument(d); err != nil {
			t.Fatalf("AddDocument(%d): %v", d.ID, err)
		}
	}
	db, err := b.BuildIn(dir)
	if err != nil {
		t.Fatalf("BuildIn: %v", err)
	}

	filter := maxPriorityFilter{max: 5}
	q := NewKeywordsQuery[uint32, struct{}](db.TokenizePhrase("quick fox"), filter)

	var got []SentenceID
	for r := range db.Query(q) {
		got = append(got, r.ID)
	}
	want := []SentenceID{{Doc: 1, Sentence: 0}}
	assertSentenceIDsEqual(t, got, want)
}

func TestAddDocumentRejectsDuplicateID(t *testing.T) {
	b := NewDatabaseBuilder[string, struct{}, struct{}](true, StringCodec{}, EmptyCodec{}, EmptyCodec{})
	if err := b.AddDocument(testDoc{ID: 1, Text: "x"}); err != nil {
		t.Fatalf("first AddDocument: %v", err)
	}
	if err := b.AddDocument(testDoc{ID: 1, Text: "y"}); err == nil {
		t.Fatal("expected error for duplicate document id")
	}
}
