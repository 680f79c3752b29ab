package strata

import "testing"

func TestTermMapInternReusesID(t *testing.T) {
	m := NewTermMap(true)
	a := m.Intern("running")
	b := m.Intern("Running")
	if a != b {
		t.Errorf("Intern(\"running\") = %d, Intern(\"Running\") = %d, want equal (case-insensitive + stemmed)", a, b)
	}
	if a == 0 {
		t.Error("interned id must not be 0 (reserved for unknown)")
	}
}

func TestTermMapIDsStartAtOne(t *testing.T) {
	m := NewTermMap(true)
	first := m.Intern("quick")
	if first != 1 {
		t.Errorf("first interned id = %d, want 1", first)
	}
}

func TestTermMapTokenizeSentenceOffsets(t *testing.T) {
	m := NewTermMap(false)
	tokens, terms := m.TokenizeSentence("the quick brown fox")
	if len(tokens) != 4 || len(terms) != 4 {
		t.Fatalf("got %d tokens, %d terms, want 4 and 4", len(tokens), len(terms))
	}
	want := []string{"the", "quick", "brown", "fox"}
	for i, tok := range tokens {
		got := "the quick brown fox"[tok.Start:tok.End]
		if got != want[i] {
			t.Errorf("token %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestFrozenTermMapUnknownWordIsZero(t *testing.T) {
	m := NewTermMap(true)
	m.Intern("quick")
	m.Intern("brown")
	frozen, err := m.Freeze()
	if err != nil {
		t.Fatalf("Freeze error = %v", err)
	}

	ids := frozen.TokenizePhrase("quick zzzqqq")
	if len(ids) != 2 {
		t.Fatalf("TokenizePhrase returned %d ids, want 2", len(ids))
	}
	if ids[0] == 0 {
		t.Error("known word tokenized to 0")
	}
	if ids[1] != 0 {
		t.Errorf("unknown word tokenized to %d, want 0", ids[1])
	}
}

func TestFrozenTermMapRoundTrip(t *testing.T) {
	m := NewTermMap(true)
	words := []string{"quick", "brown", "fox", "jumps", "lazy", "dog"}
	wantIDs := make(map[string]uint32)
	for _, w := range words {
		wantIDs[w] = m.Intern(w)
	}

	frozen, err := m.Freeze()
	if err != nil {
		t.Fatalf("Freeze error = %v", err)
	}
	if frozen.Len() != len(words) {
		t.Fatalf("frozen.Len() = %d, want %d", frozen.Len(), len(words))
	}

	for w, want := range wantIDs {
		got, ok := frozen.Term(w)
		if !ok {
			t.Errorf("Term(%q) ok = false, want true", w)
			continue
		}
		if got != want {
			t.Errorf("Term(%q) = %d, want %d", w, got, want)
		}
	}
}
