package strata

import "testing"

func TestSentenceIDTombstone(t *testing.T) {
	if !Tombstone.IsTombstone() {
		t.Fatal("Tombstone.IsTombstone() = false, want true")
	}
	if (SentenceID{Doc: 1}).IsTombstone() {
		t.Error("SentenceID{Doc: 1}.IsTombstone() = true, want false")
	}
	if (SentenceID{Sentence: 1}).IsTombstone() {
		t.Error("SentenceID{Sentence: 1}.IsTombstone() = true, want false")
	}
}

func TestSentenceIDEncodeDecodeRoundTrip(t *testing.T) {
	ids := []SentenceID{
		{Doc: 0, Sentence: 0},
		{Doc: 1, Sentence: 0},
		{Doc: 1, Sentence: 42},
		{Doc: 0xFFFFFFFF, Sentence: 0xFFFFFFFF},
	}
	for _, id := range ids {
		got := DecodeSentenceID(id.Encode())
		if got != id {
			t.Errorf("round trip of %+v = %+v", id, got)
		}
	}
}

func TestSentenceIDOrdering(t *testing.T) {
	a := SentenceID{Doc: 1, Sentence: 5}
	b := SentenceID{Doc: 1, Sentence: 6}
	c := SentenceID{Doc: 2, Sentence: 0}

	if !a.Less(b) {
		t.Error("want a < b")
	}
	if !b.Less(c) {
		t.Error("want b < c")
	}
	if a.Compare(a) != 0 {
		t.Error("want a.Compare(a) == 0")
	}
	if Tombstone.Compare(a) >= 0 {
		t.Error("want tombstone to sort below any real id")
	}
}
