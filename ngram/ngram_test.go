package ngram_test

import (
	"testing"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/ngram"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

func testAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	feats := []string{"cons", "voi"}
	table := map[string][]segment.Value{
		"a": {segment.Minus, segment.Plus},
		"b": {segment.Plus, segment.Plus},
	}
	a := alphabet.New(feats, table)
	if err := a.AddAllKnown(); err != nil {
		t.Fatalf("AddAllKnown: %v", err)
	}
	return a
}

func TestStoreAddCountsOverlappingWindows(t *testing.T) {
	a := testAlphabet(t)
	s := ngram.NewStore(a, []int{1, 2})

	uf, err := seq.FromString("ab", a)
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	s.Add(uf)
	s.Add(uf)

	unigrams := s.Entries(1)
	var freqA, freqB int
	for _, e := range unigrams {
		switch e.Seq.String() {
		case "a":
			freqA = e.Freq
		case "b":
			freqB = e.Freq
		}
	}
	if freqA != 2 || freqB != 2 {
		t.Fatalf("freqA=%d freqB=%d, want 2 and 2", freqA, freqB)
	}

	bigrams := s.Entries(2)
	found := false
	for _, e := range bigrams {
		if e.Seq.String() == "ab" && e.Freq == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bigram %q with freq 2 in %v", "ab", bigrams)
	}
}

func TestStoreEntriesDeterministicOrder(t *testing.T) {
	a := testAlphabet(t)
	s := ngram.NewStore(a, []int{1})
	uf, _ := seq.FromString("ba", a)
	s.Add(uf)

	first := s.Entries(1)
	second := s.Entries(1)
	if len(first) != len(second) {
		t.Fatalf("Entries length differs across calls")
	}
	for i := range first {
		if first[i].Seq.String() != second[i].Seq.String() {
			t.Fatalf("Entries order not deterministic at %d: %q vs %q", i, first[i].Seq.String(), second[i].Seq.String())
		}
	}
}

func TestStoreEntriesUnknownWidthReturnsNil(t *testing.T) {
	a := testAlphabet(t)
	s := ngram.NewStore(a, []int{1})
	if got := s.Entries(5); got != nil {
		t.Fatalf("Entries(5) = %v, want nil", got)
	}
}
