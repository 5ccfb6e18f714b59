package builder_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/builder"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/tolerance"
	"github.com/phonolearn/plp/vocab"
)

func testAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	feats := []string{"cons", "voi", "son", "lab"}
	table := map[string][]segment.Value{
		"p": {segment.Plus, segment.Minus, segment.Minus, segment.Plus},
		"b": {segment.Plus, segment.Plus, segment.Minus, segment.Plus},
		"a": {segment.Minus, segment.Plus, segment.Plus, segment.Minus},
	}
	a := alphabet.New(feats, table)
	if err := a.AddAllKnown(); err != nil {
		t.Fatalf("AddAllKnown: %v", err)
	}
	return a
}

func mustSeq(t *testing.T, s string, a *alphabet.Alphabet) *seq.Sequence {
	t.Helper()
	out, err := seq.FromString(s, a)
	if err != nil {
		t.Fatalf("seq.FromString(%q): %v", s, err)
	}
	return out
}

func targetPos(t *testing.T, a *alphabet.Alphabet) seq.Position {
	t.Helper()
	seg, ok := a.Lookup("b")
	if !ok {
		t.Fatalf("expected alphabet to contain %q", "b")
	}
	return seq.SegPos(seg)
}

func replPos(t *testing.T, a *alphabet.Alphabet, ipa string) seq.Position {
	t.Helper()
	seg, ok := a.Lookup(ipa)
	if !ok {
		t.Fatalf("expected alphabet to contain %q", ipa)
	}
	return seq.SegPos(seg)
}

func TestBuildZeroRuleWhenContextFreeIsAccurate(t *testing.T) {
	a := testAlphabet(t)
	b := builder.New(targetPos(t, a), false, a, tolerance.Accept, zerolog.Nop())

	uf, sf := mustSeq(t, "ab", a), mustSeq(t, "ap", a)
	b.AddInstance(uf, sf, 1, replPos(t, a, "p"), false, false)

	rules := b.Build(replPos(t, a, "p"), false)
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(rules))
	}
	if !rules[0].C.Wildcard || !rules[0].D.Wildcard {
		t.Fatalf("expected a context-free zero rule, got %s", rules[0])
	}
}

func TestBuildWidensWindowWhenContextFreeFails(t *testing.T) {
	a := testAlphabet(t)
	b := builder.New(targetPos(t, a), false, a, tolerance.Accept, zerolog.Nop())

	ufFinal, sfFinal := mustSeq(t, "ab", a), mustSeq(t, "ap", a)
	b.AddInstance(ufFinal, sfFinal, 1, replPos(t, a, "p"), false, false)

	ufMedial, sfMedial := mustSeq(t, "aba", a), mustSeq(t, "aba", a)
	b.AddInstance(ufMedial, sfMedial, 1, replPos(t, a, "b"), false, false)

	rules := b.Build(replPos(t, a, "p"), false)
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1, got %v", len(rules), rules)
	}
	r := rules[0]
	if r.D.Wildcard || r.D.Seq.String() != "#" {
		t.Fatalf("expected D = #, got %s", r.D.String())
	}

	pairs := vocab.Vocabulary{
		{UF: ufFinal, SF: sfFinal},
		{UF: ufMedial, SF: sfMedial},
	}
	n, c := r.GetNC(pairs)
	if n != 1 || c != 1 {
		t.Fatalf("GetNC = (%d, %d), want (1, 1)", n, c)
	}
}
