package rule_test

import (
	"testing"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/vocab"
)

func testAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	feats := []string{"cons", "voi", "son", "lab"}
	table := map[string][]segment.Value{
		"p": {segment.Plus, segment.Minus, segment.Minus, segment.Plus},
		"b": {segment.Plus, segment.Plus, segment.Minus, segment.Plus},
		"t": {segment.Plus, segment.Minus, segment.Minus, segment.Minus},
		"d": {segment.Plus, segment.Plus, segment.Minus, segment.Minus},
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

// b → p / __ # : final devoicing.
func devoicingRule(t *testing.T, a *alphabet.Alphabet) *rule.Rule {
	t.Helper()
	target := mustSeq(t, "b", a)
	repl := rule.BFeature(segment.Minus, "voi")
	d := rule.Part(mustSeq(t, "#", a))
	return rule.New(a, rule.Wild(), rule.Part(target), d, repl)
}

func TestRuleApplyFeatureChange(t *testing.T) {
	a := testAlphabet(t)
	r := devoicingRule(t, a)

	in := mustSeq(t, "ab", a)
	out := r.Apply(in)
	want := mustSeq(t, "ap", a)
	if out.String() != want.String() {
		t.Fatalf("Apply(%q) = %q, want %q", in, out, want)
	}
}

func TestRuleApplyNoMatchMidword(t *testing.T) {
	a := testAlphabet(t)
	r := devoicingRule(t, a)

	in := mustSeq(t, "aba", a)
	out := r.Apply(in)
	if out.String() != in.String() {
		t.Fatalf("Apply(%q) = %q, want unchanged", in, out)
	}
}

func TestRuleAppliesAccuracy(t *testing.T) {
	a := testAlphabet(t)
	r := devoicingRule(t, a)

	pairs := vocab.Vocabulary{
		{UF: mustSeq(t, "ab", a), SF: mustSeq(t, "ap", a)},
		{UF: mustSeq(t, "ad", a), SF: mustSeq(t, "at", a)},
	}
	n, c := r.GetNC(pairs)
	if n != 2 || c != 2 {
		t.Fatalf("GetNC = %d,%d want 2,2", n, c)
	}
}

func TestRuleEpenthesis(t *testing.T) {
	a := testAlphabet(t)
	// ∅ → b / p __ # : epenthesize b after final p.
	r := rule.New(a, rule.Part(mustSeq(t, "p", a)), rule.Part(seq.Empty(a)), rule.Part(mustSeq(t, "#", a)), rule.BSeq(mustSeq(t, "b", a)))

	in := mustSeq(t, "ap", a)
	out := r.Apply(in)
	want := mustSeq(t, "apb", a)
	if out.String() != want.String() {
		t.Fatalf("Apply(%q) = %q, want %q", in, out, want)
	}
}

func TestFeatureChangeify(t *testing.T) {
	a := testAlphabet(t)
	target := mustSeq(t, "b", a)
	repl := mustSeq(t, "p", a)
	r := rule.New(a, rule.Wild(), rule.Part(target), rule.Part(mustSeq(t, "#", a)), rule.BSeq(repl))

	r.FeatureChangeify()
	if !r.B.FeatureChange {
		t.Fatalf("FeatureChangeify left B as literal: %s", r)
	}
	if r.B.Feature != "voi" || r.B.Sign != segment.Minus {
		t.Fatalf("FeatureChangeify produced %s, want [-voi]", r.B)
	}
}

func TestRuleMergeUnifiesSingletonTargets(t *testing.T) {
	a := testAlphabet(t)
	d := rule.Part(mustSeq(t, "#", a))
	r1 := rule.New(a, rule.Wild(), rule.Part(mustSeq(t, "b", a)), d, rule.BFeature(segment.Minus, "voi"))
	r2 := rule.New(a, rule.Wild(), rule.Part(mustSeq(t, "d", a)), d, rule.BFeature(segment.Minus, "voi"))

	pairs := vocab.Vocabulary{}
	if !r1.Merge(r2, pairs) {
		t.Fatalf("expected same-B same-context merge to succeed")
	}
	if r1.A.Len() != 1 || r1.A.Seq.Positions[0].Kind != seq.KindSet {
		t.Fatalf("merged rule's A = %s, want a 2-element set", r1.A)
	}
}
