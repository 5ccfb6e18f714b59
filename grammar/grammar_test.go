package grammar_test

import (
	"testing"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/grammar"
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

func devoicingRule(t *testing.T, a *alphabet.Alphabet, target string, feature string) *rule.Rule {
	t.Helper()
	c := rule.Wild()
	d := rule.Part(mustSeq(t, "#", a))
	return rule.New(a, c, rule.Part(mustSeq(t, target, a)), d, rule.BFeature(segment.Minus, feature))
}

func TestGrammarApplyAppliesInOrder(t *testing.T) {
	a := testAlphabet(t)
	g := grammar.New()
	g.Add(devoicingRule(t, a, "b", "voi"))
	g.Add(devoicingRule(t, a, "d", "voi"))

	in := mustSeq(t, "ab", a)
	out := g.Apply(in)
	want := mustSeq(t, "ap", a)
	if out.String() != want.String() {
		t.Fatalf("Apply(%q) = %q, want %q", in, out, want)
	}
}

func TestGrammarAddRemoveContains(t *testing.T) {
	a := testAlphabet(t)
	g := grammar.New()
	r := devoicingRule(t, a, "b", "voi")
	g.Add(r)
	if !g.Contains(r) {
		t.Fatalf("expected grammar to contain r")
	}
	g.Remove(r)
	if g.Contains(r) {
		t.Fatalf("expected grammar to no longer contain r after Remove")
	}
	if g.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", g.Len())
	}
}

func TestGrammarOrderRulesByScopeAscendingN(t *testing.T) {
	a := testAlphabet(t)
	g := grammar.New()
	rb := devoicingRule(t, a, "b", "voi")
	rd := devoicingRule(t, a, "d", "voi")
	g.Add(rd)
	g.Add(rb)

	pairs := vocab.Vocabulary{
		{UF: mustSeq(t, "ab", a), SF: mustSeq(t, "ap", a)},
		{UF: mustSeq(t, "ad", a), SF: mustSeq(t, "at", a)},
		{UF: mustSeq(t, "abab", a), SF: mustSeq(t, "apap", a)},
	}
	g.OrderRulesByScope(pairs)
	if g.Rules[0] != rd {
		t.Fatalf("expected the lower-N rule (rd) first, got %s", g.Rules[0])
	}
}

func TestGrammarOrderRulesDeterministicOnTies(t *testing.T) {
	a := testAlphabet(t)
	g1 := grammar.New()
	rb := devoicingRule(t, a, "b", "voi")
	rd := devoicingRule(t, a, "d", "voi")
	g1.Add(rb)
	g1.Add(rd)

	g2 := grammar.New()
	g2.Add(rd)
	g2.Add(rb)

	pairs := vocab.Vocabulary{
		{UF: mustSeq(t, "ab", a), SF: mustSeq(t, "ap", a)},
		{UF: mustSeq(t, "ad", a), SF: mustSeq(t, "at", a)},
	}
	g1.OrderRules(pairs)
	g2.OrderRules(pairs)
	if g1.String() != g2.String() {
		t.Fatalf("OrderRules not deterministic across input order:\n%s\nvs\n%s", g1.String(), g2.String())
	}
}

func TestGrammarMergeRulesFoldsCompatibleSingletons(t *testing.T) {
	a := testAlphabet(t)
	g := grammar.New()
	g.Add(devoicingRule(t, a, "b", "voi"))
	g.Add(devoicingRule(t, a, "d", "voi"))

	pairs := vocab.Vocabulary{
		{UF: mustSeq(t, "ab", a), SF: mustSeq(t, "ap", a)},
		{UF: mustSeq(t, "ad", a), SF: mustSeq(t, "at", a)},
	}
	g.MergeRules(pairs)
	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after merging b->p/__# and d->t/__#", g.Len())
	}
}
