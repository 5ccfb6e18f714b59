package natclass_test

import (
	"testing"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/natclass"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

func testAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	feats := []string{"cons", "voi", "son", "lab"}
	table := map[string][]segment.Value{
		"b": {segment.Plus, segment.Plus, segment.Minus, segment.Plus},
		"t": {segment.Plus, segment.Minus, segment.Minus, segment.Minus},
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

func TestInduceWithNoEntriesReturnsRuleUnchanged(t *testing.T) {
	a := testAlphabet(t)
	r := rule.New(a, rule.Wild(), rule.Part(mustSeq(t, "b", a)), rule.Wild(), rule.BFeature(segment.Minus, "voi"))
	gen := natclass.New(a, true)
	out := gen.Induce(r, nil)
	if out != r {
		t.Fatalf("Induce with no context positions should return r unchanged")
	}
}

func TestInduceGeneralizesLiteralContextWithNoCounterexamples(t *testing.T) {
	a := testAlphabet(t)
	r := rule.New(a, rule.Wild(), rule.Part(mustSeq(t, "b", a)), rule.Part(mustSeq(t, "t", a)), rule.BFeature(segment.Minus, "voi"))
	gen := natclass.New(a, true)

	out := gen.Induce(r, nil)
	if out == r {
		t.Fatalf("expected Induce to generalize the literal D position")
	}
	if out.D.Wildcard {
		t.Fatalf("D should still be a concrete (now generalized) part, not a wildcard")
	}
	pos := out.D.Seq.Positions[0]
	if pos.Kind != seq.KindClass {
		t.Fatalf("D position kind = %v, want KindClass", pos.Kind)
	}
	if pos.Class.Len() == 0 {
		t.Fatalf("generalized class has no features")
	}
	tSeg, ok := a.Lookup("t")
	if !ok {
		t.Fatalf("expected alphabet to contain segment %q", "t")
	}
	if !pos.Class.Contains(tSeg) {
		t.Fatalf("generalized class must still contain the original segment t")
	}
}
