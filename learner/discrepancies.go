package learner

import (
	"sort"

	"github.com/phonolearn/plp/align"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

// discKey identifies one discrepancy: a target segment (or the virtual
// empty target, for epenthesis) observed with a given replacement (or the
// empty replacement, for deletion). Resolves the discrepancy-store shape
// Open Question: unlike original_source/src/discrepancies.py, which stores
// either a bare Rule or a list of Rules depending on whether a
// mutual-exclusivity split occurred, Go's static typing makes a uniform
// []*rule.Rule the natural container — a single rule is just a
// one-element slice, and GetRules needs no type switch to flatten it.
type discKey struct {
	target      *segment.Segment
	targetEmpty bool
	repl        *segment.Segment
	replEmpty   bool
}

func litSeg(p seq.Position) *segment.Segment {
	if p.Kind == seq.KindSegment {
		return p.Seg
	}
	return nil
}

func targetKeyFrom(p seq.Position) discKey {
	if align.IsEmpty(p) {
		return discKey{targetEmpty: true}
	}
	return discKey{target: litSeg(p)}
}

func fullKeyFrom(targetPos, replPos seq.Position) discKey {
	k := targetKeyFrom(targetPos)
	if align.IsEmpty(replPos) {
		k.replEmpty = true
	} else {
		k.repl = litSeg(replPos)
	}
	return k
}

// builderKey returns the map key the Learner's rule builders are indexed
// by: the target's IPA string, or "" for the virtual empty target. IPA
// strings are never empty, so "" is never ambiguous.
func (k discKey) builderKey() string {
	if k.targetEmpty || k.target == nil {
		return ""
	}
	return k.target.IPA
}

// replPosition reconstructs the seq.Position Builder.Build expects for
// this key's replacement. When replEmpty is set the returned position is
// never inspected by Build, so its exact value doesn't matter.
func (k discKey) replPosition() seq.Position {
	if k.replEmpty || k.repl == nil {
		return seq.Position{}
	}
	return seq.SegPos(k.repl)
}

// sortKey renders k the way original_source/src/plp.py's `sorted(discrepancies)`
// orders its (seg, b) string tuples, so discrepancy processing order is
// deterministic across runs.
func (k discKey) sortKey() string {
	t, r := symbol.Empty, symbol.Empty
	if !k.targetEmpty && k.target != nil {
		t = k.target.IPA
	}
	if !k.replEmpty && k.repl != nil {
		r = k.repl.IPA
	}
	return t + "\x00" + r
}

// discrepancies maps each discovered discrepancy to the rule(s) that
// account for it.
type discrepancies map[discKey][]*rule.Rule

// getRules flattens every stored rule list into one slice, the form
// package grammar's rule set is built from (plp.py's Discrepancies.get_rules).
// Go map iteration order is randomized per run, and this order survives into
// merge_rules' order-dependent fixpoint and natural-class induction order —
// so keys are sorted by sortKey (then rules within a key by String) before
// flattening, making the learned grammar reproducible across runs (spec.md §5).
func (d discrepancies) getRules() []*rule.Rule {
	keys := make([]discKey, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].sortKey() < keys[j].sortKey() })

	var out []*rule.Rule
	for _, k := range keys {
		rules := append([]*rule.Rule(nil), d[k]...)
		sort.Slice(rules, func(i, j int) bool { return rules[i].String() < rules[j].String() })
		out = append(out, rules...)
	}
	return out
}
