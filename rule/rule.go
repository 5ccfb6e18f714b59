// Package rule implements Rule, RulePart, and BPart (spec.md §3/§4.3/§4.7):
// an ordered rewrite rule A → B / C __ D over Sequences, its deterministic
// single-pass application, its accuracy against a vocabulary of training
// pairs, and the merge/specificity relations package grammar orders rules
// by.
//
// Grounded on original_source/src/rule.py for exact semantics (apply,
// matches, get_n_c, merge, feature_changeify, more_specific) and on the
// teacher's nfa/pikevm.go for the shape of the sliding-window, single-pass
// simulation Apply performs (package rule's Apply plays the role pikevm's
// Run loop does: walk the input once, left to right, applying a
// deterministic transition — here, a rewrite — at each matching position).
package rule

import (
	"fmt"
	"strings"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

// RulePart is one of a rule's C, A, or D parts: either the wildcard
// (matches any run of segments, used when a rule has no left or right
// context restriction) or a concrete Sequence pattern, which may be empty
// (the epenthesis target, or a context with no segments).
type RulePart struct {
	Wildcard bool
	Seq      *seq.Sequence
}

// Wild builds the wildcard RulePart.
func Wild() RulePart { return RulePart{Wildcard: true} }

// Part builds a concrete RulePart from a Sequence.
func Part(s *seq.Sequence) RulePart { return RulePart{Seq: s} }

// Empty reports whether the part matches zero segments (only true for a
// non-wildcard part whose Sequence has length zero).
func (p RulePart) Empty() bool { return !p.Wildcard && p.Seq.Len() == 0 }

// Len returns the number of segments the part spans; the wildcard has no
// fixed length and reports 0.
func (p RulePart) Len() int {
	if p.Wildcard {
		return 0
	}
	return p.Seq.Len()
}

func (p RulePart) String() string {
	if p.Wildcard {
		return ""
	}
	return p.Seq.String()
}

// Equal reports structural equality between two RuleParts.
func (p RulePart) Equal(o RulePart) bool {
	if p.Wildcard != o.Wildcard {
		return false
	}
	if p.Wildcard {
		return true
	}
	return p.Seq.Equal(o.Seq)
}

// Match reports whether window — a literal slice of concrete segments —
// satisfies this part as a pattern. The wildcard matches only the
// zero-length window, since a wildcard RulePart contributes no positions to
// the matched CAD window itself (spec.md §4.3: wildcard context means "no
// context restriction", not "one arbitrary segment").
func (p RulePart) Match(window *seq.Sequence) bool {
	if p.Wildcard {
		return window.Len() == 0
	}
	return p.Seq.Matches(window)
}

func (p RulePart) copyPart() RulePart {
	if p.Wildcard {
		return p
	}
	return RulePart{Seq: p.Seq.Copy()}
}

// BPart is a rule's replacement: either a literal Sequence (possibly empty,
// for deletion) or a single feature-change ("rewrite the target's F feature
// to +/-"), the compact form FeatureChangeify produces when a single-segment
// target and replacement differ in exactly one feature (spec.md §4.7).
type BPart struct {
	FeatureChange bool
	Sign          segment.Value
	Feature       string
	Seq           *seq.Sequence
}

// BSeq builds a literal-sequence BPart.
func BSeq(s *seq.Sequence) BPart { return BPart{Seq: s} }

// BFeature builds a feature-change BPart, e.g. BFeature(segment.Minus,
// "voi") for "devoice the target".
func BFeature(sign segment.Value, feat string) BPart {
	return BPart{FeatureChange: true, Sign: sign, Feature: feat}
}

// Empty reports whether the replacement is the empty string (deletion).
func (b BPart) Empty() bool { return !b.FeatureChange && b.Seq.Len() == 0 }

// Len returns the number of segments the replacement spans; a feature
// change always replaces exactly one segment with one segment.
func (b BPart) Len() int {
	if b.FeatureChange {
		return 1
	}
	return b.Seq.Len()
}

func (b BPart) String() string {
	if b.FeatureChange {
		return "[" + string(b.Sign) + b.Feature + "]"
	}
	return b.Seq.String()
}

// Equal reports structural equality between two BParts.
func (b BPart) Equal(o BPart) bool {
	if b.FeatureChange != o.FeatureChange {
		return false
	}
	if b.FeatureChange {
		return b.Sign == o.Sign && b.Feature == o.Feature
	}
	return b.Seq.Equal(o.Seq)
}

func (b BPart) copyPart() BPart {
	if b.FeatureChange {
		return b
	}
	return BPart{Seq: b.Seq.Copy()}
}

// Apply computes the output segment a feature-change BPart produces for the
// given input segment, falling back to the alphabet's unknown segment if no
// interned segment satisfies the requested feature value (spec.md §7,
// Unresolved feature-change).
func (b BPart) Apply(a *alphabet.Alphabet, in *segment.Segment) *segment.Segment {
	out, ok, _ := a.SetFeats(in, []string{b.Feature}, []segment.Value{b.Sign})
	if !ok {
		return a.Unknown()
	}
	return out
}

// Rule is an ordered rewrite rule A → B / C __ D.
type Rule struct {
	C, A, D  RulePart
	B        BPart
	Alphabet *alphabet.Alphabet
}

// New builds a Rule from its four parts.
func New(a *alphabet.Alphabet, c, target, d RulePart, b BPart) *Rule {
	return &Rule{C: c, A: target, D: d, B: b, Alphabet: a}
}

// String renders the rule in its canonical printed form, spec.md §6:
// "A → B / C __ D", with an empty A/B/D rendered as nothing and a wildcard
// C/D rendered as nothing (so "∅ → i / __ {p,t,k}" prints as " → i /  __
// {p,t,k}", with two spaces before "__").
func (r *Rule) String() string {
	return fmt.Sprintf("%s → %s / %s __ %s", r.A.String(), r.B.String(), r.C.String(), r.D.String())
}

// Equal compares rules by their canonical printed form.
func (r *Rule) Equal(o *Rule) bool { return r.String() == o.String() }

// Len returns the rule's total context-window width (|C|+|A|+|D|).
func (r *Rule) Len() int { return r.C.Len() + r.A.Len() + r.D.Len() }

// Copy returns a deep copy of r (Sequences are copied; segments, classes,
// and the Alphabet are shared by identity).
func (r *Rule) Copy() *Rule {
	return &Rule{
		C:        r.C.copyPart(),
		A:        r.A.copyPart(),
		D:        r.D.copyPart(),
		B:        r.B.copyPart(),
		Alphabet: r.Alphabet,
	}
}

// CAD concatenates the rule's C, A, and D parts into a single Sequence
// (wildcard parts contribute no positions), the form package natclass
// widens feature by feature during induction.
func (r *Rule) CAD() *seq.Sequence {
	out := seq.Empty(r.Alphabet)
	if !r.C.Wildcard {
		out = out.Concat(r.C.Seq)
	}
	if !r.A.Empty() {
		out = out.Concat(r.A.Seq)
	}
	if !r.D.Wildcard {
		out = out.Concat(r.D.Seq)
	}
	return out
}

// AIndex returns the index within CAD() where A's first position begins,
// and whether A occupies any position at all — an empty A (the epenthesis
// target) has no occupied index, so the second return is false.
func (r *Rule) AIndex() (int, bool) {
	if r.A.Empty() {
		return 0, false
	}
	return r.C.Len(), true
}

// UpdateAt replaces the position at global CAD index idx (as returned by
// CAD's concatenation order) with p, routing the write into whichever of
// C, A, or D owns that index. Reports false if idx falls outside all three
// parts (e.g. inside a wildcard). Used by package natclass to install a
// widened natural class in place of a literal position.
func (r *Rule) UpdateAt(idx int, p seq.Position) bool {
	lenC, lenA, lenD := r.C.Len(), r.A.Len(), r.D.Len()
	cStart, cEnd := 0, lenC-1
	aStart, aEnd := cEnd+1, cEnd+lenA
	dStart, dEnd := aEnd+1, aEnd+lenD

	switch {
	case lenC > 0 && idx >= cStart && idx <= cEnd:
		r.C.Seq.Positions[idx] = p
		return true
	case lenA > 0 && idx >= aStart && idx <= aEnd:
		r.A.Seq.Positions[idx-lenC] = p
		return true
	case lenD > 0 && idx >= dStart && idx <= dEnd:
		r.D.Seq.Positions[idx-lenC-lenA] = p
		return true
	}
	return false
}

// FeatureChangeify rewrites a literal-segment-to-literal-segment B as a
// single feature change when the target and replacement differ by exactly
// one feature value (spec.md §4.7: "merges collapse to a feature change
// when possible"). A no-op when A or B is not a bare single segment, or
// when the two segments differ by more than one feature.
func (r *Rule) FeatureChangeify() *Rule {
	if r.B.FeatureChange || r.A.Len() != 1 || r.B.Len() != 1 {
		return r
	}
	if r.A.Seq.Positions[0].Kind != seq.KindSegment || r.B.Seq.Positions[0].Kind != seq.KindSegment {
		return r
	}
	aSeg := r.A.Seq.Positions[0].Seg
	bSeg := r.B.Seq.Positions[0].Seg

	aPlus := plusFeats(r.Alphabet.FeatVals(aSeg, true))
	bPlus := plusFeats(r.Alphabet.FeatVals(bSeg, true))
	added := setDiff(bPlus, aPlus)
	removed := setDiff(aPlus, bPlus)

	switch {
	case len(added) == 1 && len(removed) == 0:
		r.B = BFeature(segment.Plus, strings.TrimPrefix(added[0], "+"))
	case len(removed) == 1 && len(added) == 0:
		r.B = BFeature(segment.Minus, strings.TrimPrefix(removed[0], "+"))
	}
	return r
}

func plusFeats(vals map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for k := range vals {
		if strings.HasPrefix(k, "+") {
			out[k] = struct{}{}
		}
	}
	return out
}

func setDiff(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
