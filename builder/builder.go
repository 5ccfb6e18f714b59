// Package builder implements RuleBuilder (spec.md §4.5): for one target
// segment (or the virtual empty target that accounts for epenthesis),
// accumulate every training-pair instance of that target's context and
// search for the minimal sufficient context window that explains the
// target's replacement, widening the window when a narrower one is not
// accurate enough, splitting mutually exclusive contexts apart, and
// falling back to one lexicalized rule per instance as a last resort.
//
// Grounded on original_source/src/rule_builder.py's RuleBuilder class,
// translated from its numpy object-matrix implementation into typed Go
// slices (size_k_windows' column-wise set aggregation becomes
// windowCol.Positions; the pad/mid/segment three-way cell tag
// matCell.Pad/Mid/Pos). The scoring loop and mutual-exclusion split mirror
// the teacher's own window/region search in nfa/pikevm.go's priority-queue
// simulation: try the narrowest hypothesis first, widen only when it fails
// to explain the data, and when two narrower hypotheses conflict, split
// rather than force one overly broad rule.
package builder

import (
	"github.com/rs/zerolog"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/vocab"
)

// Threshold is the acceptance gate a candidate rule's (N, C) must pass
// (package tolerance.Accept, or a test double).
type Threshold func(n, c int) bool

// instance records one occurrence of the builder's target segment: its
// left and right context (boundary-anchored, widest possible) and the
// replacement it was observed with.
type instance struct {
	lc, rc []seq.Position
	b      seq.Position
	bEmpty bool
}

// Builder accumulates instances of one target segment (or the virtual
// empty target) across a training vocabulary and builds rules explaining
// its alternations.
type Builder struct {
	target      seq.Position
	targetEmpty bool
	alphabet    *alphabet.Alphabet
	threshold   Threshold

	instances []instance
	pairs     vocab.Vocabulary
	seenPair  map[string]bool

	logger zerolog.Logger
}

// New builds a Builder for the given target. targetEmpty selects the
// virtual empty-string target used to account for epenthesis instances.
// logger receives one Warn event per lexicalized fallback; pass
// zerolog.Nop() to silence it.
func New(target seq.Position, targetEmpty bool, a *alphabet.Alphabet, threshold Threshold, logger zerolog.Logger) *Builder {
	return &Builder{target: target, targetEmpty: targetEmpty, alphabet: a, threshold: threshold, logger: logger, seenPair: make(map[string]bool)}
}

func boundary(a *alphabet.Alphabet) seq.Position {
	return seq.SegPos(segment.New(symbol.WordBoundary, nil))
}

// leftRightContext returns the boundary-anchored left and right context of
// position i in uf. When aroundEmpty is true, the target's own position
// (i) is itself included at the end of the left context, the shape used
// for the virtual empty-target builder's epenthesis instances (spec.md
// §4.5, "around_empty").
func leftRightContext(uf *seq.Sequence, i int, aroundEmpty bool, a *alphabet.Alphabet) (lc, rc []seq.Position) {
	lc = append(lc, boundary(a))
	for idx := 0; idx < uf.Len(); idx++ {
		switch {
		case idx < i:
			lc = append(lc, uf.Positions[idx])
		case idx > i:
			rc = append(rc, uf.Positions[idx])
		case idx == i && aroundEmpty:
			lc = append(lc, uf.Positions[idx])
		}
	}
	rc = append(rc, boundary(a))
	return lc, rc
}

// AddInstance records one occurrence of the builder's target at position i
// of uf, observed to have been replaced by b (or by the empty string, when
// bEmpty is true) in the paired surface form sf.
func (b *Builder) AddInstance(uf, sf *seq.Sequence, i int, repl seq.Position, replEmpty, aroundEmpty bool) {
	lc, rc := leftRightContext(uf, i, aroundEmpty, b.alphabet)
	b.instances = append(b.instances, instance{lc: lc, rc: rc, b: repl, bEmpty: replEmpty})
	key := uf.String() + "\x00" + sf.String()
	if !b.seenPair[key] {
		b.seenPair[key] = true
		b.pairs = append(b.pairs, vocab.Pair{UF: uf, SF: sf})
	}
}

// Build searches for the rule (or, on a mutually-exclusive or lexicalized
// fallback, the rules) explaining every instance recorded against the
// given replacement.
func (b *Builder) Build(repl seq.Position, replEmpty bool) []*rule.Rule {
	pos := make([]instance, 0, len(b.instances))
	for _, inst := range b.instances {
		if inst.bEmpty == replEmpty && (replEmpty || inst.b.Equal(repl)) {
			pos = append(pos, inst)
		}
	}

	zeroRule := b.ruleFromWindow(nil, 0, repl, replEmpty)
	if n, c := zeroRule.GetNC(b.pairs); b.threshold(n, c) {
		return []*rule.Rule{zeroRule}
	}

	maxLC, maxRC := 0, 0
	for _, inst := range pos {
		if len(inst.lc) > maxLC {
			maxLC = len(inst.lc)
		}
		if len(inst.rc) > maxRC {
			maxRC = len(inst.rc)
		}
	}
	numCols := maxLC + maxRC + 1
	middle := maxLC

	mat := make([][]matCell, len(pos))
	for i, inst := range pos {
		mat[i] = padRow(inst.lc, inst.rc, maxLC, maxRC)
	}

	return b.buildFromContexts(repl, replEmpty, mat, numCols, middle)
}
