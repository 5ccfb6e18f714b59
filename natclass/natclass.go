// Package natclass implements natural-class induction (spec.md §4.6): once
// a literal rule has been built and merged, widen each of its literal
// context (and, unless skipped, target) positions into the natural class
// of features shared by the literal it replaces, greedily adding whichever
// feature best separates correct from incorrect predictions over the
// corpus's n-grams until the Tolerance Principle accepts the
// generalization.
//
// Grounded on original_source/src/nat_class_gen.py's NatClassGen
// (induce_nat_classes/build_new_seq/get_best_feat/get_feat_score), and on
// the teacher's nfa/charclass_extract.go for the idiom of mutating a
// pattern's class membership in place while testing candidates, rolling
// back additions that don't pan out before trying the next.
package natclass

import (
	"math"
	"sort"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/class"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/ngram"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/tolerance"
)

// Gen induces natural classes over rules built against a fixed alphabet.
type Gen struct {
	alphabet *alphabet.Alphabet
	skipGenA bool
}

// New builds a Gen. skipGenA, when true, leaves the rule's target position
// as a literal rather than attempting to generalize it too — an
// optimization some experiments want when only the context, not the
// target itself, should ever be allowed to generalize.
func New(a *alphabet.Alphabet, skipGenA bool) *Gen {
	return &Gen{alphabet: a, skipGenA: skipGenA}
}

type featOpt struct {
	Feat string
	Idx  int
}

type labeledEntry struct {
	Seq   *seq.Sequence
	Freq  int
	Label bool
}

// Induce attempts to replace r's literal context (and target, unless
// SkipGenA) positions with natural classes, scored against entries — the
// n-grams of the given window width, each rewritten by every
// higher-ranked rule in the grammar before being handed here (spec.md
// §4.6). Returns r unchanged if no productive generalization is found.
func (g *Gen) Induce(r *rule.Rule, entries []*ngram.Entry) *rule.Rule {
	cad := r.CAD()
	targetIdx, hasA := r.AIndex()

	positions := make([]seq.Position, cad.Len())
	featSpace := map[featOpt]bool{}
	for idx, pos := range cad.Positions {
		switch {
		case isBoundaryPos(pos):
			positions[idx] = pos
		case g.skipGenA && hasA && idx == targetIdx:
			positions[idx] = pos
		default:
			positions[idx] = seq.ClassPos(class.Empty(g.alphabet))
			for feat := range g.alphabet.SharedFeats(segsOf(pos)...) {
				featSpace[featOpt{Feat: feat, Idx: idx}] = true
			}
		}
	}
	newSeq := seq.FromPositions(positions, g.alphabet)

	k := cad.Len()
	var labeled []labeledEntry
	for _, e := range entries {
		if e.Seq.Len() != k || !newSeq.Matches(e.Seq) {
			continue
		}
		labeled = append(labeled, labeledEntry{Seq: e.Seq, Freq: e.Freq, Label: r.MatchesCAD(e.Seq)})
	}

	success := false
	lastScore := math.NaN()
	for len(featSpace) > 0 {
		best, score, ok := bestFeat(newSeq, featSpace, labeled)
		if !ok {
			break
		}
		delete(featSpace, best)
		if score == lastScore {
			continue
		}
		lastScore = score

		newSeq.Positions[best.Idx].Class.AddFeat(best.Feat)
		n, c := tallyNC(newSeq, labeled)
		if tolerance.AcceptWeighted(float64(n), float64(c)) {
			success = true
			break
		}
		labeled = filterMatching(newSeq, labeled)
	}

	if !success {
		return r
	}

	newR := r.Copy()
	for i, pos := range newSeq.Positions {
		if pos.Kind == seq.KindClass && pos.Class.Len() == 0 {
			if feat := g.bestBackfillFeat(segsOf(cad.Positions[i])); feat != "" {
				pos.Class.AddFeat(feat)
			}
		}
		newR.UpdateAt(i, pos)
	}
	return newR
}

func bestFeat(s *seq.Sequence, featSpace map[featOpt]bool, labeled []labeledEntry) (featOpt, float64, bool) {
	opts := make([]featOpt, 0, len(featSpace))
	for f := range featSpace {
		opts = append(opts, f)
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Feat != opts[j].Feat {
			return opts[i].Feat < opts[j].Feat
		}
		return opts[i].Idx < opts[j].Idx
	})

	best := -1.0
	var argmax featOpt
	found := false
	for _, f := range opts {
		score := featScore(s, f, labeled)
		if score > best {
			best = score
			argmax = f
			found = true
		}
	}
	return argmax, best, found
}

func featScore(s *seq.Sequence, f featOpt, labeled []labeledEntry) float64 {
	s.Positions[f.Idx].Class.AddFeat(f.Feat)
	n, c := tallyNC(s, labeled)
	s.Positions[f.Idx].Class.RemoveFeat(f.Feat)
	if n == 0 {
		return 0
	}
	return float64(c) / float64(n)
}

func tallyNC(s *seq.Sequence, labeled []labeledEntry) (n, c int) {
	for _, e := range labeled {
		if s.Matches(e.Seq) {
			n += e.Freq
			if e.Label {
				c += e.Freq
			}
		}
	}
	return n, c
}

func filterMatching(s *seq.Sequence, labeled []labeledEntry) []labeledEntry {
	out := labeled[:0:0]
	for _, e := range labeled {
		if s.Matches(e.Seq) {
			out = append(out, e)
		}
	}
	return out
}

// bestBackfillFeat picks the feature shared by origSegs that the fewest
// alphabet segments also have (ties broken lexicographically), used when a
// class ends up with no added features: every class must constrain at
// least one feature, or it is indistinguishable from the wildcard
// (spec.md §4.6).
func (g *Gen) bestBackfillFeat(origSegs []*segment.Segment) string {
	shared := g.alphabet.SharedFeats(origSegs...)
	if len(shared) == 0 {
		return ""
	}
	type candidate struct {
		feat string
		size int
	}
	segs := g.alphabet.Segments()
	cands := make([]candidate, 0, len(shared))
	for feat := range shared {
		size := 0
		for _, s := range segs {
			if _, ok := g.alphabet.FeatVals(s, true)[feat]; ok {
				size++
			}
		}
		cands = append(cands, candidate{feat: feat, size: size})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].size != cands[j].size {
			return cands[i].size < cands[j].size
		}
		return cands[i].feat < cands[j].feat
	})
	return cands[0].feat
}

func segsOf(p seq.Position) []*segment.Segment {
	switch p.Kind {
	case seq.KindSegment:
		return []*segment.Segment{p.Seg}
	case seq.KindSet:
		return p.Set
	default:
		return nil
	}
}

func isBoundaryPos(p seq.Position) bool {
	return p.Kind == seq.KindSegment && p.Seg != nil && symbol.IsBoundary(p.Seg.IPA)
}
