package rule

import (
	"github.com/phonolearn/plp/align"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

func boundaryPos() seq.Position {
	return seq.SegPos(segment.New(symbol.WordBoundary, nil))
}

// cStartsWithBoundary reports whether r.C's first position is the word
// boundary — the case Apply must seed its sliding window with a leading
// "#", so a rule whose left context starts at the word edge can still
// fire at the very first real position (spec.md §4.3 step 2).
func (r *Rule) cStartsWithBoundary() bool {
	if r.C.Wildcard || r.C.Seq.Len() == 0 {
		return false
	}
	p := r.C.Seq.Positions[0]
	return p.Kind == seq.KindSegment && p.Seg != nil && symbol.IsBoundary(p.Seg.IPA)
}

// equalsCAD reports whether window — of length r.Len() — satisfies the
// rule's C, A, D parts when sliced into the corresponding three spans.
func (r *Rule) equalsCAD(window *seq.Sequence) bool {
	lenC, lenA, lenD := r.C.Len(), r.A.Len(), r.D.Len()
	if window.Len() != lenC+lenA+lenD {
		return false
	}
	wc := window.Slice(0, lenC)
	wa := window.Slice(lenC, lenC+lenA)
	wd := window.Slice(lenC+lenA, lenC+lenA+lenD)
	return r.C.Match(wc) && r.A.Match(wa) && r.D.Match(wd)
}

// getB computes the replacement Sequence for a matched CAD window.
func (r *Rule) getB(window *seq.Sequence) *seq.Sequence {
	if r.B.FeatureChange {
		in := window.Positions[r.C.Len()].Seg
		out := r.B.Apply(r.Alphabet, in)
		return seq.FromSegments([]*segment.Segment{out}, r.Alphabet)
	}
	return r.B.Seq
}

// MatchesCAD reports whether window (of length r.Len()) satisfies the
// rule's C, A, D parts — the public entry point package natclass uses to
// label n-grams as matching or not during natural-class induction.
func (r *Rule) MatchesCAD(window *seq.Sequence) bool { return r.equalsCAD(window) }

// Apply runs a single deterministic left-to-right pass over s, rewriting
// every window that matches the rule — overlapping windows included —
// simultaneously rather than iteratively (spec.md §4.3): the rule is
// evaluated against the original input throughout, never against its own
// partial output.
//
// Implemented as a "pencil tape" the width of s: each input position is
// first penciled in as itself, then a sliding window of width r.Len()
// (appending a trailing word boundary so D can match string-final context)
// overwrites the tape cells a match covers with the rule's replacement. The
// teacher's pikevm.go runs exactly this shape of single-pass simulation,
// one transition per input byte, never revisiting a byte once consumed.
func (r *Rule) Apply(s *seq.Sequence) *seq.Sequence {
	lenC, lenA, lenD := r.C.Len(), r.A.Len(), r.D.Len()
	k := lenC + lenA + lenD

	tape := make([]*seq.Sequence, s.Len())
	for i, p := range s.Positions {
		tape[i] = seq.FromPositions([]seq.Position{p}, r.Alphabet)
	}

	var window []seq.Position
	if r.cStartsWithBoundary() {
		// spec.md §4.3 step 2: a left context anchored at the word edge must
		// see that edge even before any real input position has been read,
		// or it can never fire at position 0.
		window = append(window, boundaryPos())
	}
	for i := 0; i <= s.Len(); i++ {
		var cur seq.Position
		if i < s.Len() {
			cur = s.Positions[i]
		} else {
			cur = boundaryPos()
		}
		window = append(window, cur)
		if len(window) > k {
			window = window[1:]
		}
		if len(window) < k {
			continue
		}
		winSeq := seq.FromPositions(window, r.Alphabet)
		if !r.equalsCAD(winSeq) {
			continue
		}
		windowStart := i - k + 1

		switch {
		case r.A.Empty(): // epenthesis: insert B after the matched C
			idx := windowStart + lenC - 1
			if idx < 0 {
				idx = 0
			}
			tape[idx] = tape[idx].Concat(r.B.Seq)
		case r.B.FeatureChange:
			pos := windowStart + lenC
			if pos < 0 || pos >= s.Len() {
				continue
			}
			orig := s.Positions[pos].Seg
			tape[pos] = seq.FromPositions([]seq.Position{seq.SegPos(r.B.Apply(r.Alphabet, orig))}, r.Alphabet)
		default: // literal replacement, possibly changing length
			for bi, ai := 0, 0; ai < lenA; ai++ {
				pos := windowStart + lenC + ai
				if pos < 0 || pos >= s.Len() {
					continue
				}
				if bi < r.B.Len() {
					tape[pos] = seq.FromPositions([]seq.Position{r.B.Seq.Positions[bi]}, r.Alphabet)
					bi++
				} else {
					tape[pos] = seq.Empty(r.Alphabet)
				}
				if ai == lenA-1 && bi < r.B.Len() {
					tape[pos] = tape[pos].Concat(r.B.Seq.Slice(bi, r.B.Len()))
				}
			}
		}
	}

	out := seq.Empty(r.Alphabet)
	for _, cell := range tape {
		if cell.Len() > 0 {
			out = out.Concat(cell)
		}
	}
	return out
}

// matches scans uf with the same sliding window Apply uses, and for every
// matching context checks whether sf's aligned slice equals the rule's
// predicted replacement. Returns N (number of matching contexts) and C
// (number where the prediction is borne out).
func (r *Rule) matches(uf, sf *seq.Sequence) (n, c int) {
	lenC, lenA := r.C.Len(), r.A.Len()
	k := r.Len()

	var window []seq.Position
	for i := 0; i <= uf.Len(); i++ {
		var cur seq.Position
		if i < uf.Len() {
			cur = uf.Positions[i]
		} else {
			cur = boundaryPos()
		}
		window = append(window, cur)
		if len(window) > k {
			window = window[1:]
		}
		if len(window) < k {
			continue
		}
		winSeq := seq.FromPositions(window, r.Alphabet)
		if !r.equalsCAD(winSeq) {
			continue
		}
		n++
		windowStart := i - k + 1

		start := windowStart + lenC
		end := start + lenA
		if r.A.Empty() {
			end = start + r.B.Len()
		}
		if start < 0 {
			start = 0
		}
		if end > sf.Len() {
			end = sf.Len()
		}
		if start > end {
			start = end
		}
		sfB := align.StripEmpty(sf.Slice(start, end))
		predB := align.StripEmpty(r.getB(winSeq))
		if sfB.Equal(predB) {
			c++
		}
	}
	return n, c
}

// Applies reports the (N, C) a rule earns against a single training pair,
// aligning uf and sf via package align whenever their lengths differ
// (spec.md §4.3, §4.8).
func (r *Rule) Applies(uf, sf *seq.Sequence) (n, c int) {
	if uf.Len() != sf.Len() {
		uf, sf = align.Align(uf, sf)
	}
	return r.matches(uf, sf)
}

// ContainsUnknown reports whether any position of s is the alphabet's
// unknown segment, the marker Apply leaves behind when a feature change
// cannot be resolved to an interned segment.
func ContainsUnknown(s *seq.Sequence) bool {
	for _, p := range s.Positions {
		if p.Kind == seq.KindSegment && p.Seg != nil && p.Seg.IPA == symbol.Unknown {
			return true
		}
	}
	return false
}
