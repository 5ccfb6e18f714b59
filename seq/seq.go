// Package seq implements Sequence (spec.md §3/§4.2): an ordered list of
// positions, each a literal segment, a literal set of segments, a
// natural class, or the wildcard. Sequence is the value type Rule's A/B/C/D
// parts and the learner's n-grams are built from.
//
// Grounded on the teacher's literal.Seq (an ordered collection of literal
// alternatives used throughout the regex engine as the common currency
// between extraction, prefiltering, and verification) and on
// nfa/branch_dispatch.go for the tagged-variant dispatch pattern used for
// Position's four payload shapes (spec.md §9, "Dynamic dispatch on cell
// kind").
package seq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/class"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/segment"
)

// Kind discriminates the four payload shapes a Position may hold.
type Kind int

const (
	KindSegment Kind = iota
	KindSet
	KindClass
	KindWildcard
)

// ErrCannotMerge is returned by Sequence.Merge when either operand is
// longer than one position (spec.md §4.2, §7 Length mismatch).
var ErrCannotMerge = errors.New("seq: can only merge sequences of length 1")

// Position is one slot of a Sequence: a tagged union over a literal
// segment, a literal set of segments, a natural class, or the wildcard.
type Position struct {
	Kind  Kind
	Seg   *segment.Segment
	Set   []*segment.Segment
	Class *class.NaturalClass
}

// SegPos builds a literal-segment position.
func SegPos(seg *segment.Segment) Position { return Position{Kind: KindSegment, Seg: seg} }

// SetPos builds a literal-set position from one or more segments,
// deduplicated by IPA string.
func SetPos(segs ...*segment.Segment) Position {
	seen := make(map[string]bool, len(segs))
	out := make([]*segment.Segment, 0, len(segs))
	for _, s := range segs {
		if s == nil || seen[s.IPA] {
			continue
		}
		seen[s.IPA] = true
		out = append(out, s)
	}
	return Position{Kind: KindSet, Set: out}
}

// ClassPos builds a natural-class position.
func ClassPos(nc *class.NaturalClass) Position { return Position{Kind: KindClass, Class: nc} }

// WildcardPos builds the wildcard position, matching any single segment.
func WildcardPos() Position { return Position{Kind: KindWildcard} }

// String renders a Position in the canonical printed form (spec.md §6).
func (p Position) String() string {
	switch p.Kind {
	case KindWildcard:
		return symbol.Wildcard
	case KindSegment:
		return p.Seg.String()
	case KindSet:
		return segment.JoinSorted(p.Set)
	case KindClass:
		return p.Class.String()
	default:
		return ""
	}
}

// Equal reports structural equality between two positions: same kind and
// same content (not merely matching behavior).
func (p Position) Equal(o Position) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case KindWildcard:
		return true
	case KindSegment:
		return p.Seg.Equal(o.Seg)
	case KindSet:
		if len(p.Set) != len(o.Set) {
			return false
		}
		for _, a := range segment.SortKeys(p.Set) {
			found := false
			for _, b := range segment.SortKeys(o.Set) {
				if a == b {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindClass:
		return p.String() == o.String()
	default:
		return false
	}
}

// matchesSegment reports whether the concrete segment other satisfies
// this position, used as the pattern side of Sequence.Matches.
func (p Position) matchesSegment(other *segment.Segment) bool {
	switch p.Kind {
	case KindWildcard:
		return true
	case KindSegment:
		return p.Seg.Equal(other)
	case KindSet:
		for _, s := range p.Set {
			if s.Equal(other) {
				return true
			}
		}
		return false
	case KindClass:
		return p.Class.Contains(other)
	default:
		return false
	}
}

// Sequence is an ordered list of Positions over a fixed Alphabet.
type Sequence struct {
	Alphabet  *alphabet.Alphabet
	Positions []Position
}

// Empty builds the zero-length sequence (spec.md §3, used for the
// epenthesis target and the empty-string B replacement).
func Empty(a *alphabet.Alphabet) *Sequence {
	return &Sequence{Alphabet: a}
}

// FromPositions builds a Sequence from an explicit position list.
func FromPositions(positions []Position, a *alphabet.Alphabet) *Sequence {
	return &Sequence{Alphabet: a, Positions: append([]Position(nil), positions...)}
}

// FromSegments builds a literal Sequence from a slice of segments.
func FromSegments(segs []*segment.Segment, a *alphabet.Alphabet) *Sequence {
	positions := make([]Position, len(segs))
	for i, s := range segs {
		positions[i] = SegPos(s)
	}
	return &Sequence{Alphabet: a, Positions: positions}
}

// Boundary returns the single-position word-boundary sequence "#".
func Boundary(a *alphabet.Alphabet) *Sequence {
	return FromSegments([]*segment.Segment{segment.New(symbol.WordBoundary, nil)}, a)
}

// FromString tokenizes an IPA string into a Sequence, per spec.md §3's
// "from an IPA string" construction mode: stress marks (ˈ, ˌ) and the
// length mark (ː) attach to the preceding segment by looking up the
// composite IPA string in the alphabet; the combining nasalization mark
// attaches by forcing the preceding segment's "nas" feature to '+'; word
// and syllable boundaries become literal pseudo-segment positions.
func FromString(s string, a *alphabet.Alphabet) (*Sequence, error) {
	var positions []Position
	for _, r := range s {
		ch := string(r)
		switch {
		case ch == symbol.PrimaryStress || ch == symbol.SecondaryStress || ch == symbol.Long:
			if len(positions) == 0 || positions[len(positions)-1].Kind != KindSegment {
				return nil, fmt.Errorf("seq: stress/length mark %q with no preceding segment", ch)
			}
			prev := positions[len(positions)-1].Seg
			composite, ok := a.Lookup(prev.IPA + ch)
			if !ok {
				return nil, fmt.Errorf("seq: no alphabet entry for %q", prev.IPA+ch)
			}
			positions[len(positions)-1] = SegPos(composite)
		case ch == symbol.Nasalized:
			if len(positions) == 0 || positions[len(positions)-1].Kind != KindSegment {
				return nil, fmt.Errorf("seq: nasalization mark with no preceding segment")
			}
			prev := positions[len(positions)-1].Seg
			nas, ok := a.WithFeats(prev, "nas")
			if !ok {
				nas = a.Unknown()
			}
			positions[len(positions)-1] = SegPos(nas)
		case symbol.IsBoundary(ch):
			positions = append(positions, SegPos(segment.New(ch, nil)))
		default:
			found, ok := a.Lookup(ch)
			if !ok {
				return nil, fmt.Errorf("seq: %w: %q", alphabet.ErrUnknownKey, ch)
			}
			positions = append(positions, SegPos(found))
		}
	}
	return &Sequence{Alphabet: a, Positions: positions}, nil
}

// Len returns the number of positions.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Positions)
}

// String renders the sequence in its canonical printed form: positions
// concatenated with no separator, sets shown as "{a,b}" (spec.md §6).
func (s *Sequence) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range s.Positions {
		b.WriteString(p.String())
	}
	return b.String()
}

// Equal reports structural equality: identical length and identical
// positions, not merely mutual matching.
func (s *Sequence) Equal(other *Sequence) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, p := range s.Positions {
		if !p.Equal(other.Positions[i]) {
			return false
		}
	}
	return true
}

// Matches reports whether other — assumed to be a literal sequence of
// concrete segments, such as a window sliced from an input string —
// satisfies this sequence treated as a pattern (spec.md §4.2).
func (s *Sequence) Matches(other *Sequence) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, p := range s.Positions {
		op := other.Positions[i]
		var concrete *segment.Segment
		switch op.Kind {
		case KindSegment:
			concrete = op.Seg
		case KindWildcard:
			if p.Kind == KindWildcard {
				continue
			}
			return false
		default:
			// other is itself non-literal (e.g. comparing two patterns):
			// fall back to structural equality at this position.
			if !p.Equal(op) {
				return false
			}
			continue
		}
		if !p.matchesSegment(concrete) {
			return false
		}
	}
	return true
}

// Concat returns a new sequence with other's positions appended.
func (s *Sequence) Concat(other *Sequence) *Sequence {
	out := make([]Position, 0, s.Len()+other.Len())
	out = append(out, s.Positions...)
	out = append(out, other.Positions...)
	return &Sequence{Alphabet: s.Alphabet, Positions: out}
}

// Append returns a new sequence with a single position appended.
func (s *Sequence) Append(p Position) *Sequence {
	out := make([]Position, 0, s.Len()+1)
	out = append(out, s.Positions...)
	out = append(out, p)
	return &Sequence{Alphabet: s.Alphabet, Positions: out}
}

// Slice returns the sub-sequence [lo, hi).
func (s *Sequence) Slice(lo, hi int) *Sequence {
	return &Sequence{Alphabet: s.Alphabet, Positions: append([]Position(nil), s.Positions[lo:hi]...)}
}

// Copy returns an independent copy of s (positions are value types except
// for their pointer payloads, which are shared — matching spec.md §9's
// "cloning a Rule clones its sequences but shares segment identity").
func (s *Sequence) Copy() *Sequence {
	return &Sequence{Alphabet: s.Alphabet, Positions: append([]Position(nil), s.Positions...)}
}

// Merge is defined only when neither sequence is longer than 1: it replaces
// position 0 by the union of its contents, promoting a singleton segment
// to a literal set when needed (spec.md §4.2). Two empty sequences merge
// to an empty sequence.
func (s *Sequence) Merge(other *Sequence) error {
	if s.Len() > 1 || other.Len() > 1 {
		return ErrCannotMerge
	}
	if s.Len() == 0 && other.Len() == 0 {
		return nil
	}
	merged := make(map[string]*segment.Segment)
	collect := func(p Position) {
		switch p.Kind {
		case KindSegment:
			merged[p.Seg.IPA] = p.Seg
		case KindSet:
			for _, seg := range p.Set {
				merged[seg.IPA] = seg
			}
		}
	}
	if s.Len() == 1 {
		collect(s.Positions[0])
	}
	if other.Len() == 1 {
		collect(other.Positions[0])
	}
	segs := make([]*segment.Segment, 0, len(merged))
	for _, seg := range merged {
		segs = append(segs, seg)
	}
	if s.Len() == 0 {
		s.Positions = []Position{SetPos(segs...)}
	} else {
		s.Positions[0] = SetPos(segs...)
	}
	return nil
}

// ToNaturalClasses replaces every literal-segment or literal-set position
// with the natural class of its members' shared features — the display
// mode spec.md §6 calls out for natural classes printed "as its feature
// set" after generalization. Boundary pseudo-segments are left untouched.
func (s *Sequence) ToNaturalClasses() {
	for i, p := range s.Positions {
		var segs []*segment.Segment
		switch p.Kind {
		case KindSegment:
			if symbol.IsBoundary(p.Seg.IPA) {
				continue
			}
			segs = []*segment.Segment{p.Seg}
		case KindSet:
			segs = p.Set
		default:
			continue
		}
		s.Positions[i] = ClassPos(class.New(s.Alphabet, s.Alphabet.SharedFeats(segs...)))
	}
}
