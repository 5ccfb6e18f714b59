// Package segment defines the Segment value type: an interned IPA string
// paired with a feature vector over a fixed feature space. It has no
// dependency on the rest of the induction pipeline, matching the
// teacher's leaf-level literal.Literal (a concrete byte sequence with no
// knowledge of the engine that extracted it).
package segment

import "strings"

// Value is a single feature's assignment: '+', '-', '0' (irrelevant), or
// '?' (unspecified/unknown).
type Value byte

const (
	Plus      Value = '+'
	Minus     Value = '-'
	Irrelev   Value = '0'
	UnspecVal Value = '?'
)

// Segment is an interned IPA string together with its feature vector,
// aligned position-for-position with the Alphabet's feature space.
//
// Identity is by IPA string; equality with another segment also requires
// an identical feature vector (spec.md §3). A Segment behaves as a
// length-1 sequence wherever a Sequence is expected.
type Segment struct {
	IPA    string
	Vector []Value
}

// New constructs a Segment. The vector is copied so callers may reuse
// their backing slice.
func New(ipa string, vector []Value) *Segment {
	v := make([]Value, len(vector))
	copy(v, vector)
	return &Segment{IPA: ipa, Vector: v}
}

// VectorKey returns the feature vector as a comma-joined string, the
// second of the Alphabet's three lookup keys (spec.md §4.1).
func (s *Segment) VectorKey() string {
	if s == nil {
		return ""
	}
	b := make([]byte, 0, len(s.Vector)*2)
	for i, v := range s.Vector {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, byte(v))
	}
	return string(b)
}

// Equal reports whether two segments are identical: same IPA string and
// same feature vector.
func (s *Segment) Equal(other *Segment) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if s.IPA != other.IPA || len(s.Vector) != len(other.Vector) {
		return false
	}
	for i := range s.Vector {
		if s.Vector[i] != other.Vector[i] {
			return false
		}
	}
	return true
}

// String returns the segment's printed IPA form.
func (s *Segment) String() string {
	if s == nil {
		return ""
	}
	return s.IPA
}

// Len always returns 1: a Segment behaves as a singleton sequence for
// comparison purposes (spec.md §3).
func (s *Segment) Len() int { return 1 }

// Less orders segments by IPA string, used to break ties deterministically
// in candidate enumeration (spec.md §5).
func (s *Segment) Less(other *Segment) bool {
	return s.IPA < other.IPA
}

// SortKeys returns the IPA strings of segs, sorted, for deterministic
// printing of literal sets (spec.md §6).
func SortKeys(segs []*Segment) []string {
	keys := make([]string, len(segs))
	for i, s := range segs {
		keys[i] = s.IPA
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// JoinSorted renders a sorted, comma-separated, brace-delimited set of
// segment IPA strings: the canonical printed form of a literal set
// (spec.md §6, "a literal set shown as {s1,s2,...} in sorted order").
func JoinSorted(segs []*Segment) string {
	return "{" + strings.Join(SortKeys(segs), ",") + "}"
}
