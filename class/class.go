// Package class implements NaturalClass (spec.md §3/§4.1): a set of
// signed features interpreted against an Alphabet. Membership is the
// feature-superset test; boundary pseudo-segments are never members.
//
// Grounded on the teacher's nfa/charclass_extract.go: both represent a
// pattern over an alphabet-scale equivalence table and answer a single
// "does this symbol belong" predicate, mutated in place as the pattern is
// refined (there, by range merging; here, by greedy feature addition in
// package natclass).
package class

import (
	"sort"
	"strings"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/segment"
)

// NaturalClass is a mutable set of signed features (e.g. {+voi, -son}),
// interpreted against a fixed Alphabet.
type NaturalClass struct {
	alphabet *alphabet.Alphabet
	feats    map[string]struct{} // each entry formatted "<sign><feature>"
}

// New builds a NaturalClass over the given Alphabet from an initial
// (possibly empty) set of signed features.
func New(a *alphabet.Alphabet, feats map[string]struct{}) *NaturalClass {
	nc := &NaturalClass{alphabet: a, feats: make(map[string]struct{}, len(feats))}
	for f := range feats {
		nc.feats[f] = struct{}{}
	}
	return nc
}

// Empty builds a NaturalClass with no features yet (matches everything
// except boundary pseudo-segments); natclass.Gen starts from this and
// adds features greedily.
func Empty(a *alphabet.Alphabet) *NaturalClass {
	return New(a, nil)
}

// Copy returns an independent copy of nc.
func (nc *NaturalClass) Copy() *NaturalClass {
	return New(nc.alphabet, nc.feats)
}

// AddFeat adds a signed feature (e.g. "+voi") to the class.
func (nc *NaturalClass) AddFeat(feat string) {
	nc.feats[feat] = struct{}{}
}

// RemoveFeat removes a signed feature from the class. Used by
// natclass.Gen's rollback during greedy widening (spec.md §4.6, §9).
func (nc *NaturalClass) RemoveFeat(feat string) {
	delete(nc.feats, feat)
}

// Feats returns the class's signed features, sorted.
func (nc *NaturalClass) Feats() []string {
	out := make([]string, 0, len(nc.feats))
	for f := range nc.feats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of signed features in the class.
func (nc *NaturalClass) Len() int { return len(nc.feats) }

// Contains reports whether seg belongs to the class: its signed-feature
// set must be a superset of nc's. Boundary pseudo-segments are never
// members, regardless of feature content.
func (nc *NaturalClass) Contains(seg *segment.Segment) bool {
	if seg == nil {
		return false
	}
	if symbol.IsBoundary(seg.IPA) {
		return false
	}
	vals := nc.alphabet.FeatVals(seg, false)
	for f := range nc.feats {
		if _, ok := vals[f]; !ok {
			return false
		}
	}
	return true
}

// Extension returns every alphabet segment belonging to the class.
func (nc *NaturalClass) Extension() []*segment.Segment {
	return nc.alphabet.Extension(nc)
}

// FeatureString renders the class as its feature set, e.g. "{+voi,-son}"
// — the spec.md §6 printed form used when the natural-class display
// toggle favors features over extension.
func (nc *NaturalClass) FeatureString() string {
	return "{" + strings.Join(nc.Feats(), ",") + "}"
}

// ExtensionString renders the class as its extension, e.g. "{p,t,k}" —
// the alternative spec.md §6 printed form.
func (nc *NaturalClass) ExtensionString() string {
	ext := nc.Extension()
	return segment.JoinSorted(ext)
}

// String implements the default (feature-set) printed form; callers that
// need the extension-display toggle should call ExtensionString directly.
func (nc *NaturalClass) String() string {
	return nc.FeatureString()
}
