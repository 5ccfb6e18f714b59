// Package alphabet implements the Alphabet component of spec.md §3/§4.1:
// the set of known IPA segments, indexed by IPA string, by stringified
// feature vector, and by identity, plus the feature-algebra predicates
// (with_feats/without_feats/set_feats/shared_feats/feat_diff) the rest of
// the pipeline is built on.
//
// The design mirrors the teacher's nfa.ByteClasses: a fixed-space,
// O(1)-lookup equivalence table that every higher layer (class, seq,
// rule) consults rather than reimplements.
package alphabet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/segment"
)

// Sentinel errors, surfaced to the caller per spec.md §7's error taxonomy.
var (
	// ErrUnknownKey is returned when a lookup key is neither a known IPA
	// string, a known feature vector, nor a known Segment.
	ErrUnknownKey = errors.New("alphabet: unknown key")
	// ErrLengthMismatch is returned by SetFeats when the feats/vals slices
	// differ in length.
	ErrLengthMismatch = errors.New("alphabet: feats and vals must have equal length")
)

// ClassMembership is implemented by natural classes (package class) so
// that Alphabet.Extension can compute an extension without importing the
// class package — avoiding a cycle, since class imports alphabet for
// feature lookups.
type ClassMembership interface {
	Contains(seg *segment.Segment) bool
}

// Alphabet is the set of known segments, indexed three ways for O(1)
// lookup, plus the full IPA feature table (which may define more symbols
// than are currently "in" the alphabet — segments are added lazily as a
// corpus is ingested, or eagerly via AddAllKnown).
type Alphabet struct {
	featureSpace []string
	table        map[string][]segment.Value // every symbol the IPA file defines

	bySymbol map[string]*segment.Segment
	byVector map[string]*segment.Segment
	order    []*segment.Segment // insertion order, for deterministic iteration

	unknown   *segment.Segment
	nasVowels bool
}

// Option configures an Alphabet at construction time.
type Option func(*Alphabet)

// WithNasalVowels causes every vowel added to the alphabet to also gain a
// synthetic nasalized variant (spec.md §3, "Nasalized-vowel variants may
// be synthetically added").
func WithNasalVowels(on bool) Option {
	return func(a *Alphabet) { a.nasVowels = on }
}

// New builds an Alphabet over the given feature space and full symbol
// table (as loaded by package ipa from the IPA TSV file). No symbols are
// interned yet except the implicit unknown segment; use AddSegment,
// AddSegmentsFromString, or AddAllKnown to populate it.
func New(featureSpace []string, table map[string][]segment.Value, opts ...Option) *Alphabet {
	a := &Alphabet{
		featureSpace: append([]string(nil), featureSpace...),
		table:        table,
		bySymbol:     make(map[string]*segment.Segment),
		byVector:     make(map[string]*segment.Segment),
	}
	for _, opt := range opts {
		opt(a)
	}
	unk := make([]segment.Value, len(featureSpace))
	for i := range unk {
		unk[i] = segment.UnspecVal
	}
	a.unknown = a.intern(symbol.Unknown, unk)
	return a
}

// FeatureSpace returns the fixed, ordered list of feature names.
func (a *Alphabet) FeatureSpace() []string {
	return append([]string(nil), a.featureSpace...)
}

// Unknown returns the implicit unknown segment '?', all of whose features
// are unspecified.
func (a *Alphabet) Unknown() *segment.Segment { return a.unknown }

func (a *Alphabet) intern(ipa string, vector []segment.Value) *segment.Segment {
	seg := segment.New(ipa, vector)
	a.bySymbol[ipa] = seg
	a.byVector[seg.VectorKey()] = seg
	a.order = append(a.order, seg)
	return seg
}

// AddSegment interns the named IPA symbol, looking its feature vector up
// in the table loaded at construction time. Boundary pseudo-segments
// ('#', '.') are never interned (spec.md §3's invariant that pseudo
// segments are not alphabet members) and AddSegment is then a no-op.
//
// Returns the interned segment, whether a new segment was added, and an
// error if ipa names a symbol absent from the table.
func (a *Alphabet) AddSegment(ipa string) (*segment.Segment, bool, error) {
	if symbol.IsBoundary(ipa) {
		return nil, false, nil
	}
	if seg, ok := a.bySymbol[ipa]; ok {
		return seg, false, nil
	}
	vec, ok := a.table[ipa]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownKey, ipa)
	}
	seg := a.intern(ipa, vec)
	if a.nasVowels {
		a.addNasalVariant(seg)
	}
	return seg, true, nil
}

// AddSegmentsFromString interns every base segment that occurs in s,
// skipping the combining nasalization mark (which attaches to its host
// segment rather than standing alone — see package seq for full
// tokenization including stress and length marks).
func (a *Alphabet) AddSegmentsFromString(s string) error {
	for _, r := range s {
		sym := string(r)
		if sym == symbol.Nasalized {
			continue
		}
		if symbol.IsBoundary(sym) || sym == symbol.PrimaryStress || sym == symbol.SecondaryStress || sym == symbol.Long {
			continue
		}
		if _, _, err := a.AddSegment(sym); err != nil {
			return err
		}
	}
	return nil
}

// AddAllKnown eagerly interns every symbol defined by the IPA table,
// rather than waiting for corpus ingestion to encounter it (spec's
// original `add_segs` constructor flag).
func (a *Alphabet) AddAllKnown() error {
	names := make([]string, 0, len(a.table))
	for ipa := range a.table {
		names = append(names, ipa)
	}
	sort.Strings(names)
	for _, ipa := range names {
		if _, _, err := a.AddSegment(ipa); err != nil {
			return err
		}
	}
	return nil
}

// addNasalVariant interns a nasalized version of seg if seg is a vowel
// ('cons' = '-') that does not already have a nasalized counterpart.
func (a *Alphabet) addNasalVariant(seg *segment.Segment) {
	consIdx := a.featureIndex("cons")
	nasIdx := a.featureIndex("nas")
	if consIdx < 0 || nasIdx < 0 {
		return
	}
	if seg.Vector[consIdx] != segment.Minus || seg.Vector[nasIdx] == segment.Plus {
		return
	}
	nasIPA := seg.IPA + symbol.Nasalized
	if _, ok := a.bySymbol[nasIPA]; ok {
		return
	}
	vec := append([]segment.Value(nil), seg.Vector...)
	vec[nasIdx] = segment.Plus
	a.intern(nasIPA, vec)
}

// AddNasalVowels retroactively nasalizes every vowel currently in the
// alphabet (spec's original `add_nas_vowels`).
func (a *Alphabet) AddNasalVowels() {
	for _, seg := range append([]*segment.Segment(nil), a.order...) {
		a.addNasalVariant(seg)
	}
}

func (a *Alphabet) featureIndex(feat string) int {
	for i, f := range a.featureSpace {
		if f == feat {
			return i
		}
	}
	return -1
}

// Lookup resolves key, which may be a string IPA symbol, a comma-joined
// feature-vector key, a []segment.Value vector, or a *segment.Segment, to
// its interned Segment.
func (a *Alphabet) Lookup(key any) (*segment.Segment, bool) {
	switch k := key.(type) {
	case *segment.Segment:
		return a.Lookup(k.IPA)
	case string:
		if seg, ok := a.bySymbol[k]; ok {
			return seg, true
		}
		if seg, ok := a.byVector[k]; ok {
			return seg, true
		}
		return nil, false
	case []segment.Value:
		return a.Lookup(segment.New("", k).VectorKey())
	default:
		return nil, false
	}
}

// Contains reports whether key resolves to an interned segment.
func (a *Alphabet) Contains(key any) bool {
	_, ok := a.Lookup(key)
	return ok
}

// Segments returns every interned segment, in insertion order.
func (a *Alphabet) Segments() []*segment.Segment {
	return append([]*segment.Segment(nil), a.order...)
}

// FeatVals returns the segment's feature assignments formatted as
// "<sign><feature>" (e.g. "+voi", "-son"). If excludeUnspec is true,
// features with value '?' are omitted.
func (a *Alphabet) FeatVals(seg *segment.Segment, excludeUnspec bool) map[string]struct{} {
	out := make(map[string]struct{}, len(a.featureSpace))
	for i, feat := range a.featureSpace {
		if i >= len(seg.Vector) {
			break
		}
		v := seg.Vector[i]
		if excludeUnspec && v == segment.UnspecVal {
			continue
		}
		out[string(v)+feat] = struct{}{}
	}
	return out
}

// SharedFeats returns the intersection of FeatVals (unspecified features
// excluded) across segs.
func (a *Alphabet) SharedFeats(segs ...*segment.Segment) map[string]struct{} {
	if len(segs) == 0 {
		return map[string]struct{}{}
	}
	shared := a.FeatVals(segs[0], true)
	for _, seg := range segs[1:] {
		next := a.FeatVals(seg, true)
		for k := range shared {
			if _, ok := next[k]; !ok {
				delete(shared, k)
			}
		}
	}
	return shared
}

// FeatDiff returns the set of feature names where s1 and s2 disagree.
func (a *Alphabet) FeatDiff(s1, s2 *segment.Segment) map[string]struct{} {
	diff := make(map[string]struct{})
	for i, feat := range a.featureSpace {
		if i >= len(s1.Vector) || i >= len(s2.Vector) {
			break
		}
		if s1.Vector[i] != s2.Vector[i] {
			diff[feat] = struct{}{}
		}
	}
	return diff
}

func (a *Alphabet) withValue(seg *segment.Segment, feats []string, val segment.Value) (*segment.Segment, bool) {
	vec := append([]segment.Value(nil), seg.Vector...)
	for _, feat := range feats {
		idx := a.featureIndex(feat)
		if idx < 0 {
			return nil, false
		}
		vec[idx] = val
	}
	return a.Lookup(vec)
}

// WithFeats returns the segment whose feature vector equals seg's with
// the named features forced to '+', if such a segment is interned;
// otherwise the second return is false (Unresolved feature-change,
// spec.md §7).
func (a *Alphabet) WithFeats(seg *segment.Segment, feats ...string) (*segment.Segment, bool) {
	return a.withValue(seg, feats, segment.Plus)
}

// WithoutFeats returns the segment whose feature vector equals seg's with
// the named features forced to '-', if such a segment is interned.
func (a *Alphabet) WithoutFeats(seg *segment.Segment, feats ...string) (*segment.Segment, bool) {
	return a.withValue(seg, feats, segment.Minus)
}

// SetFeats returns the segment whose feature vector equals seg's with the
// named features set to the given values, if such a segment is interned.
// Returns ErrLengthMismatch if feats and vals differ in length.
func (a *Alphabet) SetFeats(seg *segment.Segment, feats []string, vals []segment.Value) (*segment.Segment, bool, error) {
	if len(feats) != len(vals) {
		return nil, false, fmt.Errorf("%w: |feats|=%d |vals|=%d", ErrLengthMismatch, len(feats), len(vals))
	}
	vec := append([]segment.Value(nil), seg.Vector...)
	for i, feat := range feats {
		idx := a.featureIndex(feat)
		if idx < 0 {
			return nil, false, nil
		}
		vec[idx] = vals[i]
	}
	found, ok := a.Lookup(vec)
	if !ok {
		return nil, false, nil
	}
	return found, true, nil
}

// Extension returns the segments in the alphabet whose feature vector
// satisfies every feature of nc (spec.md §4.1).
func (a *Alphabet) Extension(nc ClassMembership) []*segment.Segment {
	var out []*segment.Segment
	for _, seg := range a.order {
		if nc.Contains(seg) {
			out = append(out, seg)
		}
	}
	return out
}
