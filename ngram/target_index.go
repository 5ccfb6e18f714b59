package ngram

import (
	"sort"

	"github.com/coregx/ahocorasick"
	"github.com/phonolearn/plp/alphabet"
)

// TargetIndex is a literal prefilter over the current alphabet's IPA
// symbols: it answers which byte offsets of a raw UF string hold alphabet
// symbols at all, mirroring the teacher's Aho-Corasick literal bypass for
// the prefilter-before-verify shape (meta/find.go's findAhoCorasick). The
// learner does not build or consult a TargetIndex; it tokenizes every UF
// with package seq and records builder instances for every position.
type TargetIndex struct {
	automaton *ahocorasick.Automaton
	symbols   []string
}

// Build compiles a TargetIndex over every symbol currently interned in a.
// Returns an error only if the underlying automaton fails to build (e.g.
// an empty pattern set), in which case Occurrences always returns nil.
func Build(a *alphabet.Alphabet) (*TargetIndex, error) {
	segs := a.Segments()
	symbols := make([]string, 0, len(segs))
	for _, s := range segs {
		symbols = append(symbols, s.IPA)
	}
	sort.Strings(symbols)

	builder := ahocorasick.NewBuilder()
	for _, sym := range symbols {
		builder.AddPattern([]byte(sym))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &TargetIndex{automaton: auto, symbols: symbols}, nil
}

// Occurrences scans raw (the raw UTF-8 bytes of a UF form) and returns the
// byte offset of every alphabet symbol occurrence, in order.
func (idx *TargetIndex) Occurrences(raw []byte) []int {
	if idx == nil || idx.automaton == nil {
		return nil
	}
	var out []int
	at := 0
	for at < len(raw) {
		m := idx.automaton.Find(raw, at)
		if m == nil {
			break
		}
		out = append(out, m.Start)
		at = m.Start + 1
	}
	return out
}
