// Package ngram implements the learner's n-gram frequency store (spec.md
// §3, §4.6): for each configured window width (1, 2, 3 segments plus a
// trailing word boundary), every UF training form contributes one count
// per overlapping window, and package natclass consults these counts when
// scoring how a candidate natural class generalizes across the corpus.
//
// Grounded on original_source/src/plp.py's self.n_grams cache (built with
// nltk.ngrams over each UF#) and, for the literal-pattern prefilter, on the
// teacher's meta/compile.go: TargetIndex is a literal Aho-Corasick scan over
// raw IPA bytes that reports where alphabet symbols occur, the same
// "prefilter, then verify" shape the teacher uses before running its
// NFA/DFA engines. No other package in this module calls it; the learner
// and package rule tokenize and match without it.
package ngram

import (
	"sort"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/internal/symbol"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

// Entry is one distinct n-gram and how many times it has been observed.
type Entry struct {
	Seq  *seq.Sequence
	Freq int
}

// Store accumulates n-gram frequencies across every window width it was
// configured for.
type Store struct {
	alphabet *alphabet.Alphabet
	lens     []int
	tables   map[int]map[string]*Entry
}

// NewStore builds an empty Store for the given window widths (typically
// []int{1, 2, 3}).
func NewStore(a *alphabet.Alphabet, lens []int) *Store {
	tables := make(map[int]map[string]*Entry, len(lens))
	for _, n := range lens {
		tables[n] = make(map[string]*Entry)
	}
	return &Store{alphabet: a, lens: append([]int(nil), lens...), tables: tables}
}

// Lens returns the configured window widths.
func (s *Store) Lens() []int { return append([]int(nil), s.lens...) }

// Add slides every configured window width over uf followed by a trailing
// word boundary, incrementing each distinct window's frequency.
func (s *Store) Add(uf *seq.Sequence) {
	padded := uf.Append(seq.SegPos(segment.New(symbol.WordBoundary, nil)))
	for _, n := range s.lens {
		table := s.tables[n]
		for i := 0; i+n <= padded.Len(); i++ {
			window := padded.Slice(i, i+n)
			key := window.String()
			if e, ok := table[key]; ok {
				e.Freq++
			} else {
				table[key] = &Entry{Seq: window, Freq: 1}
			}
		}
	}
}

// Entries returns every distinct n-gram of the given width, in a
// deterministic (sorted by printed form) order.
func (s *Store) Entries(n int) []*Entry {
	table := s.tables[n]
	if table == nil {
		return nil
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Entry, len(keys))
	for i, k := range keys {
		out[i] = table[k]
	}
	return out
}
