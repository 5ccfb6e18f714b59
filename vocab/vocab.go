// Package vocab defines the shared training-pair type the rest of the
// pipeline threads through: every rule's accuracy, every merge decision,
// and every ordering comparison is computed relative to a vocabulary of
// (UF, SF) pairs (spec.md §3's "n-gram store" and §4.7's "vocab" argument
// to more_specific/merge).
package vocab

import "github.com/phonolearn/plp/seq"

// Pair is one (underlying form, surface form) training pair, already
// tokenized into Sequences.
type Pair struct {
	UF *seq.Sequence
	SF *seq.Sequence
}

// Vocabulary is the full set of training pairs accumulated by the
// learner, used wherever spec.md says "the learner's vocabulary".
type Vocabulary []Pair
