package learner

import (
	"github.com/rs/zerolog"

	"github.com/phonolearn/plp/builder"
	"github.com/phonolearn/plp/tolerance"
)

// Config configures a Learner at construction time, mirroring
// original_source/src/plp.py's PLP.__init__ keyword arguments.
type Config struct {
	// Threshold gates whether a candidate rule's (N, C) is accurate enough
	// to accept. Defaults to tolerance.Accept.
	Threshold builder.Threshold
	// NasVowels records whether nasalized vowel variants are synthesized
	// (spec.md §3, supplemented feature). New does not read it; the
	// synthesis itself is done by the Alphabet built with
	// alphabet.WithNasalVowels.
	NasVowels bool
	// AddSegs records whether every symbol the IPA table defines is interned
	// up front rather than during corpus ingestion (spec.md §3, supplemented
	// feature). New does not read it; eager interning is done by
	// Alphabet.AddAllKnown.
	AddSegs bool
	// NGramLens lists the n-gram window widths package ngram tracks.
	NGramLens []int
	// SkipGenA leaves a rule's target position as a literal during natural
	// class induction, generalizing only its context.
	SkipGenA bool
	// Logger receives structured diagnostics (e.g. the lexicalized-rule
	// fallback warning); the zero value is a disabled logger, matching
	// zerolog's own default of "silent unless configured".
	Logger zerolog.Logger
}

// DefaultConfig returns the configuration original_source/src/plp.py's
// PLP.__init__ defaults to: the Tolerance Principle threshold, no
// synthetic nasal vowels, lazy alphabet population, n-gram widths 1-3, and
// target generalization enabled.
func DefaultConfig() Config {
	return Config{
		Threshold: tolerance.Accept,
		NGramLens: []int{1, 2, 3},
		Logger:    zerolog.Nop(),
	}
}
