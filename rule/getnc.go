package rule

import (
	"github.com/phonolearn/plp/align"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/vocab"
)

// GetNC tallies N and C across every pair in pairs. Epenthesis pairs (sf
// shorter than uf, in align's terms — see align.go) have no unambiguous
// uf-relative offset until sf is padded with λ — unlike deletion, where
// matches already locates B by offsets computed purely from uf, so no
// pre-alignment is needed. When more
// than one tied alignment minimizes Hamming distance (align.Ties), this
// rule picks whichever tied candidate it scores most accurately against,
// rather than an alignment chosen independent of the rule being scored —
// supplementing spec.md's alignment procedure with the original
// implementation's per-rule tie selection.
func (r *Rule) GetNC(pairs []vocab.Pair) (n, c int) {
	for _, p := range pairs {
		sf := p.SF
		if sf.Len() < p.UF.Len() {
			_, candidates := align.Ties(p.UF, sf)
			sf = bestCandidate(r, p.UF, candidates)
		}
		nn, cc := r.matches(p.UF, sf)
		n += nn
		c += cc
	}
	return n, c
}

func bestCandidate(r *Rule, uf *seq.Sequence, candidates []*seq.Sequence) *seq.Sequence {
	best := candidates[0]
	bestAcc := -1.0
	for _, cand := range candidates {
		nn, cc := r.matches(uf, cand)
		acc := 0.0
		if nn > 0 {
			acc = float64(cc) / float64(nn)
		}
		if acc > bestAcc {
			bestAcc = acc
			best = cand
		}
	}
	return best
}

// Accuracy returns C/N across pairs, or 0 when N is 0.
func (r *Rule) Accuracy(pairs []vocab.Pair) float64 {
	n, c := r.GetNC(pairs)
	if n == 0 {
		return 0
	}
	return float64(c) / float64(n)
}
