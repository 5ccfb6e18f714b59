package rule

import (
	"github.com/phonolearn/plp/tolerance"
	"github.com/phonolearn/plp/vocab"
)

// Merge attempts to fold other into r in place, per spec.md §4.7's two
// merge conditions, and reports whether it succeeded (r is left unchanged
// on failure). Both rules must already share the same B.
//
//  1. Same-B, same-C, same-D, both A singletons: union the two A sets
//     unconditionally (a rule over {p} and a rule over {t} with identical
//     context are obviously one rule over {p,t}).
//  2. Same-B, |C|<=1 and |D|<=1 on both sides: tentatively union C, A, and
//     D positionwise and accept only if the merged rule's N does not fall
//     below the sum of the two original Ns and the Tolerance Principle
//     still accepts the merged N,C — a merge that would need to throw away
//     matched contexts, or that overgeneralizes past what the data
//     supports, is rejected.
func (r *Rule) Merge(other *Rule, pairs vocab.Vocabulary) bool {
	if !r.B.Equal(other.B) {
		return false
	}

	if !r.A.Equal(other.A) && r.A.Len() == 1 && other.A.Len() == 1 &&
		r.C.Equal(other.C) && r.D.Equal(other.D) {
		_ = r.A.Seq.Merge(other.A.Seq)
		return true
	}

	if r.C.Len() > 1 || r.D.Len() > 1 || other.C.Len() > 1 || other.D.Len() > 1 {
		return false
	}

	n1, _ := r.GetNC(pairs)
	n2, _ := other.GetNC(pairs)
	nSum := n1 + n2

	candidate := r.Copy()
	if !candidate.C.Wildcard && !other.C.Wildcard {
		_ = candidate.C.Seq.Merge(other.C.Seq)
	}
	_ = candidate.A.Seq.Merge(other.A.Seq)
	if !candidate.D.Wildcard && !other.D.Wildcard {
		_ = candidate.D.Seq.Merge(other.D.Seq)
	}

	nMerged, cMerged := candidate.GetNC(pairs)
	if nMerged < nSum || !tolerance.Accept(nMerged, cMerged) {
		return false
	}

	r.C, r.A, r.D = candidate.C, candidate.A, candidate.D
	return true
}
