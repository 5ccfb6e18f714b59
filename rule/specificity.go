package rule

import "github.com/phonolearn/plp/vocab"

// Applications returns the subset of pairs this rule actually changes
// something for (r.Apply(uf) != uf) — the pairs relevant to ordering two
// rules against each other, since a rule that never fires on a pair has no
// opinion about what should happen to it (spec.md §4.7).
func (r *Rule) Applications(pairs vocab.Vocabulary) vocab.Vocabulary {
	var out vocab.Vocabulary
	for _, p := range pairs {
		if !r.Apply(p.UF).Equal(p.UF) {
			out = append(out, p)
		}
	}
	return out
}

// AccuracyAfterOther applies other first, then r, to each pair's UF, and
// scores how often the composed result equals the pair's SF, as a fraction
// of all pairs. A pair where other's own output already contains the
// unknown segment (an unresolved feature change, spec.md §7) is not
// composed further and counts as incorrect. Used by MoreSpecific to compare
// two rules' ordering.
func (r *Rule) AccuracyAfterOther(other *Rule, pairs vocab.Vocabulary) float64 {
	if len(pairs) == 0 {
		return 0
	}
	correct := 0
	for _, p := range pairs {
		mid := other.Apply(p.UF)
		if ContainsUnknown(mid) {
			continue
		}
		out := r.Apply(mid)
		if out.Equal(p.SF) {
			correct++
		}
	}
	return float64(correct) / float64(len(pairs))
}

// MoreSpecific reports whether r must be ordered before other: among the
// pairs both rules actually fire on, applying other-then-r must do strictly
// worse than applying r-then-other (spec.md §4.7's ordering relation —
// feeding the more specific rule's output to the more general one should
// reproduce the data better than the reverse). Returns false when the two
// rules never co-apply to any pair, since there is then nothing to order by.
func (r *Rule) MoreSpecific(other *Rule, pairs vocab.Vocabulary) bool {
	mine := r.Applications(pairs)
	theirs := other.Applications(pairs)
	common := intersectPairs(mine, theirs)
	if len(common) == 0 {
		return false
	}
	return r.AccuracyAfterOther(other, common) < other.AccuracyAfterOther(r, common)
}

func intersectPairs(a, b vocab.Vocabulary) vocab.Vocabulary {
	bKeys := make(map[string]bool, len(b))
	for _, p := range b {
		bKeys[pairKey(p)] = true
	}
	var out vocab.Vocabulary
	for _, p := range a {
		if bKeys[pairKey(p)] {
			out = append(out, p)
		}
	}
	return out
}

func pairKey(p vocab.Pair) string {
	return p.UF.String() + "\x00" + p.SF.String()
}
