// Package learner implements PLP (spec.md §3/§4.9): the orchestrator that
// ingests (UF, SF) training pairs, discovers discrepancies between them,
// builds and merges rules to account for each, induces natural classes,
// orders the result into a Grammar, and produces or scores surface forms.
//
// Grounded on original_source/src/plp.py's PLP class: Train mirrors train
// (batch discrepancy discovery, one rule-build per discrepancy, then
// updateRules), TrainIncremental mirrors train_incremental's two-path
// overapplication/underapplication recheck (spec.md §3's supplemented
// incremental-training feature), and Accuracy mirrors accuracy (spec.md
// §3's supplemented evaluation-reporting feature). updateRules mirrors
// update_rules' exact sequencing: feature-changeify, merge to fixpoint,
// order by scope, induce natural classes, order by specificity.
package learner

import (
	"fmt"
	"sort"

	"github.com/phonolearn/plp/align"
	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/builder"
	"github.com/phonolearn/plp/grammar"
	"github.com/phonolearn/plp/natclass"
	"github.com/phonolearn/plp/ngram"
	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/vocab"
)

// Pair is one raw (underlying form, surface form) training example, given
// as plain IPA strings — the form a corpus row arrives in before
// tokenization.
type Pair struct {
	UF string
	SF string
}

// Learner is the phonological rule-learning orchestrator.
type Learner struct {
	alphabet *alphabet.Alphabet
	cfg      Config

	vocab    vocab.Vocabulary
	seenPair map[string]bool
	ngrams   *ngram.Store
	grammar  *grammar.Grammar

	ruleBuilders  map[string]*builder.Builder
	discrepancies discrepancies
}

// New builds a Learner over an already-populated Alphabet (package ipa
// loads the feature table; callers choose whether to eagerly intern every
// known symbol via Alphabet.AddAllKnown before training, spec's add_segs
// flag).
func New(a *alphabet.Alphabet, cfg Config) *Learner {
	if cfg.Threshold == nil {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if len(cfg.NGramLens) == 0 {
		cfg.NGramLens = DefaultConfig().NGramLens
	}
	l := &Learner{
		alphabet:      a,
		cfg:           cfg,
		seenPair:      make(map[string]bool),
		ngrams:        ngram.NewStore(a, cfg.NGramLens),
		grammar:       grammar.New(),
		ruleBuilders:  make(map[string]*builder.Builder),
		discrepancies: make(discrepancies),
	}
	l.ruleBuilders[""] = l.newRuleBuilder(seq.Position{}, true)
	return l
}

// Grammar returns the learner's current grammar.
func (l *Learner) Grammar() *grammar.Grammar { return l.grammar }

// Alphabet returns the learner's alphabet.
func (l *Learner) Alphabet() *alphabet.Alphabet { return l.alphabet }

// Vocabulary returns every training pair seen so far.
func (l *Learner) Vocabulary() vocab.Vocabulary { return l.vocab }

// String renders the learner's grammar in its canonical numbered form.
func (l *Learner) String() string { return l.grammar.String() }

func (l *Learner) newRuleBuilder(target seq.Position, targetEmpty bool) *builder.Builder {
	return builder.New(target, targetEmpty, l.alphabet, l.cfg.Threshold, l.cfg.Logger)
}

func (l *Learner) emptyBuilder() *builder.Builder { return l.ruleBuilders[""] }

func (l *Learner) builderFor(k discKey) *builder.Builder {
	key := k.builderKey()
	if b, ok := l.ruleBuilders[key]; ok {
		return b
	}
	b := l.newRuleBuilder(seq.SegPos(k.target), false)
	l.ruleBuilders[key] = b
	return b
}

func pairKey(uf, sf *seq.Sequence) string { return uf.String() + "\x00" + sf.String() }

// addIncremental tokenizes uf/sf, folds their segments into the alphabet
// and n-gram store, records the pair in the vocabulary, and feeds every
// aligned position into the appropriate rule builder (plp.py's
// add_incremental).
func (l *Learner) addIncremental(ufStr, sfStr string) (uf, sf, alignedUF, alignedSF *seq.Sequence, err error) {
	if err := l.alphabet.AddSegmentsFromString(ufStr); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := l.alphabet.AddSegmentsFromString(sfStr); err != nil {
		return nil, nil, nil, nil, err
	}

	uf, err = seq.FromString(ufStr, l.alphabet)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sf, err = seq.FromString(sfStr, l.alphabet)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	l.ngrams.Add(uf)

	key := pairKey(uf, sf)
	if !l.seenPair[key] {
		l.seenPair[key] = true
		l.vocab = append(l.vocab, vocab.Pair{UF: uf, SF: sf})
	}

	for _, p := range uf.Positions {
		if p.Kind == seq.KindSegment && p.Seg != nil {
			if _, ok := l.ruleBuilders[p.Seg.IPA]; !ok {
				l.ruleBuilders[p.Seg.IPA] = l.newRuleBuilder(seq.SegPos(p.Seg), false)
			}
		}
	}

	alignedUF, alignedSF = align.Align(uf, sf)

	idx := -1
	for i := 0; i < alignedUF.Len(); i++ {
		p := alignedUF.Positions[i]
		if !align.IsEmpty(p) {
			idx++
			targetBuilder := l.ruleBuilders[p.Seg.IPA]
			replPos := alignedSF.Positions[i]
			targetBuilder.AddInstance(uf, sf, idx, replPos, align.IsEmpty(replPos), false)

			followedByGap := i+1 < alignedUF.Len() && align.IsEmpty(alignedUF.Positions[i+1])
			if !followedByGap {
				l.emptyBuilder().AddInstance(uf, sf, idx, seq.Position{}, true, true)
			}
		} else {
			replPos := alignedSF.Positions[i]
			l.emptyBuilder().AddInstance(uf, sf, idx, replPos, align.IsEmpty(replPos), true)
		}
	}

	return uf, sf, alignedUF, alignedSF, nil
}

// Train runs a full batch training pass: ingest every pair, collect every
// discrepancy between its aligned UF and SF, build a rule accounting for
// each, and update the grammar (plp.py's train).
func (l *Learner) Train(pairs []Pair) error {
	seen := map[discKey]bool{}
	var keys []discKey
	for _, p := range pairs {
		_, _, alignedUF, alignedSF, err := l.addIncremental(p.UF, p.SF)
		if err != nil {
			return fmt.Errorf("learner: train %q/%q: %w", p.UF, p.SF, err)
		}
		if alignedUF.Equal(alignedSF) {
			continue
		}
		for i := 0; i < alignedUF.Len(); i++ {
			pu, ps := alignedUF.Positions[i], alignedSF.Positions[i]
			if pu.Equal(ps) {
				continue
			}
			k := fullKeyFrom(pu, ps)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].sortKey() < keys[j].sortKey() })
	for _, k := range keys {
		b := l.builderFor(k)
		l.discrepancies[k] = b.Build(k.replPosition(), k.replEmpty)
	}

	l.updateRules()
	return nil
}

// TrainIncremental ingests a single new pair and repairs the grammar:
// first rechecking every existing discrepancy rule for overapplication
// against the new pair, then checking for underapplications the existing
// rules don't yet explain, rebuilding as needed in either case. If nothing
// needed rebuilding but producing the new UF still yields the unknown
// segment, the grammar is refreshed anyway so an over-generalized natural
// class gets a chance to retract (plp.py's train_incremental).
func (l *Learner) TrainIncremental(ufStr, sfStr string) error {
	uf, sf, alignedUF, alignedSF, err := l.addIncremental(ufStr, sfStr)
	if err != nil {
		return fmt.Errorf("learner: train_incremental %q/%q: %w", ufStr, sfStr, err)
	}
	rulesChanged := false

	for k, rules := range l.discrepancies {
		n, c := 0, 0
		for _, r := range rules {
			rn, rc := r.Applies(uf, sf)
			n += rn
			c += rc
		}
		if n != c {
			b := l.builderFor(k)
			l.discrepancies[k] = b.Build(k.replPosition(), k.replEmpty)
			rulesChanged = true
		}
	}

	if !alignedUF.Equal(alignedSF) {
		for i := 0; i < alignedUF.Len(); i++ {
			pu, ps := alignedUF.Positions[i], alignedSF.Positions[i]
			if pu.Equal(ps) {
				continue
			}
			k := fullKeyFrom(pu, ps)
			rules, ok := l.discrepancies[k]

			underapplies := true
			if ok {
				for _, r := range rules {
					if !r.Apply(alignedUF).Equal(alignedUF) {
						underapplies = false
						break
					}
				}
			}
			if !ok || underapplies {
				b := l.builderFor(k)
				l.discrepancies[k] = b.Build(k.replPosition(), k.replEmpty)
				rulesChanged = true
			}
		}
	}

	if rulesChanged {
		l.updateRules()
		return nil
	}
	produced := l.grammar.Apply(uf)
	if rule.ContainsUnknown(produced) {
		l.updateRules()
	}
	return nil
}

// updateRules is the master sequencing call after any rule changes:
// feature-changeify every discrepancy rule, merge to fixpoint, assign a
// provisional scope-based order, induce natural classes, then assign the
// final specificity-based order (plp.py's update_rules).
func (l *Learner) updateRules() {
	rules := l.discrepancies.getRules()
	grammarRules := make([]*rule.Rule, len(rules))
	for i, r := range rules {
		grammarRules[i] = r.Copy().FeatureChangeify()
	}
	l.grammar.SetRules(grammarRules)
	l.grammar.MergeRules(l.vocab)
	l.grammar.OrderRulesByScope(l.vocab)
	l.induceNaturalClasses()
	l.grammar.OrderRules(l.vocab)
}

// induceNaturalClasses widens each grammar rule's literal positions into
// natural classes, scoring each against the n-grams of its own width after
// rewriting every n-gram through every higher-ranked rule — so a rule's
// generalization is judged against the forms it will actually see once the
// rules ranked above it have already applied (plp.py's
// induce_natural_classes).
func (l *Learner) induceNaturalClasses() {
	gen := natclass.New(l.alphabet, l.cfg.SkipGenA)
	for i := 0; i < len(l.grammar.Rules); i++ {
		r := l.grammar.Rules[i]
		k := r.Len()
		raw := l.ngrams.Entries(k)

		rewritten := make(map[string]*ngram.Entry, len(raw))
		for _, e := range raw {
			s := e.Seq
			for j := 0; j < i; j++ {
				s = l.grammar.Rules[j].Apply(s)
			}
			if s.Len() != k {
				continue
			}
			key := s.String()
			if cur, ok := rewritten[key]; ok {
				cur.Freq += e.Freq
			} else {
				rewritten[key] = &ngram.Entry{Seq: s, Freq: e.Freq}
			}
		}

		flat := make([]*ngram.Entry, 0, len(rewritten))
		for _, e := range rewritten {
			flat = append(flat, e)
		}
		sort.Slice(flat, func(a, b int) bool { return flat[a].Seq.String() < flat[b].Seq.String() })

		l.grammar.Rules[i] = gen.Induce(r, flat)
	}
}

// Produce tokenizes uf (interning any segment not yet in the alphabet) and
// applies the grammar to it (plp.py's produce/__call__).
func (l *Learner) Produce(ufStr string) (*seq.Sequence, error) {
	if err := l.alphabet.AddSegmentsFromString(ufStr); err != nil {
		return nil, fmt.Errorf("learner: produce %q: %w", ufStr, err)
	}
	uf, err := seq.FromString(ufStr, l.alphabet)
	if err != nil {
		return nil, fmt.Errorf("learner: produce %q: %w", ufStr, err)
	}
	return l.grammar.Apply(uf), nil
}

// Accuracy scores the grammar against a held-out test set, returning the
// fraction of pairs correctly produced and, for each miss, a printable
// "UF: ... Pred: ... SF: ..." line (plp.py's accuracy, spec.md §3's
// supplemented evaluation-reporting feature).
func (l *Learner) Accuracy(test []Pair) (float64, []string, error) {
	var errs []string
	correct, total := 0, 0
	for _, p := range test {
		pred, err := l.Produce(p.UF)
		if err != nil {
			return 0, nil, err
		}
		sf, err := seq.FromString(p.SF, l.alphabet)
		if err != nil {
			return 0, nil, err
		}
		total++
		if pred.Equal(sf) {
			correct++
		} else {
			errs = append(errs, fmt.Sprintf("UF: %s    Pred: %s    SF: %s", p.UF, pred.String(), p.SF))
		}
	}
	if total == 0 {
		return 0, errs, nil
	}
	return float64(correct) / float64(total), errs, nil
}
