// Package grammar implements Grammar (spec.md §3/§4.7/§4.9): an ordered
// list of rules, applied in sequence, with the merge-to-fixpoint,
// order-by-scope, and topological order-by-specificity operations the
// learner runs after every rule-set change.
//
// Grounded on original_source/src/plp_grammar.py's PLPgrammar
// (apply/order_rules/order_rules_by_scope) and, for the topological sort,
// on the teacher's habit (nfa compilation's multi-pass dependency
// resolution) of reducing an ordering problem to a small, self-contained
// graph algorithm rather than reaching for a general-purpose graph
// library — deterministic Kahn's algorithm, tie-broken by each rule's
// canonical printed form so two equally-unordered rules always land in the
// same relative position across runs.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/seq"
	"github.com/phonolearn/plp/vocab"
)

// Grammar is an ordered list of rules.
type Grammar struct {
	Rules []*rule.Rule
}

// New builds an empty Grammar.
func New() *Grammar { return &Grammar{} }

// SetRules replaces the grammar's rule list wholesale.
func (g *Grammar) SetRules(rules []*rule.Rule) { g.Rules = rules }

// Len returns the number of rules.
func (g *Grammar) Len() int { return len(g.Rules) }

// Add appends a rule to the end of the grammar.
func (g *Grammar) Add(r *rule.Rule) { g.Rules = append(g.Rules, r) }

// Remove deletes the first occurrence of r (by identity) from the grammar.
func (g *Grammar) Remove(r *rule.Rule) {
	for i, candidate := range g.Rules {
		if candidate == r {
			g.Rules = append(g.Rules[:i], g.Rules[i+1:]...)
			return
		}
	}
}

// Contains reports whether r (by identity) is currently in the grammar.
func (g *Grammar) Contains(r *rule.Rule) bool {
	for _, candidate := range g.Rules {
		if candidate == r {
			return true
		}
	}
	return false
}

// Apply runs every rule in order against uf, feeding each rule's output to
// the next (spec.md §4.9).
func (g *Grammar) Apply(uf *seq.Sequence) *seq.Sequence {
	sf := uf
	for _, r := range g.Rules {
		sf = r.Apply(sf)
	}
	return sf
}

// String renders the grammar as its numbered rule list, spec.md §6's
// "i: rule" printed form.
func (g *Grammar) String() string {
	var b strings.Builder
	for i, r := range g.Rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s", i+1, r)
	}
	return b.String()
}

// MergeRules repeatedly scans the grammar for mergeable rule pairs,
// removing the second and folding it into the first, until no further
// merge succeeds (spec.md §4.7: "tries to combine rules that make the same
// change").
func (g *Grammar) MergeRules(pairs vocab.Vocabulary) {
	changed := true
	for changed {
		changed = false
		pool := append([]*rule.Rule(nil), g.Rules...)
		sort.Slice(pool, func(i, j int) bool { return pool[i].String() < pool[j].String() })
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				r1, r2 := pool[i], pool[j]
				if !g.Contains(r1) || !g.Contains(r2) {
					continue
				}
				if r1.Merge(r2, pairs) {
					g.Remove(r2)
					changed = true
				}
			}
		}
	}
}

// OrderRulesByScope assigns a non-arbitrary initial ordering by ascending
// N (the number of contexts each rule matches in the vocabulary) — a
// provisional order used before natural classes are induced, since the
// final order-by-specificity pass depends on rules that may not yet be
// maximally general (spec.md §4.9).
func (g *Grammar) OrderRulesByScope(pairs vocab.Vocabulary) {
	if len(g.Rules) <= 1 {
		return
	}
	type scoped struct {
		r *rule.Rule
		n int
	}
	scopes := make([]scoped, len(g.Rules))
	for i, r := range g.Rules {
		n, _ := r.GetNC(pairs)
		scopes[i] = scoped{r: r, n: n}
	}
	sort.SliceStable(scopes, func(i, j int) bool { return scopes[i].n < scopes[j].n })
	ordered := make([]*rule.Rule, len(scopes))
	for i, s := range scopes {
		ordered[i] = s.r
	}
	g.Rules = ordered
}

// OrderRules topologically sorts the grammar by the MoreSpecific
// precedence relation: whenever ri.MoreSpecific(rj, vocab), ri must be
// applied before rj. Ties (rules with no precedence relation to each
// other) are broken by canonical printed form, so the result is
// deterministic across runs (spec.md §4.9, §9).
func (g *Grammar) OrderRules(pairs vocab.Vocabulary) {
	if len(g.Rules) <= 1 {
		return
	}
	n := len(g.Rules)
	// edges[i][j] true means rule i must precede rule j.
	edges := make([][]bool, n)
	indegree := make([]int, n)
	for i := range edges {
		edges[i] = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ri, rj := g.Rules[i], g.Rules[j]
			switch {
			case ri.MoreSpecific(rj, pairs):
				edges[i][j] = true
				indegree[j]++
			case rj.MoreSpecific(ri, pairs):
				edges[j][i] = true
				indegree[i]++
			}
		}
	}

	remaining := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		remaining[i] = true
	}
	var ordered []*rule.Rule
	for len(remaining) > 0 {
		var ready []int
		for i := range remaining {
			if indegree[i] == 0 {
				ready = append(ready, i)
			}
		}
		sort.Slice(ready, func(a, b int) bool {
			return g.Rules[ready[a]].String() < g.Rules[ready[b]].String()
		})
		pick := ready[0]
		ordered = append(ordered, g.Rules[pick])
		delete(remaining, pick)
		for j := 0; j < n; j++ {
			if edges[pick][j] {
				indegree[j]--
			}
		}
	}
	g.Rules = ordered
}
