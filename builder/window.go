package builder

import (
	"math"
	"sort"

	"github.com/phonolearn/plp/rule"
	"github.com/phonolearn/plp/segment"
	"github.com/phonolearn/plp/seq"
)

// matCell is one cell of the padded context matrix: either a pad (the row
// is shorter than the matrix is wide), the target marker ('_'), or a real
// context position.
type matCell struct {
	Pad bool
	Mid bool
	Pos seq.Position
}

// padRow lays out one instance's context as [pad...][lc...][_][rc...][pad...],
// left-padding the left context and right-padding the right context so
// every row in a matrix is the same width (spec.md §4.5).
func padRow(lc, rc []seq.Position, maxLC, maxRC int) []matCell {
	row := make([]matCell, 0, maxLC+1+maxRC)
	for i := 0; i < maxLC-len(lc); i++ {
		row = append(row, matCell{Pad: true})
	}
	for _, p := range lc {
		row = append(row, matCell{Pos: p})
	}
	row = append(row, matCell{Mid: true})
	for _, p := range rc {
		row = append(row, matCell{Pos: p})
	}
	for i := 0; i < maxRC-len(rc); i++ {
		row = append(row, matCell{Pad: true})
	}
	return row
}

func colHasPad(mat [][]matCell, col int) bool {
	for _, row := range mat {
		if row[col].Pad {
			return true
		}
	}
	return false
}

func rangeHasPad(mat [][]matCell, start, end int) bool {
	for col := start; col < end; col++ {
		if colHasPad(mat, col) {
			return true
		}
	}
	return false
}

// windowCol is one column of a candidate window: either the target marker,
// or the deduplicated set of positions observed across every row at that
// column.
type windowCol struct {
	Mid       bool
	Positions []seq.Position
}

func uniquePositions(rows [][]matCell, col int) []seq.Position {
	var out []seq.Position
	seen := map[string]bool{}
	for _, row := range rows {
		p := row[col].Pos
		key := p.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}

func buildWindowCols(mat [][]matCell, start, end, middle int) []windowCol {
	cols := make([]windowCol, 0, end-start)
	for col := start; col < end; col++ {
		if col == middle {
			cols = append(cols, windowCol{Mid: true})
			continue
		}
		cols = append(cols, windowCol{Positions: uniquePositions(mat, col)})
	}
	return cols
}

// sizeKWindows slides a width-k window across mat's columns, starting once
// every row has real content (no pad) and stopping once the window would
// reach into the far padding, collecting every window that contains the
// target marker (spec.md §4.5).
func sizeKWindows(mat [][]matCell, numCols, k, middle int) [][]windowCol {
	windowStart := 0
	for windowStart < numCols && colHasPad(mat, windowStart) {
		windowStart++
	}
	windowEnd := windowStart + k

	var out [][]windowCol
	for windowEnd <= numCols {
		curStart, curEnd := windowStart, windowEnd
		windowStart++
		windowEnd = windowStart + k

		if !(curStart <= middle && middle < curEnd) {
			continue
		}
		if rangeHasPad(mat, curStart, curEnd) {
			break
		}
		out = append(out, buildWindowCols(mat, curStart, curEnd, middle))
	}
	return out
}

// ruleFromWindow builds a Rule from a window (nil meaning the context-free,
// wildcard-on-both-sides zero rule).
func (b *Builder) ruleFromWindow(window []windowCol, middle int, repl seq.Position, replEmpty bool) *rule.Rule {
	var c, d rule.RulePart
	if window == nil {
		c, d = rule.Wild(), rule.Wild()
	} else {
		var cPos, dPos []seq.Position
		left := true
		for _, col := range window {
			if col.Mid {
				left = false
				continue
			}
			var p seq.Position
			if len(col.Positions) == 1 {
				p = col.Positions[0]
			} else {
				p = seq.SetPos(extractSegs(col.Positions)...)
			}
			if left {
				cPos = append(cPos, p)
			} else {
				dPos = append(dPos, p)
			}
		}
		if len(cPos) == 0 {
			c = rule.Wild()
		} else {
			c = rule.Part(seq.FromPositions(cPos, b.alphabet))
		}
		if len(dPos) == 0 {
			d = rule.Wild()
		} else {
			d = rule.Part(seq.FromPositions(dPos, b.alphabet))
		}
	}

	var a rule.RulePart
	if b.targetEmpty {
		a = rule.Part(seq.Empty(b.alphabet))
	} else {
		a = rule.Part(seq.FromPositions([]seq.Position{b.target}, b.alphabet))
	}

	var bp rule.BPart
	if replEmpty {
		bp = rule.BSeq(seq.Empty(b.alphabet))
	} else {
		bp = rule.BSeq(seq.FromPositions([]seq.Position{repl}, b.alphabet))
	}

	return rule.New(b.alphabet, c, a, d, bp)
}

func extractSegs(positions []seq.Position) []*segment.Segment {
	out := make([]*segment.Segment, 0, len(positions))
	for _, p := range positions {
		if p.Kind == seq.KindSegment {
			out = append(out, p.Seg)
		}
	}
	return out
}

// buildFromContexts is the recursive window-widening search: try
// successively wider windows, score candidates, test for mutually
// exclusive sub-contexts, and fall back to lexicalized per-instance rules.
func (b *Builder) buildFromContexts(repl seq.Position, replEmpty bool, mat [][]matCell, numCols, middle int) []*rule.Rule {
	for k := 2; k < numCols; k++ {
		windows := sizeKWindows(mat, numCols, k, middle)
		if len(windows) == 0 {
			break
		}

		best, bestScore := windows[0], math.Inf(1)
		for _, w := range windows {
			r := b.ruleFromWindow(w, middle, repl, replEmpty)
			n, c := r.GetNC(b.pairs)
			score := 0.0
			if n > 0 {
				score = -float64(c) / float64(n)
			}
			score -= 0.1 * float64(countBoundary(w, "#"))
			score -= 0.01 * float64(countBoundary(w, "."))
			numLeft := midIndex(w)
			if k > 1 {
				score -= 0.001 * (float64(numLeft) / float64(k-1))
			}
			if score < bestScore {
				bestScore = score
				best = w
			}
		}

		r := b.ruleFromWindow(best, middle, repl, replEmpty)
		n, c := r.GetNC(b.pairs)
		if b.threshold(n, c) {
			return []*rule.Rule{r}
		}

		if k > 2 && (k-1)%2 == 0 {
			offset := (k - 1) / 2
			if rules := b.tryMutuallyExclusive(repl, replEmpty, mat, numCols, middle, offset); rules != nil {
				return rules
			}
		}
	}

	return b.buildLexicalized(repl, replEmpty, mat, numCols, middle)
}

func countBoundary(w []windowCol, sym string) int {
	n := 0
	for _, col := range w {
		if col.Mid || len(col.Positions) != 1 {
			continue
		}
		if col.Positions[0].Kind == seq.KindSegment && col.Positions[0].Seg.IPA == sym {
			n++
		}
	}
	return n
}

func midIndex(w []windowCol) int {
	for i, col := range w {
		if col.Mid {
			return i
		}
	}
	return 0
}

// tryMutuallyExclusive partitions mat's rows into connected components by
// the (left, right) context pair at the given offset from the target, and
// — if there is more than one component — recurses independently on each
// (spec.md §4.5's "mutual-exclusion split", e.g. distinguishing
// intervocalic voicing from post-nasal voicing rather than forcing one
// overly broad disjunctive context).
func (b *Builder) tryMutuallyExclusive(repl seq.Position, replEmpty bool, mat [][]matCell, numCols, middle, offset int) []*rule.Rule {
	rowKeyL := make([]string, len(mat))
	rowKeyR := make([]string, len(mat))
	tokenSet := map[string]bool{}
	for i, row := range mat {
		rowKeyL[i] = cellRangeKey(row, middle-offset, middle)
		rowKeyR[i] = cellRangeKey(row, middle+1, middle+1+offset)
		tokenSet[rowKeyL[i]] = true
		tokenSet[rowKeyR[i]] = true
	}

	// Left- and right-context strings live in one shared token namespace
	// (spec.md §4.5(e)'s "undirected graph on context tokens"), so a row's
	// left string equal to another row's right string — or the shared
	// all-pad string — connects them. Each row is unioned with both its left
	// token and its right token, linking the two; tokens are assigned
	// indices in sorted order so the resulting partition is reproducible
	// regardless of map iteration order.
	tokens := make([]string, 0, len(tokenSet))
	for t := range tokenSet {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	tokenIndex := make(map[string]int, len(tokens))
	for i, t := range tokens {
		tokenIndex[t] = i
	}

	uf := newUnionFind(len(mat) + len(tokens))
	tokenNode := func(tok string) int { return len(mat) + tokenIndex[tok] }
	for i := range mat {
		uf.union(i, tokenNode(rowKeyL[i]))
		uf.union(i, tokenNode(rowKeyR[i]))
	}

	components := map[int][]int{}
	for i := range mat {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}
	if len(components) <= 1 {
		return nil
	}

	// Order components by the earliest row each contains, so output order
	// doesn't depend on the arbitrary internal union-find root values.
	roots := make([]int, 0, len(components))
	for root := range components {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool {
		return components[roots[i]][0] < components[roots[j]][0]
	})

	var rules []*rule.Rule
	for _, root := range roots {
		rows := components[root]
		sub := make([][]matCell, len(rows))
		for j, i := range rows {
			sub[j] = mat[i]
		}
		rules = append(rules, b.buildFromContexts(repl, replEmpty, sub, numCols, middle)...)
	}
	return rules
}

func cellRangeKey(row []matCell, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(row) {
		end = len(row)
	}
	s := ""
	for col := start; col < end; col++ {
		s += row[col].Pos.String() + "|"
	}
	return s
}

// buildLexicalized falls back to one rule per training instance when no
// generalized window is accurate enough, logging a warning (spec.md §4.5,
// "Lexicalized fallback") — the learner's signal that this target/
// replacement pair resisted generalization over the corpus it was given.
func (b *Builder) buildLexicalized(repl seq.Position, replEmpty bool, mat [][]matCell, numCols, middle int) []*rule.Rule {
	b.logger.Warn().
		Str("target", b.target.String()).
		Str("replacement", repl.String()).
		Msg("falling back to lexicalized rules")
	var rules []*rule.Rule
	seen := map[string]bool{}
	for _, row := range mat {
		sub := [][]matCell{row}
		for _, r := range b.buildFromContexts(repl, replEmpty, sub, numCols, middle) {
			key := r.String()
			if !seen[key] {
				seen[key] = true
				rules = append(rules, r)
			}
		}
	}
	return rules
}

type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
