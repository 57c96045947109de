package memory

import (
	"sort"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// matchConstraint reports whether token i of s satisfies c.
func matchConstraint(c query.Constraint, s *domain.Sentence, i int) bool {
	switch n := c.(type) {
	case query.FieldConstraint:
		v, err := s.Token(n.Name, i)
		return err == nil && n.Value.Matches(v)
	case query.NotConstraint:
		return !matchConstraint(n.Inner, s, i)
	case query.AndConstraint:
		return matchConstraint(n.Left, s, i) && matchConstraint(n.Right, s, i)
	case query.OrConstraint:
		return matchConstraint(n.Left, s, i) || matchConstraint(n.Right, s, i)
	case query.WildcardConstraint:
		return true
	}
	return false
}

// ends returns every position where p, started at pos, can finish.
type ends map[int]struct{}

func (e ends) add(pos int) { e[pos] = struct{}{} }

func (e ends) merge(o ends) {
	for k := range o {
		e[k] = struct{}{}
	}
}

func (e ends) sorted() []int {
	out := make([]int, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// evalSurface runs p against s starting at token pos.
func evalSurface(p query.Surface, s *domain.Sentence, pos int) ends {
	out := ends{}
	switch n := p.(type) {
	case query.TokenSurface:
		if pos < s.NumTokens && matchConstraint(n.Constraint, s, pos) {
			out.add(pos + 1)
		}
	case query.WildcardSurface:
		if pos < s.NumTokens {
			out.add(pos + 1)
		}
	case query.ConcatSurface:
		for mid := range evalSurface(n.Left, s, pos) {
			out.merge(evalSurface(n.Right, s, mid))
		}
	case query.OrSurface:
		out.merge(evalSurface(n.Left, s, pos))
		out.merge(evalSurface(n.Right, s, pos))
	case query.RepeatSurface:
		out = evalRepeat(n, s, pos)
	case query.LookbehindSurface:
		for start := 0; start <= pos; start++ {
			if _, ok := evalSurface(n.Inner, s, start)[pos]; ok {
				out.add(pos)
				break
			}
		}
	case query.LookaheadSurface:
		if len(evalSurface(n.Inner, s, pos)) > 0 {
			out.add(pos)
		}
	}
	return out
}

func evalRepeat(r query.RepeatSurface, s *domain.Sentence, pos int) ends {
	limit := r.Max
	if limit == query.Unbounded {
		// Every useful repetition consumes a token.
		limit = r.Min + s.NumTokens + 1
	}
	out := ends{}
	if r.Min == 0 {
		out.add(pos)
	}
	frontier := ends{pos: {}}
	for count := 1; count <= limit && len(frontier) > 0; count++ {
		next := ends{}
		for p := range frontier {
			next.merge(evalSurface(r.Inner, s, p))
		}
		if count >= r.Min {
			out.merge(next)
		}
		frontier = next
	}
	return out
}

// findMatches scans s left to right and returns the longest non-empty match
// at each start, skipping past every match found.
func findMatches(p query.Surface, s *domain.Sentence) []domain.Match {
	var matches []domain.Match
	for start := 0; start < s.NumTokens; {
		best := -1
		for _, e := range evalSurface(p, s, start).sorted() {
			if e > start {
				best = e
			}
		}
		if best < 0 {
			start++
			continue
		}
		matches = append(matches, domain.Match{Start: start, End: best})
		start = best
	}
	return matches
}
