package query

// Concat left-folds nodes into nested ConcatSurface values.
// It returns nil for an empty slice.
func Concat(nodes ...Surface) Surface {
	if len(nodes) == 0 {
		return nil
	}
	rule := nodes[0]
	for _, n := range nodes[1:] {
		rule = ConcatSurface{Left: rule, Right: n}
	}
	return rule
}

// Wrap lifts per-token constraints into surface nodes.
// Wildcard constraints become WildcardSurface, everything else TokenSurface.
func Wrap(constraints []Constraint) []Surface {
	nodes := make([]Surface, len(constraints))
	for i, c := range constraints {
		if _, ok := c.(WildcardConstraint); ok {
			nodes[i] = WildcardSurface{}
			continue
		}
		nodes[i] = TokenSurface{Constraint: c}
	}
	return nodes
}

// Probe builds a pattern whose only consuming part is gap, anchored by
// before as a lookbehind and after as a lookahead. Empty sides are omitted.
func Probe(before []Surface, gap Surface, after []Surface) Surface {
	parts := make([]Surface, 0, 3)
	if len(before) > 0 {
		parts = append(parts, LookbehindSurface{Inner: Concat(before...)})
	}
	parts = append(parts, gap)
	if len(after) > 0 {
		parts = append(parts, LookaheadSurface{Inner: Concat(after...)})
	}
	return Concat(parts...)
}

// Quantifier bounds by symbol.
var quantifiers = map[string][2]int{
	"?": {0, 1},
	"*": {0, Unbounded},
	"+": {1, Unbounded},
}

// Quantify wraps inner in the RepeatSurface named by symbol ("?", "*", "+").
func Quantify(inner Surface, symbol string) (RepeatSurface, bool) {
	b, ok := quantifiers[symbol]
	if !ok {
		return RepeatSurface{}, false
	}
	return RepeatSurface{Inner: inner, Min: b[0], Max: b[1]}, true
}

// Walk visits p and every node below it in depth-first pre-order, including
// the constraints inside tokens. Returning false from fn prunes the subtree.
func Walk(p Pattern, fn func(Pattern) bool) {
	if p == nil || !fn(p) {
		return
	}
	switch n := p.(type) {
	case TokenSurface:
		Walk(n.Constraint, fn)
	case ConcatSurface:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case OrSurface:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case RepeatSurface:
		Walk(n.Inner, fn)
	case LookbehindSurface:
		Walk(n.Inner, fn)
	case LookaheadSurface:
		Walk(n.Inner, fn)
	case NotConstraint:
		Walk(n.Inner, fn)
	case AndConstraint:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case OrConstraint:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}
