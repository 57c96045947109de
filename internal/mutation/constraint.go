package mutation

import (
	"context"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// mutateConstraints runs the constraint-level walk over one constraint per
// token. The result always has the same length as the input.
func (e *Engine) mutateConstraints(ctx context.Context, cs []query.Constraint, depth int) ([]query.Constraint, error) {
	if len(cs) == 0 {
		return cs, nil
	}
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iter >= e.config.MaxIterations {
			e.emit(ctx, domain.LevelConstraint, ActionStop, domain.OutcomeCapped, depth)
			return cs, nil
		}

		i := e.rng.Intn(len(cs))
		action := e.choose(e.config.ConstraintActions)

		var next []query.Constraint
		switch action {
		case ActionStop:
			return cs, nil
		case ActionNot:
			if _, ok := cs[i].(query.NotConstraint); ok {
				e.emit(ctx, domain.LevelConstraint, action, domain.OutcomeRejected, depth)
				continue
			}
			next = replaceAt(cs, i, query.Constraint(query.NotConstraint{Inner: cs[i]}))
		case ActionOr, ActionAnd:
			c, ok, err := e.combineConstraint(ctx, cs, i, action)
			if err != nil {
				return nil, err
			}
			if !ok {
				e.emit(ctx, domain.LevelConstraint, action, domain.OutcomeAbandoned, depth)
				continue
			}
			next = replaceAt(cs, i, c)
		default:
			continue
		}

		ok, err := e.changesMatches(ctx, query.Wrap(cs), query.Wrap(next))
		if err != nil {
			return nil, err
		}
		if !ok {
			e.emit(ctx, domain.LevelConstraint, action, domain.OutcomeRejected, depth)
			continue
		}
		e.emit(ctx, domain.LevelConstraint, action, domain.OutcomeAccepted, depth)
		cs = next
	}
}

// combineConstraint looks up a literal for token i in a corpus sentence and
// joins it with cs[i].
//
// For "or" the probe leaves a one-token gap at i, so the literal comes from
// any token that fits the surrounding context. For "and" the probe keeps
// cs[i] in place, so the literal comes from a token that already satisfies
// it. It reports false when the probe finds nothing.
func (e *Engine) combineConstraint(ctx context.Context, cs []query.Constraint, i int, action string) (query.Constraint, bool, error) {
	nodes := query.Wrap(cs)
	gap := query.Surface(query.WildcardSurface{})
	if action == ActionAnd {
		gap = nodes[i]
	}
	probe := query.Probe(nodes[:i], gap, nodes[i+1:])

	res, err := e.search(ctx, probe, e.config.NumMatches)
	if err != nil {
		return nil, false, err
	}
	hit, ok := e.pickHit(res)
	if !ok {
		return nil, false, nil
	}
	sentence, err := e.corpus.GetSentence(ctx, hit.Locator)
	if err != nil {
		return nil, false, err
	}
	alt, err := e.literal(sentence, hit.Matches[0].Start)
	if err != nil {
		return nil, false, err
	}

	left, right := cs[i], alt
	if e.coin() {
		left, right = right, left
	}
	if action == ActionAnd {
		return query.AndConstraint{Left: left, Right: right}, true, nil
	}
	return query.OrConstraint{Left: left, Right: right}, true, nil
}
