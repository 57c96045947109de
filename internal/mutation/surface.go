package mutation

import (
	"context"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// mutateSurface runs the surface-level walk. The result is never longer
// than the input.
func (e *Engine) mutateSurface(ctx context.Context, nodes []query.Surface, depth int) ([]query.Surface, error) {
	if len(nodes) == 0 {
		return nodes, nil
	}
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iter >= e.config.MaxIterations {
			e.emit(ctx, domain.LevelSurface, ActionStop, domain.OutcomeCapped, depth)
			return nodes, nil
		}

		action := e.choose(e.config.SurfaceActions)

		var next []query.Surface
		switch action {
		case ActionStop:
			return nodes, nil
		case ActionConcat:
			if len(nodes) < 2 {
				e.emit(ctx, domain.LevelSurface, action, domain.OutcomeRejected, depth)
				continue
			}
			// Grouping does not change what the rule matches.
			nodes = concatAt(nodes, e.rng.Intn(len(nodes)-1))
			e.emit(ctx, domain.LevelSurface, action, domain.OutcomeAccepted, depth)
			continue
		case ActionQuantifier:
			i := e.rng.Intn(len(nodes))
			if _, ok := nodes[i].(query.RepeatSurface); ok {
				e.emit(ctx, domain.LevelSurface, action, domain.OutcomeRejected, depth)
				continue
			}
			r, ok := query.Quantify(nodes[i], e.choose(e.config.Quantifiers))
			if !ok {
				continue
			}
			next = replaceAt(nodes, i, query.Surface(r))
		case ActionOr:
			if depth >= e.config.MaxDepth {
				e.emit(ctx, domain.LevelSurface, action, domain.OutcomeRejected, depth)
				continue
			}
			i, alt, err := e.alternative(ctx, nodes, depth)
			if err != nil {
				return nil, err
			}
			if alt == nil {
				e.emit(ctx, domain.LevelSurface, action, domain.OutcomeAbandoned, depth)
				continue
			}
			var or query.Surface = query.OrSurface{Left: nodes[i], Right: alt}
			if e.coin() {
				or = query.OrSurface{Left: alt, Right: nodes[i]}
			}
			next = replaceAt(nodes, i, or)
		default:
			continue
		}

		ok, err := e.changesMatches(ctx, nodes, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.emit(ctx, domain.LevelSurface, action, domain.OutcomeRejected, depth)
			continue
		}
		e.emit(ctx, domain.LevelSurface, action, domain.OutcomeAccepted, depth)
		nodes = next
	}
}

// alternative generates a nested rule to alternate with one node.
//
// A lone node gets an unrelated rule from a random sentence. Otherwise a
// node is picked and the rest of the sequence anchors a probe whose gap
// spans up to MaxSpanLength tokens; the nested rule is seeded on the gap
// matched in a random hit. A nil rule means the probe found nothing.
func (e *Engine) alternative(ctx context.Context, nodes []query.Surface, depth int) (int, query.Surface, error) {
	if len(nodes) == 1 {
		alt, err := e.generate(ctx, Seed{}, depth+1)
		return 0, alt, err
	}

	i := e.rng.Intn(len(nodes))
	gap := query.RepeatSurface{Inner: query.WildcardSurface{}, Min: 1, Max: e.config.MaxSpanLength}
	res, err := e.search(ctx, query.Probe(nodes[:i], gap, nodes[i+1:]), e.config.NumMatches)
	if err != nil {
		return i, nil, err
	}
	if res.TotalHits == 0 {
		return i, nil, nil
	}
	hit, ok := e.pickHit(res)
	if !ok {
		return i, nil, nil
	}
	sentence, err := e.corpus.GetSentence(ctx, hit.Locator)
	if err != nil {
		return i, nil, err
	}
	m := hit.Matches[0]
	span := domain.Span{Start: m.Start, Stop: m.End}
	alt, err := e.generate(ctx, Seed{Sentence: sentence, Span: &span}, depth+1)
	return i, alt, err
}

// concatAt merges nodes[i] and nodes[i+1] into one ConcatSurface.
func concatAt(nodes []query.Surface, i int) []query.Surface {
	out := make([]query.Surface, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	out = append(out, query.ConcatSurface{Left: nodes[i], Right: nodes[i+1]})
	return append(out, nodes[i+2:]...)
}
