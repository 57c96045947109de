package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// search runs p against the index and reports it to the hooks.
func (e *Engine) search(ctx context.Context, p query.Pattern, maxHits int) (*domain.SearchResult, error) {
	start := time.Now()
	res, err := e.searcher.Search(ctx, p, maxHits)

	ev := &domain.SearchEvent{
		Timestamp: start,
		Pattern:   p.String(),
		MaxHits:   maxHits,
		Duration:  time.Since(start),
		Err:       err,
	}
	if res != nil {
		ev.TotalHits = res.TotalHits
	}
	e.hooks.EmitSearch(ctx, ev)

	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, domain.ErrSearchFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
		}
		return nil, fmt.Errorf("search %q: %w", p.String(), err)
	}
	return res, nil
}

// changesMatches reports whether next still matches something and matches
// a different number of sentences than prev.
func (e *Engine) changesMatches(ctx context.Context, prev, next []query.Surface) (bool, error) {
	after, err := e.search(ctx, query.Concat(next...), 1)
	if err != nil {
		return false, err
	}
	if after.TotalHits == 0 {
		return false, nil
	}
	before, err := e.search(ctx, query.Concat(prev...), 1)
	if err != nil {
		return false, err
	}
	return after.TotalHits != before.TotalHits, nil
}

// pickHit draws one hit that carries at least one match.
func (e *Engine) pickHit(res *domain.SearchResult) (domain.Hit, bool) {
	var hits []domain.Hit
	for _, h := range res.Hits {
		if len(h.Matches) > 0 {
			hits = append(hits, h)
		}
	}
	if len(hits) == 0 {
		return domain.Hit{}, false
	}
	return hits[e.rng.Intn(len(hits))], true
}
