package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// Searcher implements ports.Searcher by evaluating patterns directly over a
// Corpus. It is exact but linear in corpus size, which makes it the
// reference oracle for tests and small offline corpora.
type Searcher struct {
	corpus *Corpus
}

// NewSearcher creates a searcher over corpus.
func NewSearcher(corpus *Corpus) *Searcher {
	return &Searcher{corpus: corpus}
}

// Search returns every sentence p matches. maxHits <= 0 returns all hits.
func (s *Searcher) Search(ctx context.Context, p query.Pattern, maxHits int) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	surface, err := asSurface(p)
	if err != nil {
		return nil, err
	}

	res := &domain.SearchResult{}
	s.corpus.each(func(loc domain.Locator, sent *domain.Sentence) bool {
		matches := findMatches(surface, sent)
		if len(matches) == 0 {
			return true
		}
		res.TotalHits++
		if maxHits <= 0 || len(res.Hits) < maxHits {
			res.Hits = append(res.Hits, domain.Hit{Locator: loc, Matches: matches})
		}
		return true
	})
	return res, nil
}

func asSurface(p query.Pattern) (query.Surface, error) {
	switch n := p.(type) {
	case query.Surface:
		return n, nil
	case query.Constraint:
		return query.TokenSurface{Constraint: n}, nil
	case nil:
		return nil, fmt.Errorf("empty pattern")
	}
	return nil, fmt.Errorf("unsupported pattern %T", p)
}
