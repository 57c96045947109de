package ports

import (
	"context"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// Searcher executes patterns against the search index.
type Searcher interface {
	// Search runs pattern and returns at most maxHits hits.
	// A maxHits <= 0 returns every hit. TotalHits is always the full count.
	// The pattern may contain lookbehind/lookahead assertions and
	// bounded or unbounded repetition.
	Search(ctx context.Context, pattern query.Pattern, maxHits int) (*domain.SearchResult, error)
}
