package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/rulesmith/pkg/adapters/memory"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCorpus_Contract(t *testing.T) {
	ports.RunCorpusContract(t, memory.NewCorpus(ports.ContractDocuments()...))
}

func TestMemorySearcher_Contract(t *testing.T) {
	corpus := memory.NewCorpus(ports.ContractDocuments()...)
	ports.RunSearcherContract(t, memory.NewSearcher(corpus))
}

func TestMemoryCorpus_Empty(t *testing.T) {
	c := memory.NewCorpus()
	_, err := c.RandomDocument(context.Background(), fixedSource(0))
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestMemoryCorpus_AddReplaces(t *testing.T) {
	docs := ports.ContractDocuments()
	c := memory.NewCorpus(docs...)
	c.Add(domain.Document{ID: "d1"})

	doc, err := c.GetDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, doc.Sentences)
}

func TestMemorySearcher_Semantics(t *testing.T) {
	s := memory.NewSearcher(memory.NewCorpus(ports.ContractDocuments()...))
	ctx := context.Background()
	tok := func(field, value string) query.Surface {
		return query.TokenSurface{Constraint: query.Field(field, value)}
	}

	tests := []struct {
		name  string
		p     query.Pattern
		total int
	}{
		{"bare constraint", query.Field("tag", "VBZ"), 2},
		{"negation", query.Concat(tok("word", "quick"), query.TokenSurface{Constraint: query.NotConstraint{Inner: query.Field("tag", "NN")}}), 2},
		{"conjunction", query.TokenSurface{Constraint: query.AndConstraint{Left: query.Field("tag", "JJ"), Right: query.Field("lemma", "brown")}}, 2},
		{"optional start still needs a token", query.Concat(query.RepeatSurface{Inner: tok("tag", "DT"), Min: 0, Max: 1}, tok("lemma", "dog")), 3},
		{"bounded gap", query.Concat(tok("word", "quick"), query.RepeatSurface{Inner: query.WildcardSurface{}, Min: 1, Max: 2}, tok("word", "fox")), 2},
		{"gap too short", query.Concat(tok("word", "The"), query.RepeatSurface{Inner: query.WildcardSurface{}, Min: 1, Max: 1}, tok("word", "fox")), 0},
		{"surface alternation", query.OrSurface{Left: tok("word", "sleeps"), Right: tok("word", "ran")}, 2},
		{"lookaround both sides", query.Probe([]query.Surface{tok("word", "lazy")}, query.WildcardSurface{}, []query.Surface{tok("word", ".")}), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Search(ctx, tt.p, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.total, res.TotalHits)
		})
	}
}

func TestMemorySearcher_LongestNonOverlapping(t *testing.T) {
	s := memory.NewSearcher(memory.NewCorpus(ports.ContractDocuments()...))
	p := query.Concat(
		query.RepeatSurface{Inner: query.TokenSurface{Constraint: query.Field("tag", "JJ")}, Min: 1, Max: query.Unbounded},
		query.TokenSurface{Constraint: query.Field("tag", "NN")},
	)

	res, err := s.Search(context.Background(), p, 1)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, []domain.Match{{Start: 1, End: 4}, {Start: 7, End: 9}}, res.Hits[0].Matches)
}

func TestMemorySearcher_ZeroWidthOnly(t *testing.T) {
	s := memory.NewSearcher(memory.NewCorpus(ports.ContractDocuments()...))
	p := query.LookaheadSurface{Inner: query.TokenSurface{Constraint: query.Field("word", "fox")}}

	res, err := s.Search(context.Background(), p, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalHits, "empty matches are not hits")
}

type fixedSource int

func (f fixedSource) Intn(int) int { return int(f) }
