package ports

import (
	"context"
	"math/rand"
	"testing"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSearcherContract runs a suite of tests to verify that a Searcher
// implementation backed by ContractDocuments adheres to the port contract.
func RunSearcherContract(t *testing.T, s Searcher) {
	ctx := context.Background()
	tok := func(field, value string) query.Surface {
		return query.TokenSurface{Constraint: query.Field(field, value)}
	}

	t.Run("Total Hits", func(t *testing.T) {
		res, err := s.Search(ctx, tok("word", "fox"), 0)
		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalHits)
		require.Len(t, res.Hits, 2)
		assert.Equal(t, domain.Locator{DocID: "d1", SentenceIndex: 0}, stripLucene(res.Hits[0].Locator))
		assert.Equal(t, domain.Locator{DocID: "d1", SentenceIndex: 1}, stripLucene(res.Hits[1].Locator))
	})

	t.Run("Max Hits Caps Hits Not Total", func(t *testing.T) {
		res, err := s.Search(ctx, tok("lemma", "dog"), 1)
		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalHits)
		assert.Len(t, res.Hits, 1)
	})

	t.Run("No Hits", func(t *testing.T) {
		res, err := s.Search(ctx, tok("word", "zebra"), 10)
		require.NoError(t, err)
		assert.Equal(t, 0, res.TotalHits)
		assert.Empty(t, res.Hits)
	})

	t.Run("Match Offsets", func(t *testing.T) {
		res, err := s.Search(ctx, query.Concat(tok("word", "quick"), tok("word", "brown")), 0)
		require.NoError(t, err)
		require.Equal(t, 1, res.TotalHits)
		require.Len(t, res.Hits, 1)
		assert.Equal(t, []domain.Match{{Start: 1, End: 3}}, res.Hits[0].Matches)
	})

	t.Run("Token Alternation", func(t *testing.T) {
		c := query.OrConstraint{Left: query.Field("lemma", "fox"), Right: query.Field("lemma", "dog")}
		res, err := s.Search(ctx, query.TokenSurface{Constraint: c}, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, res.TotalHits)
	})

	t.Run("Repetition", func(t *testing.T) {
		p := query.Concat(query.RepeatSurface{Inner: tok("tag", "JJ"), Min: 1, Max: query.Unbounded}, tok("tag", "NN"))
		res, err := s.Search(ctx, p, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalHits)
	})

	t.Run("Lookbehind Probe", func(t *testing.T) {
		p := query.Probe([]query.Surface{tok("word", "quick")}, query.WildcardSurface{}, nil)
		res, err := s.Search(ctx, p, 0)
		require.NoError(t, err)
		require.Equal(t, 2, res.TotalHits)
		for _, h := range res.Hits {
			assert.Equal(t, []domain.Match{{Start: 2, End: 3}}, h.Matches)
		}
	})

	t.Run("Lookahead Probe", func(t *testing.T) {
		p := query.Probe(nil, query.WildcardSurface{}, []query.Surface{tok("word", "fox")})
		res, err := s.Search(ctx, p, 0)
		require.NoError(t, err)
		require.Equal(t, 2, res.TotalHits)
		for _, h := range res.Hits {
			assert.Equal(t, []domain.Match{{Start: 2, End: 3}}, h.Matches)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Search(cctx, tok("word", "fox"), 0)
		assert.Error(t, err)
	})
}

// RunCorpusContract runs a suite of tests to verify that a Corpus
// implementation holding ContractDocuments adheres to the port contract.
func RunCorpusContract(t *testing.T, c Corpus) {
	ctx := context.Background()

	t.Run("Get Document", func(t *testing.T) {
		doc, err := c.GetDocument(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "d1", doc.ID)
		assert.Len(t, doc.Sentences, 2)
	})

	t.Run("Missing Document Is Fatal", func(t *testing.T) {
		_, err := c.GetDocument(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrCorpusInconsistent)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Get Sentence", func(t *testing.T) {
		s, err := c.GetSentence(ctx, domain.Locator{DocID: "d2", SentenceIndex: 1})
		require.NoError(t, err)
		assert.Equal(t, 7, s.NumTokens)
		v, err := s.Token("word", 0)
		require.NoError(t, err)
		assert.Equal(t, "Brown", v)
	})

	t.Run("Sentence Out Of Range", func(t *testing.T) {
		_, err := c.GetSentence(ctx, domain.Locator{DocID: "d2", SentenceIndex: 9})
		assert.ErrorIs(t, err, domain.ErrCorpusInconsistent)
	})

	t.Run("Random Document", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			doc, err := c.RandomDocument(ctx, rng)
			require.NoError(t, err)
			seen[doc.ID] = true
		}
		assert.Equal(t, map[string]bool{"d1": true, "d2": true}, seen)
	})
}

func stripLucene(l domain.Locator) domain.Locator {
	l.LuceneDoc = 0
	return l
}
