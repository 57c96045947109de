package mutation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/rulesmith/internal/testutils"
	"github.com/aretw0/rulesmith/internal/validator"
	"github.com/aretw0/rulesmith/pkg/adapters/memory"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/aretw0/rulesmith/pkg/weighted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// script makes the engine pick labels in order whenever the table being
// sampled contains the next label. Other draws stay random.
func script(e *Engine, labels ...string) {
	fallback := e.choose
	var mu sync.Mutex
	e.choose = func(t weighted.Table) string {
		mu.Lock()
		defer mu.Unlock()
		if len(labels) > 0 {
			if _, ok := t[labels[0]]; ok {
				l := labels[0]
				labels = labels[1:]
				return l
			}
		}
		return fallback(t)
	}
}

type outcomes struct {
	mu  sync.Mutex
	got []string
}

func (o *outcomes) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(_ context.Context, e *domain.MutationEvent) {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.got = append(o.got, e.Action+":"+string(e.Outcome))
		},
	}
}

func newTestEngine(t *testing.T, s ports.Searcher, c ports.Corpus, opts ...Option) *Engine {
	t.Helper()
	e, err := New(s, c, append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, err)
	return e
}

func fox() query.Constraint { return query.Field("word", "fox") }

func TestFieldConstraints_SeedSpan(t *testing.T) {
	sentence := testutils.Sentence(t, "The quick brown fox", "the quick brown fox", "DT JJ JJ NN")
	corpus := memory.NewCorpus(domain.Document{ID: "seed", Sentences: []domain.Sentence{*sentence}})
	e := newTestEngine(t, memory.NewSearcher(corpus), corpus)

	for i := 0; i < 20; i++ {
		cs, err := e.fieldConstraints(sentence, domain.Span{Start: 1, Stop: 3})
		require.NoError(t, err)
		require.Len(t, cs, 2)

		assert.Contains(t, []string{"word=quick", "lemma=quick", "tag=JJ"}, cs[0].String())
		assert.Contains(t, []string{"word=brown", "lemma=brown", "tag=JJ"}, cs[1].String())

		res, err := e.search(context.Background(), query.Concat(query.Wrap(cs)...), 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalHits, 1)
	}
}

func TestMutateConstraints_NotThenStop(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	var seen outcomes
	e := newTestEngine(t, searcher, corpus, WithHooks(seen.hooks()))
	script(e, ActionNot, ActionStop)

	got, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	require.NoError(t, err)
	assert.Equal(t, []query.Constraint{query.NotConstraint{Inner: fox()}}, got)
	assert.Equal(t, []string{"not:accepted"}, seen.got)
}

func TestMutateConstraints_NotRejectedWhenCountUnchanged(t *testing.T) {
	sentence := testutils.Sentence(t, "fox runs", "", "")
	corpus := memory.NewCorpus(domain.Document{ID: "d", Sentences: []domain.Sentence{*sentence}})
	var seen outcomes
	e := newTestEngine(t, memory.NewSearcher(corpus), corpus, WithHooks(seen.hooks()))
	script(e, ActionNot, ActionStop)

	got, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	require.NoError(t, err)
	assert.Equal(t, []query.Constraint{fox()}, got)
	assert.Equal(t, []string{"not:rejected"}, seen.got)
}

func TestMutateConstraints_NoDoubleNegation(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	e := newTestEngine(t, searcher, new(testutils.MockCorpus))
	script(e, ActionNot, ActionStop)

	negated := []query.Constraint{query.NotConstraint{Inner: fox()}}
	got, err := e.mutateConstraints(context.Background(), negated, 0)
	require.NoError(t, err)
	assert.Equal(t, negated, got)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutateConstraints_OrReadsProbeHit(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	corpus := new(testutils.MockCorpus)
	loc := domain.Locator{DocID: "d9", SentenceIndex: 2}

	searcher.On("Search", mock.Anything, "[]", 100).Return(&domain.SearchResult{
		TotalHits: 1,
		Hits:      []domain.Hit{{Locator: loc, Matches: []domain.Match{{Start: 1, End: 2}}}},
	}, nil).Once()
	searcher.On("Search", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, " | ")
	}), 1).Return(testutils.Result(5), nil).Once()
	searcher.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(2), nil).Once()
	corpus.On("GetSentence", mock.Anything, loc).Return(testutils.Sentence(t, "a cat sat", "", ""), nil).Once()

	e := newTestEngine(t, searcher, corpus)
	script(e, ActionOr, "word", ActionStop)

	got, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	or, ok := got[0].(query.OrConstraint)
	require.True(t, ok, "expected an or constraint, got %T", got[0])
	assert.ElementsMatch(t, []string{"word=fox", "word=cat"}, []string{or.Left.String(), or.Right.String()})

	searcher.AssertExpectations(t)
	corpus.AssertExpectations(t)
}

func TestMutateConstraints_OrAbandonedWithoutHits(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	searcher.On("Search", mock.Anything, "[]", 100).Return(testutils.Result(0), nil).Once()
	var seen outcomes
	e := newTestEngine(t, searcher, new(testutils.MockCorpus), WithHooks(seen.hooks()))
	script(e, ActionOr, ActionStop)

	got, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	require.NoError(t, err)
	assert.Equal(t, []query.Constraint{fox()}, got)
	assert.Equal(t, []string{"or:abandoned"}, seen.got)
	searcher.AssertExpectations(t)
}

func TestMutateConstraints_AndNarrowsFromMatchingToken(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	e := newTestEngine(t, searcher, corpus)
	script(e, ActionAnd, "word", ActionStop)

	jj := query.Field("tag", "JJ")
	got, err := e.mutateConstraints(context.Background(), []query.Constraint{jj}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	and, ok := got[0].(query.AndConstraint)
	require.True(t, ok, "expected an and constraint, got %T", got[0])
	sides := []string{and.Left.String(), and.Right.String()}
	assert.Contains(t, sides, "tag=JJ")
	assert.True(t, strings.HasPrefix(sides[0], "word=") || strings.HasPrefix(sides[1], "word="))
}

func TestMutateConstraints_IterationCap(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	cfg := DefaultConfig()
	cfg.MaxIterations = 3
	var seen outcomes
	e := newTestEngine(t, searcher, corpus, WithConfig(cfg), WithHooks(seen.hooks()))
	e.choose = func(t weighted.Table) string {
		if _, ok := t[ActionNot]; ok {
			return ActionNot
		}
		return weighted.Choice(e.rng, t)
	}

	got, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	require.NoError(t, err)
	assert.Equal(t, []query.Constraint{query.NotConstraint{Inner: fox()}}, got)
	assert.Equal(t, []string{"not:accepted", "not:rejected", "not:rejected", "stop:capped"}, seen.got)
}

func TestMutateSurface_ConcatAlwaysAccepted(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	e := newTestEngine(t, searcher, new(testutils.MockCorpus))
	script(e, ActionConcat, ActionStop)

	nodes := query.Wrap([]query.Constraint{fox(), query.Field("tag", "NN"), query.Field("lemma", "run")})
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	require.Len(t, got, len(nodes)-1)

	var concats int
	for _, n := range got {
		if _, ok := n.(query.ConcatSurface); ok {
			concats++
		}
	}
	assert.Equal(t, 1, concats)
	assert.Equal(t, query.Concat(nodes...).String(), query.Concat(got...).String())
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutateSurface_ConcatNeedsTwoNodes(t *testing.T) {
	var seen outcomes
	e := newTestEngine(t, new(testutils.MockSearcher), new(testutils.MockCorpus), WithHooks(seen.hooks()))
	script(e, ActionConcat, ActionStop)

	nodes := query.Wrap([]query.Constraint{fox()})
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
	assert.Equal(t, []string{"concat:rejected"}, seen.got)
}

func TestMutateSurface_NoNestedRepeat(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	e := newTestEngine(t, searcher, new(testutils.MockCorpus))
	script(e, ActionQuantifier, ActionStop)

	nodes := []query.Surface{query.RepeatSurface{Inner: query.TokenSurface{Constraint: fox()}, Min: 0, Max: 1}}
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutateSurface_Quantifier(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	e := newTestEngine(t, searcher, corpus)
	script(e, ActionQuantifier, "?", ActionStop)

	nodes := query.Wrap([]query.Constraint{query.Field("tag", "DT"), query.Field("tag", "JJ")})
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	var repeats int
	for _, n := range got {
		if r, ok := n.(query.RepeatSurface); ok {
			repeats++
			assert.Equal(t, 0, r.Min)
			assert.Equal(t, 1, r.Max)
		}
	}
	assert.Equal(t, 1, repeats)
}

func TestMutateSurface_OrDepthCap(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	cfg := DefaultConfig()
	cfg.MaxDepth = 0
	var seen outcomes
	e := newTestEngine(t, searcher, new(testutils.MockCorpus), WithConfig(cfg), WithHooks(seen.hooks()))
	script(e, ActionOr, ActionStop)

	nodes := query.Wrap([]query.Constraint{fox()})
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
	assert.Equal(t, []string{"or:rejected"}, seen.got)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestMutateSurface_OrAbandonedWithoutHits(t *testing.T) {
	searcher := new(testutils.MockSearcher)
	searcher.On("Search", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "[]{1,5}")
	}), 100).Return(testutils.Result(0), nil).Once()
	var seen outcomes
	e := newTestEngine(t, searcher, new(testutils.MockCorpus), WithHooks(seen.hooks()))
	script(e, ActionOr, ActionStop)

	nodes := query.Wrap([]query.Constraint{fox(), query.Field("tag", "NN")})
	got, err := e.mutateSurface(context.Background(), nodes, 0)
	require.NoError(t, err)
	assert.Equal(t, nodes, got)
	assert.Equal(t, []string{"or:abandoned"}, seen.got)
	searcher.AssertExpectations(t)
}

func TestGenerate_Invariants(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	ctx := context.Background()

	for seed := int64(1); seed <= 40; seed++ {
		e, err := New(searcher, corpus, WithSeed(seed))
		require.NoError(t, err)

		rule, err := e.Generate(ctx, Seed{})
		require.NoError(t, err, "seed %d", seed)
		require.NotNil(t, rule)

		assert.NoError(t, validator.CheckInvariants(rule), "seed %d: %s", seed, rule)

		res, err := searcher.Search(ctx, rule, 1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalHits, 1, "seed %d: %s", seed, rule)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()

	run := func() string {
		e, err := New(searcher, corpus, WithSeed(99))
		require.NoError(t, err)
		rule, err := e.Generate(context.Background(), Seed{})
		require.NoError(t, err)
		return rule.String()
	}
	assert.Equal(t, run(), run())
}

func TestGenerate_SeedErrors(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	e := newTestEngine(t, searcher, corpus)
	ctx := context.Background()

	t.Run("span without sentence", func(t *testing.T) {
		_, err := e.Generate(ctx, Seed{Span: &domain.Span{Start: 0, Stop: 1}})
		assert.ErrorIs(t, err, domain.ErrSpanWithoutSentence)
	})

	t.Run("span outside sentence", func(t *testing.T) {
		s := testutils.Sentence(t, "a b", "", "")
		_, err := e.Generate(ctx, Seed{Sentence: s, Span: &domain.Span{Start: 1, Stop: 4}})
		assert.ErrorIs(t, err, domain.ErrInvalidSpan)
	})

	t.Run("span longer than the maximum", func(t *testing.T) {
		s := testutils.Sentence(t, "a b c d e f g", "", "")
		_, err := e.Generate(ctx, Seed{Sentence: s, Span: &domain.Span{Start: 0, Stop: 6}})
		assert.ErrorIs(t, err, domain.ErrInvalidSpan)
	})

	t.Run("document without eligible sentence", func(t *testing.T) {
		short := testutils.Sentence(t, "too short", "", "")
		_, err := e.Generate(ctx, Seed{Document: &domain.Document{ID: "x", Sentences: []domain.Sentence{*short}}})
		assert.ErrorIs(t, err, domain.ErrNoEligibleSentence)
	})
}

func TestGenerate_CanceledContext(t *testing.T) {
	corpus, searcher := testutils.FixtureBackend()
	e := newTestEngine(t, searcher, corpus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := testutils.Sentence(t, "The quick brown fox", "", "")
	_, err := e.Generate(ctx, Seed{Sentence: s})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_CorpusInconsistencyIsFatal(t *testing.T) {
	corpus := new(testutils.MockCorpus)
	broken := errors.Join(domain.ErrCorpusInconsistent, domain.ErrAmbiguousDocument)
	corpus.On("RandomDocument", mock.Anything).Return(nil, broken)

	e := newTestEngine(t, new(testutils.MockSearcher), corpus)
	_, err := e.Generate(context.Background(), Seed{})
	assert.ErrorIs(t, err, domain.ErrCorpusInconsistent)
}

func TestMutateConstraints_SearchFailure(t *testing.T) {
	corpus, _ := testutils.FixtureBackend()
	searcher := new(testutils.MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything, 1).Return(nil, assert.AnError)

	e := newTestEngine(t, searcher, corpus)
	script(e, ActionNot)

	_, err := e.mutateConstraints(context.Background(), []query.Constraint{fox()}, 0)
	assert.ErrorIs(t, err, domain.ErrSearchFailed)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRandomSpan_Bounds(t *testing.T) {
	e := newTestEngine(t, new(testutils.MockSearcher), new(testutils.MockCorpus))

	for _, n := range []int{1, 2, 4, 10} {
		for i := 0; i < 200; i++ {
			span := e.randomSpan(n)
			assert.GreaterOrEqual(t, span.Start, 0)
			if n > 1 {
				assert.Less(t, span.Start, n-1)
			}
			assert.NoError(t, span.Validate(n, e.config.MaxSpanLength))
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero span length", func(c *Config) { c.MaxSpanLength = 0 }},
		{"zero iterations", func(c *Config) { c.MaxIterations = 0 }},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"empty fields", func(c *Config) { c.Fields = nil }},
		{"negative weight", func(c *Config) { c.Quantifiers["?"] = -1 }},
		{"missing stop", func(c *Config) { c.SurfaceActions = c.SurfaceActions.Without(ActionStop) }},
		{"unknown action", func(c *Config) { c.ConstraintActions["xor"] = 1 }},
		{"unknown quantifier", func(c *Config) { c.Quantifiers["{2}"] = 1 }},
	}

	assert.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
