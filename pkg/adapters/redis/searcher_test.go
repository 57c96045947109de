package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/rulesmith/internal/testutils"
	"github.com/aretw0/rulesmith/pkg/adapters/redis"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

var fox = query.TokenSurface{Constraint: query.Field("word", "fox")}

func TestCachedSearcher_Contract(t *testing.T) {
	_, client := setup(t)
	_, inner := testutils.FixtureBackend()

	s := redis.NewFromClient(client, inner)
	ports.RunSearcherContract(t, s)

	// Second pass is served from the cache and must agree.
	ports.RunSearcherContract(t, s)
}

func TestCachedSearcher_ReadThrough(t *testing.T) {
	mr, client := setup(t)
	inner := new(testutils.MockSearcher)
	want := &domain.SearchResult{
		TotalHits: 3,
		Hits: []domain.Hit{{
			Locator: domain.Locator{DocID: "d1", SentenceIndex: 2},
			Matches: []domain.Match{{Start: 0, End: 1}},
		}},
	}
	inner.On("Search", mock.Anything, "[word=fox]", 10).Return(want, nil).Once()

	s := redis.NewFromClient(client, inner, redis.WithPrefix("test:"))
	ctx := context.Background()

	first, err := s.Search(ctx, fox, 10)
	require.NoError(t, err)
	second, err := s.Search(ctx, fox, 10)
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.True(t, mr.Exists("test:10:[word=fox]"))
	inner.AssertExpectations(t)
}

func TestCachedSearcher_KeyIncludesMaxHits(t *testing.T) {
	_, client := setup(t)
	inner := new(testutils.MockSearcher)
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(1), nil).Once()
	inner.On("Search", mock.Anything, "[word=fox]", 5).Return(testutils.Result(1), nil).Once()

	s := redis.NewFromClient(client, inner)
	for _, n := range []int{1, 5, 1, 5} {
		_, err := s.Search(context.Background(), fox, n)
		require.NoError(t, err)
	}
	inner.AssertExpectations(t)
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	mr, client := setup(t)
	inner := new(testutils.MockSearcher)
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(nil, assert.AnError).Once()
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(4), nil).Once()

	s := redis.NewFromClient(client, inner)
	_, err := s.Search(context.Background(), fox, 1)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, mr.Keys())

	res, err := s.Search(context.Background(), fox, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalHits)
}

func TestCachedSearcher_TTL(t *testing.T) {
	mr, client := setup(t)
	inner := new(testutils.MockSearcher)
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(2), nil).Twice()

	s := redis.NewFromClient(client, inner, redis.WithTTL(time.Second))
	ctx := context.Background()

	_, err := s.Search(ctx, fox, 1)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	_, err = s.Search(ctx, fox, 1)
	require.NoError(t, err)

	inner.AssertExpectations(t)
}

func TestCachedSearcher_RedisDown(t *testing.T) {
	mr, client := setup(t)
	inner := new(testutils.MockSearcher)
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(2), nil)

	s := redis.NewFromClient(client, inner)
	mr.Close()

	res, err := s.Search(context.Background(), fox, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalHits)
}

func TestCachedSearcher_CorruptEntry(t *testing.T) {
	mr, client := setup(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"1:[word=fox]", "{garbage"))

	inner := new(testutils.MockSearcher)
	inner.On("Search", mock.Anything, "[word=fox]", 1).Return(testutils.Result(6), nil).Once()

	s := redis.NewFromClient(client, inner)
	res, err := s.Search(context.Background(), fox, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalHits)
}
