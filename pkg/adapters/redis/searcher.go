package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces cached search results.
const DefaultPrefix = "rulesmith:search:"

// CachedSearcher is a read-through cache in front of another ports.Searcher.
// Redis failures are logged and the request falls through to the backing
// searcher.
type CachedSearcher struct {
	client *backend.Client
	next   ports.Searcher
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*CachedSearcher)

// WithTTL sets the expiration for cached results. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *CachedSearcher) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached results.
func WithPrefix(prefix string) Option {
	return func(s *CachedSearcher) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *CachedSearcher) {
		s.logger = l
	}
}

// New connects to Redis and wraps next.
func New(address, password string, db int, next ports.Searcher, opts ...Option) *CachedSearcher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, next, opts...)
}

// NewFromClient wraps next using an existing client.
func NewFromClient(client *backend.Client, next ports.Searcher, opts ...Option) *CachedSearcher {
	s := &CachedSearcher{
		client: client,
		next:   next,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CachedSearcher) key(pattern string, maxHits int) string {
	if maxHits < 0 {
		maxHits = 0
	}
	return s.prefix + strconv.Itoa(maxHits) + ":" + pattern
}

// Search returns the cached result for (pattern, maxHits) or asks the
// backing searcher and stores its answer. Errors are never cached.
func (s *CachedSearcher) Search(ctx context.Context, pattern query.Pattern, maxHits int) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.key(pattern.String(), maxHits)

	val, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res domain.SearchResult
		if err := json.Unmarshal(val, &res); err == nil {
			return &res, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "key", key)
	case errors.Is(err, backend.Nil):
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("search cache read failed", "key", key, "err", err)
	}

	res, err := s.next.Search(ctx, pattern, maxHits)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("search cache encode failed", "key", key, "err", err)
		return res, nil
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("search cache write failed", "key", key, "err", err)
	}
	return res, nil
}

// Close releases the Redis connection.
func (s *CachedSearcher) Close() error {
	return s.client.Close()
}
