package rulesmith

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/internal/mutation"
	"github.com/aretw0/rulesmith/internal/validator"
	"github.com/aretw0/rulesmith/pkg/adapters/file"
	rshttp "github.com/aretw0/rulesmith/pkg/adapters/http"
	"github.com/aretw0/rulesmith/pkg/adapters/redis"
	"github.com/aretw0/rulesmith/pkg/config"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/aretw0/rulesmith/pkg/runner"
)

// Generator is the high-level entry point for the library. It owns the
// search and corpus backends and hands out rules on demand.
type Generator struct {
	cfg      config.Config
	searcher ports.Searcher
	corpus   ports.Corpus
	engine   *mutation.Engine
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	closers  []func() error
}

// Option defines a functional option for configuring the Generator.
type Option func(*Generator)

// WithSearcher injects a search backend, bypassing the index client built
// from the configuration.
func WithSearcher(s ports.Searcher) Option {
	return func(g *Generator) {
		g.searcher = s
	}
}

// WithCorpus injects a document source, bypassing the file corpus built
// from the configuration.
func WithCorpus(c ports.Corpus) Option {
	return func(g *Generator) {
		g.corpus = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Generator) {
		g.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New builds a Generator from cfg. Backends not injected through options
// are created from cfg.Search, cfg.Redis and cfg.Corpus.
func New(cfg config.Config, opts ...Option) (*Generator, error) {
	g := &Generator{cfg: cfg.Clone()}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.NewNop()
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	if g.searcher == nil {
		s, closer := NewSearcher(g.cfg, g.logger)
		g.searcher = s
		if closer != nil {
			g.closers = append(g.closers, closer)
		}
	}
	if g.corpus == nil {
		c, err := NewCorpus(g.cfg, g.logger)
		if err != nil {
			return nil, err
		}
		g.corpus = c
	}

	engine, err := g.newEngine(g.cfg)
	if err != nil {
		return nil, err
	}
	g.engine = engine
	return g, nil
}

// NewSearcher builds the index client described by cfg.Search, wrapped in
// the Redis cache when cfg.Redis.Addr is set. The returned close function
// is nil when nothing needs releasing.
func NewSearcher(cfg config.Config, logger *slog.Logger) (ports.Searcher, func() error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var s ports.Searcher = rshttp.NewClient(cfg.Search.URL,
		rshttp.WithTimeout(cfg.Search.Timeout.Std()),
		rshttp.WithRateLimit(cfg.Search.RateLimit, cfg.Search.Burst),
		rshttp.WithClientLogger(logger),
	)
	if cfg.Redis.Addr == "" {
		return s, nil
	}
	cached := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, s,
		redis.WithTTL(cfg.Redis.TTL.Std()),
		redis.WithPrefix(cfg.Redis.Prefix),
		redis.WithLogger(logger),
	)
	return cached, cached.Close
}

// NewCorpus opens the sharded document directory described by cfg.Corpus.
func NewCorpus(cfg config.Config, logger *slog.Logger) (*file.Corpus, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Corpus.DocsDir == "" {
		return nil, fmt.Errorf("%w: corpus docs_dir is required", domain.ErrInvalidConfig)
	}
	opts := []file.Option{
		file.WithCacheTTL(cfg.Corpus.CacheTTL.Std()),
		file.WithLogger(logger),
	}
	if cfg.Corpus.LookupTable != "" {
		table, err := file.LoadLookupTable(cfg.Corpus.LookupTable)
		if err != nil {
			return nil, fmt.Errorf("failed to load lookup table: %w", err)
		}
		opts = append(opts, file.WithLookupTable(table))
	}
	return file.NewCorpus(cfg.Corpus.DocsDir, opts...), nil
}

func (g *Generator) newEngine(cfg config.Config) (*mutation.Engine, error) {
	opts := []mutation.Option{
		mutation.WithConfig(cfg.Engine()),
		mutation.WithLogger(g.logger),
		mutation.WithHooks(g.hooks),
	}
	if cfg.Seed != 0 {
		opts = append(opts, mutation.WithSeed(cfg.Seed))
	}
	engine, err := mutation.New(g.searcher, g.corpus, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return engine, nil
}

// Config returns the effective configuration.
func (g *Generator) Config() config.Config {
	return g.cfg.Clone()
}

// Searcher returns the search backend used for generation.
func (g *Generator) Searcher() ports.Searcher { return g.searcher }

// Corpus returns the document source used for generation.
func (g *Generator) Corpus() ports.Corpus { return g.corpus }

// Generate builds one rule from a random corpus sentence. It is not bounded
// by the configured deadline; see GenerateWith.
func (g *Generator) Generate(ctx context.Context) (query.Surface, error) {
	return g.engine.Generate(ctx, mutation.Seed{})
}

// GenerateFrom builds one rule seeded at span of sentence. A nil span picks
// a random one.
func (g *Generator) GenerateFrom(ctx context.Context, sentence *domain.Sentence, span *domain.Span) (query.Surface, error) {
	return g.engine.Generate(ctx, mutation.Seed{Sentence: sentence, Span: span})
}

// GenerateWith applies overrides to a copy of the configuration and builds
// one rule within the configured deadline. Overrides use the config file
// keys. It satisfies the HTTP and MCP adapters' GenerateFunc.
func (g *Generator) GenerateWith(ctx context.Context, overrides map[string]any) (query.Surface, error) {
	engine := g.engine
	deadline := g.cfg.Deadline.Std()
	if len(overrides) > 0 {
		cfg := g.cfg.Clone()
		if err := config.Decode(overrides, &cfg); err != nil {
			return nil, err
		}
		e, err := g.newEngine(cfg)
		if err != nil {
			return nil, err
		}
		engine, deadline = e, cfg.Deadline.Std()
	}
	return runner.WithDeadline(ctx, deadline, func(ctx context.Context) (query.Surface, error) {
		return engine.Generate(ctx, mutation.Seed{})
	})
}

// Runner returns an orchestration loop that generates with g and collects
// results from searcher and corpus, which may be a larger index than the
// one used for generation. Nil collectors fall back to g's own backends.
func (g *Generator) Runner(sink ports.RuleSink, searcher ports.Searcher, corpus ports.Corpus, opts ...runner.Option) *runner.Runner {
	if searcher == nil {
		searcher = g.searcher
	}
	if corpus == nil {
		corpus = g.corpus
	}
	base := []runner.Option{
		runner.WithNumQueries(g.cfg.NumQueries),
		runner.WithNumMatches(g.cfg.NumMatches),
		runner.WithWorkers(g.cfg.Workers),
		runner.WithTimeLimit(g.cfg.Deadline.Std()),
		runner.WithFilter(validator.Accept),
		runner.WithLogger(g.logger),
		runner.WithHooks(g.hooks),
	}
	return runner.NewRunner(g.Generate, searcher, corpus, sink, append(base, opts...)...)
}

// Close releases backend connections.
func (g *Generator) Close() error {
	var errs []error
	for _, c := range g.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

