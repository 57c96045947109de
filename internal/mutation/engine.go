package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/aretw0/rulesmith/pkg/weighted"
)

// Seed selects where a generated rule starts. A zero Seed draws a random
// sentence from the corpus. When Sentence is nil, Document narrows the draw
// to that document. Span requires Sentence.
type Seed struct {
	Sentence *domain.Sentence
	Span     *domain.Span
	Document *domain.Document
}

// Engine generates surface rules by search-verified random mutation.
// A single Engine may serve concurrent Generate calls.
type Engine struct {
	searcher ports.Searcher
	corpus   ports.Corpus
	config   Config
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	rng      *lockedRand

	// choose samples a label from a table. Tests replace it to script the walks.
	choose func(weighted.Table) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(e *Engine) {
		e.config = c
	}
}

// WithSeed makes the engine's random choices reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = newLockedRand(seed)
	}
}

// WithLogger sets the logger for mutation steps.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers lifecycle callbacks for searches and mutations.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an engine that queries searcher and reads tokens from corpus.
func New(searcher ports.Searcher, corpus ports.Corpus, opts ...Option) (*Engine, error) {
	e := &Engine{
		searcher: searcher,
		corpus:   corpus,
		config:   DefaultConfig(),
		logger:   logging.NewNop(),
		rng:      newLockedRand(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	e.choose = func(t weighted.Table) string { return weighted.Choice(e.rng, t) }
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Generate builds one rule from seed. It returns an error only when the
// context ends or the corpus cannot serve a request; rejected mutations are
// never errors.
func (e *Engine) Generate(ctx context.Context, seed Seed) (query.Surface, error) {
	return e.generate(ctx, seed, 0)
}

func (e *Engine) generate(ctx context.Context, seed Seed, depth int) (query.Surface, error) {
	sentence, span, err := e.resolveSeed(ctx, seed)
	if err != nil {
		return nil, err
	}

	constraints, err := e.fieldConstraints(sentence, span)
	if err != nil {
		return nil, err
	}
	constraints, err = e.mutateConstraints(ctx, constraints, depth)
	if err != nil {
		return nil, err
	}

	nodes, err := e.mutateSurface(ctx, query.Wrap(constraints), depth)
	if err != nil {
		return nil, err
	}

	rule := query.Concat(nodes...)
	e.logger.Debug("Rule generated", "rule", rule.String(), "depth", depth, "span_start", span.Start, "span_stop", span.Stop)
	return rule, nil
}

func (e *Engine) resolveSeed(ctx context.Context, seed Seed) (*domain.Sentence, domain.Span, error) {
	sentence := seed.Sentence
	if sentence == nil {
		if seed.Span != nil {
			return nil, domain.Span{}, domain.ErrSpanWithoutSentence
		}
		var err error
		sentence, err = e.randomSentence(ctx, seed.Document)
		if err != nil {
			return nil, domain.Span{}, err
		}
	}

	if seed.Span == nil {
		return sentence, e.randomSpan(sentence.NumTokens), nil
	}
	if err := seed.Span.Validate(sentence.NumTokens, e.config.MaxSpanLength); err != nil {
		return nil, domain.Span{}, err
	}
	return sentence, *seed.Span, nil
}

// randomSentence picks a sentence with more than MinSentenceTokens tokens.
// Without a document it keeps drawing random documents, up to MaxIterations,
// until one has an eligible sentence.
func (e *Engine) randomSentence(ctx context.Context, doc *domain.Document) (*domain.Sentence, error) {
	if doc != nil {
		idx := doc.EligibleSentences(e.config.MinSentenceTokens)
		if len(idx) == 0 {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNoEligibleSentence, doc.ID)
		}
		s := doc.Sentences[idx[e.rng.Intn(len(idx))]]
		return &s, nil
	}

	for i := 0; i < e.config.MaxIterations; i++ {
		d, err := e.corpus.RandomDocument(ctx, e.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to draw random document: %w", err)
		}
		s, err := e.randomSentence(ctx, d)
		if errors.Is(err, domain.ErrNoEligibleSentence) {
			continue
		}
		return s, err
	}
	return nil, fmt.Errorf("%w: gave up after %d documents", domain.ErrNoEligibleSentence, e.config.MaxIterations)
}

// randomSpan draws a start that is not the last token (when there is more
// than one) and a length in [1, MaxSpanLength], clipped to the sentence.
func (e *Engine) randomSpan(numTokens int) domain.Span {
	start := 0
	if numTokens > 1 {
		start = e.rng.Intn(numTokens - 1)
	}
	size := 1 + e.rng.Intn(e.config.MaxSpanLength)
	return domain.Span{Start: start, Stop: min(start+size, numTokens)}
}

// fieldConstraints reads one literal equality constraint per span token,
// each on a randomly drawn field.
func (e *Engine) fieldConstraints(s *domain.Sentence, span domain.Span) ([]query.Constraint, error) {
	out := make([]query.Constraint, 0, span.Len())
	for i := span.Start; i < span.Stop; i++ {
		c, err := e.literal(s, i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Engine) literal(s *domain.Sentence, i int) (query.Constraint, error) {
	name := e.choose(e.config.Fields)
	value, err := s.Token(name, i)
	if err != nil {
		return nil, fmt.Errorf("failed to read token %d: %w", i, err)
	}
	return query.Field(name, value), nil
}

func (e *Engine) coin() bool {
	return e.rng.Float64() < 0.5
}

func (e *Engine) emit(ctx context.Context, level domain.MutationLevel, action string, outcome domain.MutationOutcome, depth int) {
	e.logger.Debug("Mutation step", "level", level, "action", action, "outcome", outcome, "depth", depth)
	e.hooks.EmitMutation(ctx, &domain.MutationEvent{
		Timestamp: time.Now(),
		Level:     level,
		Action:    action,
		Outcome:   outcome,
		Depth:     depth,
	})
}

// lockedRand is a *rand.Rand safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// replaceAt returns a copy of items with items[i] set to v.
func replaceAt[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}
