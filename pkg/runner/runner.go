package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/internal/validator"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateFunc produces one rule.
type GenerateFunc func(ctx context.Context) (query.Surface, error)

// Runner generates a batch of rules and saves the ones that match something.
type Runner struct {
	// Generate produces candidate rules, usually against a small corpus.
	Generate GenerateFunc

	// Searcher and Corpus serve result collection, usually the full corpus.
	Searcher ports.Searcher
	Corpus   ports.Corpus

	// Sink receives every accepted rule with its matches.
	Sink ports.RuleSink

	NumQueries int
	NumMatches int
	Workers    int
	Deadline   time.Duration

	// Filter rejects finished rules. Defaults to validator.Accept.
	Filter func(query.Surface) error

	Logger *slog.Logger
	Hooks  domain.LifecycleHooks
}

// Summary counts what happened to every query of a run.
type Summary struct {
	Generated int `json:"generated"`
	Filtered  int `json:"filtered"`
	Timeouts  int `json:"timeouts"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
	Saved     int `json:"saved"`
}

type counters struct {
	generated, filtered, timeouts, empty, failed, saved atomic.Int64
}

func (c *counters) summary() Summary {
	return Summary{
		Generated: int(c.generated.Load()),
		Filtered:  int(c.filtered.Load()),
		Timeouts:  int(c.timeouts.Load()),
		Empty:     int(c.empty.Load()),
		Failed:    int(c.failed.Load()),
		Saved:     int(c.saved.Load()),
	}
}

// NewRunner creates a runner with one query, one worker and the default deadline.
func NewRunner(generate GenerateFunc, searcher ports.Searcher, corpus ports.Corpus, sink ports.RuleSink, opts ...Option) *Runner {
	r := &Runner{
		Generate:   generate,
		Searcher:   searcher,
		Corpus:     corpus,
		Sink:       sink,
		NumQueries: 1,
		NumMatches: 100,
		Workers:    1,
		Deadline:   DefaultDeadline,
		Filter:     validator.Accept,
		Logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes NumQueries independent queries. Timeouts, filtered rules and
// rules without matches are counted and skipped. Corpus inconsistencies and
// the end of ctx stop the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var c counters

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i := 0; i < r.NumQueries; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.runOne(gctx, i, &c)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	s := c.summary()
	r.Logger.Info("Run finished",
		"generated", s.Generated, "saved", s.Saved, "filtered", s.Filtered,
		"timeouts", s.Timeouts, "empty", s.Empty, "failed", s.Failed)
	return s, err
}

func (r *Runner) runOne(ctx context.Context, i int, c *counters) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := r.Logger.With("query", fmt.Sprintf("%d/%d", i+1, r.NumQueries))
	start := time.Now()

	finish := func(rule query.Surface, outcome domain.GenerationOutcome) {
		ev := &domain.GenerationEvent{Timestamp: time.Now(), Outcome: outcome, Duration: time.Since(start)}
		if rule != nil {
			ev.Rule = rule.String()
		}
		r.Hooks.EmitGeneration(ctx, ev)
	}

	log.Debug("Generating random query")
	rule, err := WithDeadline(ctx, r.Deadline, func(ctx context.Context) (query.Surface, error) {
		return r.Generate(ctx)
	})
	if err != nil {
		return r.skip(ctx, log, c, err, func(o domain.GenerationOutcome) { finish(nil, o) })
	}
	c.generated.Add(1)
	log = log.With("rule", rule.String())

	if err := r.Filter(rule); err != nil {
		c.filtered.Add(1)
		log.Info("Query rejected", "err", err)
		finish(rule, domain.GenerationFiltered)
		return nil
	}

	rec, err := WithDeadline(ctx, r.Deadline, func(ctx context.Context) (*domain.RuleRecord, error) {
		return r.collect(ctx, rule)
	})
	if err != nil {
		return r.skip(ctx, log, c, err, func(o domain.GenerationOutcome) { finish(rule, o) })
	}
	if rec.NumMatches == 0 {
		c.empty.Add(1)
		log.Info("Query matched no sentences")
		finish(rule, domain.GenerationEmpty)
		return nil
	}

	if err := r.Sink.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rec.ID, err)
	}
	c.saved.Add(1)
	log.Info("Query saved", "id", rec.ID, "matches", rec.NumMatches)
	finish(rule, domain.GenerationSucceeded)
	return nil
}

// skip classifies err: timeouts and ordinary failures are counted and the
// run goes on, while cancellation and corpus inconsistency are returned.
func (r *Runner) skip(ctx context.Context, log *slog.Logger, c *counters, err error, finish func(domain.GenerationOutcome)) error {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		c.timeouts.Add(1)
		log.Info("Query timed out")
		finish(domain.GenerationTimedOut)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, domain.ErrCorpusInconsistent):
		finish(domain.GenerationFailed)
		return err
	default:
		c.failed.Add(1)
		log.Warn("Query failed", "err", err)
		finish(domain.GenerationFailed)
		return nil
	}
}

// collect searches rule and reads back the words of every matching sentence.
func (r *Runner) collect(ctx context.Context, rule query.Surface) (*domain.RuleRecord, error) {
	res, err := r.Searcher.Search(ctx, rule, r.NumMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to collect results: %w", err)
	}

	rec := &domain.RuleRecord{
		ID:        uuid.NewString(),
		Rule:      rule.String(),
		TotalHits: res.TotalHits,
		CreatedAt: time.Now().UTC(),
	}
	for _, hit := range res.Hits {
		s, err := r.Corpus.GetSentence(ctx, hit.Locator)
		if err != nil {
			return nil, err
		}
		rec.Sentences = append(rec.Sentences, domain.RecordSentence{
			Locator: hit.Locator,
			Words:   s.Fields["word"],
			Matches: hit.Matches,
		})
	}
	rec.NumMatches = len(rec.Sentences)
	return rec, nil
}
