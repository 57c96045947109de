package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
)

// DefaultDeadline bounds each generation and each result collection.
const DefaultDeadline = 5 * time.Second

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithNumQueries sets how many rules the runner tries to generate.
func WithNumQueries(n int) Option {
	return func(r *Runner) {
		r.NumQueries = n
	}
}

// WithNumMatches caps how many matching sentences are saved per rule.
func WithNumMatches(n int) Option {
	return func(r *Runner) {
		r.NumMatches = n
	}
}

// WithWorkers sets how many queries run at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.Workers = n
	}
}

// WithTimeLimit sets the deadline of a single generation and of its result collection.
func WithTimeLimit(d time.Duration) Option {
	return func(r *Runner) {
		r.Deadline = d
	}
}

// WithFilter replaces the final rule filter.
func WithFilter(filter func(query.Surface) error) Option {
	return func(r *Runner) {
		r.Filter = filter
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHooks registers lifecycle callbacks for finished generations.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}
