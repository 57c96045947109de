package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	mutations      *prometheus.CounterVec
	generations    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulesmith_search_total",
				Help: "Total number of index searches",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rulesmith_search_duration_seconds",
				Help:    "Duration of index searches",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulesmith_mutations_total",
				Help: "Total number of sampled mutation steps",
			},
			[]string{"level", "action", "outcome"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulesmith_generations_total",
				Help: "Total number of finished generation attempts",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.searches, m.searchDuration, m.mutations, m.generations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSearch: func(_ context.Context, e *domain.SearchEvent) {
			outcome := "ok"
			switch {
			case e.Err != nil:
				outcome = "error"
			case e.TotalHits == 0:
				outcome = "empty"
			}
			m.searches.WithLabelValues(outcome).Inc()
			m.searchDuration.Observe(e.Duration.Seconds())
		},
		OnMutation: func(_ context.Context, e *domain.MutationEvent) {
			m.mutations.WithLabelValues(string(e.Level), e.Action, string(e.Outcome)).Inc()
		},
		OnGeneration: func(_ context.Context, e *domain.GenerationEvent) {
			m.generations.WithLabelValues(string(e.Outcome)).Inc()
		},
	}
}

// LogHooks returns lifecycle hooks that log every search and generation.
// Mutation steps are already logged at debug level by the engine.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSearch: func(ctx context.Context, e *domain.SearchEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "search_failed", "pattern", e.Pattern, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "search",
				"pattern", e.Pattern,
				"max_hits", e.MaxHits,
				"total_hits", e.TotalHits,
				"duration", e.Duration,
			)
		},
		OnGeneration: func(ctx context.Context, e *domain.GenerationEvent) {
			logger.InfoContext(ctx, "generation",
				"outcome", e.Outcome,
				"rule", e.Rule,
				"duration", e.Duration,
			)
		},
	}
}
