package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()

	hooks.EmitSearch(ctx, &domain.SearchEvent{TotalHits: 3, Duration: time.Millisecond})
	hooks.EmitSearch(ctx, &domain.SearchEvent{TotalHits: 0})
	hooks.EmitSearch(ctx, &domain.SearchEvent{Err: errors.New("down")})
	hooks.EmitMutation(ctx, &domain.MutationEvent{Level: domain.LevelConstraint, Action: "not", Outcome: domain.OutcomeAccepted})
	hooks.EmitMutation(ctx, &domain.MutationEvent{Level: domain.LevelConstraint, Action: "not", Outcome: domain.OutcomeAccepted})
	hooks.EmitGeneration(ctx, &domain.GenerationEvent{Outcome: domain.GenerationTimedOut})

	count, err := testutil.GatherAndCount(reg, "rulesmith_search_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one series per outcome")

	expected := `
# HELP rulesmith_mutations_total Total number of sampled mutation steps
# TYPE rulesmith_mutations_total counter
rulesmith_mutations_total{action="not",level="constraint",outcome="accepted"} 2
# HELP rulesmith_generations_total Total number of finished generation attempts
# TYPE rulesmith_generations_total counter
rulesmith_generations_total{outcome="timeout"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected),
		"rulesmith_mutations_total", "rulesmith_generations_total"))
}

func TestNewMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(logging.NewWithWriter(&buf, slog.LevelDebug))
	ctx := context.Background()

	hooks.EmitSearch(ctx, &domain.SearchEvent{Pattern: "[word=fox]", TotalHits: 2})
	hooks.EmitSearch(ctx, &domain.SearchEvent{Pattern: "[]", Err: errors.New("down")})
	hooks.EmitGeneration(ctx, &domain.GenerationEvent{Outcome: domain.GenerationSucceeded, Rule: "[word=fox]"})
	hooks.EmitMutation(ctx, &domain.MutationEvent{Action: "not"})

	out := buf.String()
	assert.Contains(t, out, "total_hits=2")
	assert.Contains(t, out, "search_failed")
	assert.Contains(t, out, "err=down")
	assert.Contains(t, out, "outcome=succeeded")
}
