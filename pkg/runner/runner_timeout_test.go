package runner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDeadline_SlowCallTimesOut(t *testing.T) {
	start := time.Now()
	v, err := runner.WithDeadline(context.Background(), time.Second, func(context.Context) (string, error) {
		time.Sleep(10 * time.Second)
		return "late", nil
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Empty(t, v)
	assert.GreaterOrEqual(t, elapsed, time.Second)
	assert.Less(t, elapsed, 1500*time.Millisecond)
}

func TestWithDeadline_FastCallCancelsTimer(t *testing.T) {
	var inner context.Context
	start := time.Now()
	v, err := runner.WithDeadline(context.Background(), 5*time.Second, func(ctx context.Context) (int, error) {
		inner = ctx
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	// Released by the deferred cancel, not by the deadline.
	assert.ErrorIs(t, inner.Err(), context.Canceled)
}

func TestWithDeadline_CooperativeCall(t *testing.T) {
	_, err := runner.WithDeadline(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestWithDeadline_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.WithDeadline(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTimeout)
}

func TestWithDeadline_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	_, err := runner.WithDeadline(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithDeadline_NoDeadline(t *testing.T) {
	v, err := runner.WithDeadline(context.Background(), 0, func(ctx context.Context) (string, error) {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return "direct", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", v)
}
