package domain

import (
	"context"
	"time"
)

// MutationLevel tells whether a mutation rewrote a token constraint or the token sequence.
type MutationLevel string

const (
	LevelConstraint MutationLevel = "constraint"
	LevelSurface    MutationLevel = "surface"
)

// MutationOutcome is what happened to one sampled mutation.
type MutationOutcome string

const (
	OutcomeAccepted  MutationOutcome = "accepted"  // Committed to the rule
	OutcomeRejected  MutationOutcome = "rejected"  // Oracle or invariant said no
	OutcomeAbandoned MutationOutcome = "abandoned" // Probe found no alternatives
	OutcomeCapped    MutationOutcome = "capped"    // Iteration or depth cap reached
)

// GenerationOutcome is the terminal result of one generation attempt.
type GenerationOutcome string

const (
	GenerationSucceeded GenerationOutcome = "succeeded"
	GenerationTimedOut  GenerationOutcome = "timeout"
	GenerationFiltered  GenerationOutcome = "filtered"
	GenerationEmpty     GenerationOutcome = "empty"
	GenerationFailed    GenerationOutcome = "failed"
)

// SearchEvent describes one round trip to the search index.
type SearchEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Pattern   string        `json:"pattern"`
	MaxHits   int           `json:"max_hits"`
	TotalHits int           `json:"total_hits"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// MutationEvent describes one sampled mutation step.
type MutationEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Level     MutationLevel   `json:"level"`
	Action    string          `json:"action"`
	Outcome   MutationOutcome `json:"outcome"`
	Depth     int             `json:"depth"`
}

// GenerationEvent describes the end of one generation attempt.
type GenerationEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Rule      string            `json:"rule,omitempty"`
	Outcome   GenerationOutcome `json:"outcome"`
	Duration  time.Duration     `json:"duration"`
}

// LifecycleHooks defines callbacks for generator observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnSearch     func(context.Context, *SearchEvent)
	OnMutation   func(context.Context, *MutationEvent)
	OnGeneration func(context.Context, *GenerationEvent)
}

// EmitSearch invokes OnSearch when set.
func (h LifecycleHooks) EmitSearch(ctx context.Context, e *SearchEvent) {
	if h.OnSearch != nil {
		h.OnSearch(ctx, e)
	}
}

// EmitMutation invokes OnMutation when set.
func (h LifecycleHooks) EmitMutation(ctx context.Context, e *MutationEvent) {
	if h.OnMutation != nil {
		h.OnMutation(ctx, e)
	}
}

// EmitGeneration invokes OnGeneration when set.
func (h LifecycleHooks) EmitGeneration(ctx context.Context, e *GenerationEvent) {
	if h.OnGeneration != nil {
		h.OnGeneration(ctx, e)
	}
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSearch: func(ctx context.Context, e *SearchEvent) {
			h.EmitSearch(ctx, e)
			other.EmitSearch(ctx, e)
		},
		OnMutation: func(ctx context.Context, e *MutationEvent) {
			h.EmitMutation(ctx, e)
			other.EmitMutation(ctx, e)
		},
		OnGeneration: func(ctx context.Context, e *GenerationEvent) {
			h.EmitGeneration(ctx, e)
			other.EmitGeneration(ctx, e)
		},
	}
}
