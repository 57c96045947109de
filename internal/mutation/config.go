package mutation

import (
	"fmt"

	"github.com/aretw0/rulesmith/pkg/weighted"
)

// Action labels understood by the constraint and surface walks.
const (
	ActionOr         = "or"
	ActionAnd        = "and"
	ActionNot        = "not"
	ActionConcat     = "concat"
	ActionQuantifier = "quantifier"
	ActionStop       = "stop"
)

// Config holds the sampling tables and limits of an Engine.
type Config struct {
	MaxSpanLength     int
	NumMatches        int
	MinSentenceTokens int
	MaxIterations     int
	MaxDepth          int

	Fields            weighted.Table
	ConstraintActions weighted.Table
	SurfaceActions    weighted.Table
	Quantifiers       weighted.Table
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxSpanLength:     5,
		NumMatches:        100,
		MinSentenceTokens: 3,
		MaxIterations:     64,
		MaxDepth:          3,
		Fields: weighted.Table{
			"lemma": 2,
			"word":  1,
			"tag":   2,
		},
		ConstraintActions: weighted.Table{
			ActionOr:   1,
			ActionAnd:  1,
			ActionNot:  1,
			ActionStop: 1,
		},
		SurfaceActions: weighted.Table{
			ActionOr:         1,
			ActionConcat:     1,
			ActionQuantifier: 1,
			ActionStop:       1,
		},
		Quantifiers: weighted.Table{
			"?": 1,
			"*": 1,
			"+": 1,
		},
	}
}

var (
	constraintActions = map[string]bool{ActionOr: true, ActionAnd: true, ActionNot: true, ActionStop: true}
	surfaceActions    = map[string]bool{ActionOr: true, ActionConcat: true, ActionQuantifier: true, ActionStop: true}
	quantifierSymbols = map[string]bool{"?": true, "*": true, "+": true}
)

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.MaxSpanLength < 1:
		return fmt.Errorf("max span length must be at least 1, got %d", c.MaxSpanLength)
	case c.NumMatches < 1:
		return fmt.Errorf("num matches must be at least 1, got %d", c.NumMatches)
	case c.MinSentenceTokens < 0:
		return fmt.Errorf("min sentence tokens must not be negative, got %d", c.MinSentenceTokens)
	case c.MaxIterations < 1:
		return fmt.Errorf("max iterations must be at least 1, got %d", c.MaxIterations)
	case c.MaxDepth < 0:
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}

	tables := []struct {
		name    string
		table   weighted.Table
		allowed map[string]bool
		stop    bool
	}{
		{"fields", c.Fields, nil, false},
		{"constraint actions", c.ConstraintActions, constraintActions, true},
		{"surface actions", c.SurfaceActions, surfaceActions, true},
		{"quantifiers", c.Quantifiers, quantifierSymbols, false},
	}
	for _, tt := range tables {
		if err := tt.table.Validate(); err != nil {
			return fmt.Errorf("%s: %w", tt.name, err)
		}
		for k := range tt.table {
			if tt.allowed != nil && !tt.allowed[k] {
				return fmt.Errorf("%s: unknown label %q", tt.name, k)
			}
		}
		if _, ok := tt.table[ActionStop]; tt.stop && !ok {
			return fmt.Errorf("%s: a %q action is required", tt.name, ActionStop)
		}
	}
	return nil
}
