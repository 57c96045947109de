package ports

import (
	"context"

	"github.com/aretw0/rulesmith/pkg/domain"
)

// RuleSink persists accepted rules.
type RuleSink interface {
	Save(ctx context.Context, rec *domain.RuleRecord) error
}
