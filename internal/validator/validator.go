package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/rulesmith/pkg/query"
)

// ErrDegenerateRule is returned by Accept for rules too loose to be useful.
var ErrDegenerateRule = errors.New("degenerate rule")

// Accept is the final filter applied to a finished rule. It rejects a
// top-level repetition that may match zero times (e.g. [word=car]?) and a
// lone negated field token (e.g. [!word=car]).
func Accept(rule query.Surface) error {
	switch n := rule.(type) {
	case nil:
		return fmt.Errorf("%w: empty rule", ErrDegenerateRule)
	case query.RepeatSurface:
		if n.Min == 0 {
			return fmt.Errorf("%w: %s may match nothing", ErrDegenerateRule, n)
		}
	case query.TokenSurface:
		if not, ok := n.Constraint.(query.NotConstraint); ok {
			if _, ok := not.Inner.(query.FieldConstraint); ok {
				return fmt.Errorf("%w: %s is a lone negated field", ErrDegenerateRule, n)
			}
		}
	}
	return nil
}

// CheckInvariants walks the whole rule and reports every double negation
// and every repetition directly wrapping another repetition.
func CheckInvariants(rule query.Pattern) error {
	var problems []string

	query.Walk(rule, func(p query.Pattern) bool {
		switch n := p.(type) {
		case query.NotConstraint:
			if _, ok := n.Inner.(query.NotConstraint); ok {
				problems = append(problems, fmt.Sprintf("double negation: %s", n))
			}
		case query.RepeatSurface:
			if _, ok := n.Inner.(query.RepeatSurface); ok {
				problems = append(problems, fmt.Sprintf("nested repetition: %s", n))
			}
		}
		return true
	})

	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
