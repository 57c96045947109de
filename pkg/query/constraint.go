package query

import (
	"regexp"
	"strings"
)

// Pattern is any node that renders to the index pattern syntax.
type Pattern interface {
	String() string
}

// Matcher compares a single token field value.
type Matcher interface {
	Pattern
	Matches(value string) bool
}

// ExactMatcher matches a field value verbatim.
type ExactMatcher struct {
	Value string
}

var identifierRe = regexp.MustCompile(`^[\pL_][\pL\pN_]*$`)

// Matches reports whether value equals the matcher's value.
func (m ExactMatcher) Matches(value string) bool {
	return m.Value == value
}

// String renders the value bare when it is an identifier, quoted otherwise.
func (m ExactMatcher) String() string {
	if identifierRe.MatchString(m.Value) {
		return m.Value
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range m.Value {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// Constraint is a predicate over the fields of one token.
type Constraint interface {
	Pattern
	precedence() int
}

const (
	precOr = iota + 1
	precAnd
	precNot
	precAtom
)

// FieldConstraint requires the named field to satisfy Value.
type FieldConstraint struct {
	Name  string
	Value Matcher
}

// Field builds an exact-match equality constraint.
func Field(name, value string) FieldConstraint {
	return FieldConstraint{Name: name, Value: ExactMatcher{Value: value}}
}

func (c FieldConstraint) String() string { return c.Name + "=" + c.Value.String() }
func (FieldConstraint) precedence() int { return precAtom }

// NotConstraint negates its inner constraint.
type NotConstraint struct {
	Inner Constraint
}

func (c NotConstraint) String() string { return "!" + group(c.Inner, precNot) }
func (NotConstraint) precedence() int { return precNot }

// AndConstraint requires both operands.
type AndConstraint struct {
	Left, Right Constraint
}

func (c AndConstraint) String() string {
	return group(c.Left, precAnd) + " & " + group(c.Right, precAnd)
}
func (AndConstraint) precedence() int { return precAnd }

// OrConstraint requires either operand.
type OrConstraint struct {
	Left, Right Constraint
}

func (c OrConstraint) String() string {
	return c.Left.String() + " | " + c.Right.String()
}
func (OrConstraint) precedence() int { return precOr }

// WildcardConstraint accepts any token.
type WildcardConstraint struct{}

func (WildcardConstraint) String() string { return "" }
func (WildcardConstraint) precedence() int { return precAtom }

func group(c Constraint, floor int) string {
	if c.precedence() < floor {
		return "(" + c.String() + ")"
	}
	return c.String()
}
