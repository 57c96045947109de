package query

import "strconv"

// Unbounded is the RepeatSurface upper bound meaning "no limit".
const Unbounded = -1

// Surface is a pattern over a token sequence.
type Surface interface {
	Pattern
	surfacePrecedence() int
}

// TokenSurface matches one token satisfying Constraint.
type TokenSurface struct {
	Constraint Constraint
}

func (s TokenSurface) String() string { return "[" + s.Constraint.String() + "]" }
func (TokenSurface) surfacePrecedence() int { return precAtom }

// WildcardSurface matches any single token.
type WildcardSurface struct{}

func (WildcardSurface) String() string { return "[]" }
func (WildcardSurface) surfacePrecedence() int { return precAtom }

// ConcatSurface matches Left immediately followed by Right.
type ConcatSurface struct {
	Left, Right Surface
}

func (s ConcatSurface) String() string {
	return groupSurface(s.Left, precAnd) + " " + groupSurface(s.Right, precAnd)
}
func (ConcatSurface) surfacePrecedence() int { return precAnd }

// OrSurface matches either operand.
type OrSurface struct {
	Left, Right Surface
}

func (s OrSurface) String() string { return s.Left.String() + " | " + s.Right.String() }
func (OrSurface) surfacePrecedence() int { return precOr }

// RepeatSurface matches Inner between Min and Max times.
// Max is Unbounded for an open upper bound.
type RepeatSurface struct {
	Inner    Surface
	Min, Max int
}

func (s RepeatSurface) String() string {
	return groupSurface(s.Inner, precAtom) + s.Quantifier()
}

// Quantifier renders the repetition bounds in query syntax.
func (s RepeatSurface) Quantifier() string {
	switch {
	case s.Min == 0 && s.Max == 1:
		return "?"
	case s.Min == 0 && s.Max == Unbounded:
		return "*"
	case s.Min == 1 && s.Max == Unbounded:
		return "+"
	case s.Max == Unbounded:
		return "{" + strconv.Itoa(s.Min) + ",}"
	case s.Min == s.Max:
		return "{" + strconv.Itoa(s.Min) + "}"
	default:
		return "{" + strconv.Itoa(s.Min) + "," + strconv.Itoa(s.Max) + "}"
	}
}
func (RepeatSurface) surfacePrecedence() int { return precNot }

// LookbehindSurface is a zero-width assertion that Inner ends right here.
type LookbehindSurface struct {
	Inner Surface
}

func (s LookbehindSurface) String() string { return "(?<=" + s.Inner.String() + ")" }
func (LookbehindSurface) surfacePrecedence() int { return precAtom }

// LookaheadSurface is a zero-width assertion that Inner starts right here.
type LookaheadSurface struct {
	Inner Surface
}

func (s LookaheadSurface) String() string { return "(?=" + s.Inner.String() + ")" }
func (LookaheadSurface) surfacePrecedence() int { return precAtom }

func groupSurface(s Surface, floor int) string {
	if s.surfacePrecedence() < floor {
		return "(" + s.String() + ")"
	}
	return s.String()
}
