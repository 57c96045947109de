package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/rulesmith/pkg/query"
)

// GenerateMermaid produces a Mermaid flowchart of a rule tree, root first.
// It applies semantic styling:
// - Token: [[Subroutine]]
// - Field test: ([Stadium])
// - Alternation: {{Hexagon}}
// - Repetition and negation: [/Parallelogram/]
// - Lookaround: ((Circle))
// - Default: [Rectangle]
func GenerateMermaid(rule query.Pattern) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if rule == nil {
		return sb.String()
	}
	w := &writer{sb: &sb}
	w.node(rule)
	return sb.String()
}

type writer struct {
	sb   *strings.Builder
	next int
}

// node writes p and its children, returning p's Mermaid ID.
func (w *writer) node(p query.Pattern) string {
	id := fmt.Sprintf("n%d", w.next)
	w.next++

	opener, closer := "[", "]"
	label := ""
	var children []query.Pattern

	switch n := p.(type) {
	case query.TokenSurface:
		opener, closer = "[[", "]]"
		label = "token"
		if _, ok := n.Constraint.(query.WildcardConstraint); ok {
			label = "any token"
		} else {
			children = append(children, n.Constraint)
		}
	case query.WildcardSurface:
		opener, closer = "[[", "]]"
		label = "any token"
	case query.ConcatSurface:
		label = "sequence"
		children = append(children, n.Left, n.Right)
	case query.OrSurface:
		opener, closer = "{{", "}}"
		label = "or"
		children = append(children, n.Left, n.Right)
	case query.RepeatSurface:
		opener, closer = "[/", "/]"
		label = "repeat " + n.Quantifier()
		children = append(children, n.Inner)
	case query.LookbehindSurface:
		opener, closer = "((", "))"
		label = "preceded by"
		children = append(children, n.Inner)
	case query.LookaheadSurface:
		opener, closer = "((", "))"
		label = "followed by"
		children = append(children, n.Inner)
	case query.FieldConstraint:
		opener, closer = "([", "])"
		label = n.String()
	case query.NotConstraint:
		opener, closer = "[/", "/]"
		label = "not"
		children = append(children, n.Inner)
	case query.AndConstraint:
		label = "and"
		children = append(children, n.Left, n.Right)
	case query.OrConstraint:
		opener, closer = "{{", "}}"
		label = "or"
		children = append(children, n.Left, n.Right)
	case query.WildcardConstraint:
		label = "any"
	default:
		label = p.String()
	}

	fmt.Fprintf(w.sb, "    %s%s\"%s\"%s\n", id, opener, sanitizeLabel(label), closer)
	for _, c := range children {
		childID := w.node(c)
		fmt.Fprintf(w.sb, "    %s --> %s\n", id, childID)
	}
	return id
}

func sanitizeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
