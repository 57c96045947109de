/*
Package query models token-level surface rules as immutable trees.

A rule is a Surface: a pattern over a token sequence built from TokenSurface
(one token satisfying a Constraint), WildcardSurface, ConcatSurface, OrSurface
and RepeatSurface. Constraints are predicates over the fields of a single
token (word, lemma, tag, ...).

Every node renders to the pattern syntax understood by the search index via
String(). Nodes are plain comparable values: rewriting a rule always builds a
new tree and never edits an existing one.

	rule := query.Concat(
		query.TokenSurface{Constraint: query.Field("lemma", "quick")},
		query.RepeatSurface{Inner: query.WildcardSurface{}, Min: 0, Max: query.Unbounded},
	)
	fmt.Println(rule) // [lemma=quick] []*
*/
package query
