// Package mutation implements the rule mutation engine.
//
// An Engine turns a seed (a sentence and a span, or nothing) into a surface
// rule by first reading a literal constraint off each token of the span and
// then running two random walks: one rewriting individual token
// constraints, one rewriting the token sequence. Every step that changes
// semantics is kept only when the corpus says the new rule still matches
// something and matches a different number of sentences than before.
package mutation
