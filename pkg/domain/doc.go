/*
Package domain contains the core value types shared by the rule generator and
its collaborators.

It defines the corpus entities read by the engine (Document, Sentence, Span),
the shape of search results returned by the index (SearchResult, Hit, Match,
Locator), the sentinel errors used across adapters, and the lifecycle hooks
used for observability. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Sentence: An ordered token sequence; each token carries named fields (word, lemma, tag).
  - Span: A half-open token interval [Start, Stop) within one sentence.
  - SearchResult: Total hit count plus the hits returned for a capped query.
  - Locator: Identifies the sentence a hit belongs to.
*/
package domain
