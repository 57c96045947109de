/*
Package ports defines the driven ports (interfaces) for the rule generator.

These interfaces decouple the mutation engine from the services it depends
on, allowing it to run against a remote search index, an on-disk corpus, or
the in-memory fixtures used in tests.

# Key Interfaces

  - Searcher: Executes a pattern against the index and returns hit counts and match offsets.
  - Corpus: Resolves hit locators to documents and sentences, and picks random documents.
  - RuleSink: Persists accepted rules together with the sentences they matched.
*/
package ports
