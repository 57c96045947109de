/*
Package rulesmith generates random token-level surface rules that are
guaranteed to match an indexed corpus.

A rule starts as the literal token constraints of a short span in a random
sentence. The generator then mutates it at two levels. At the constraint
level a token test may be negated, widened with an alternative value read
from another matching sentence, or narrowed with a second field of a
matching token. At the sequence level tokens may be replaced by
alternatives, merged or quantified. Every mutation is checked against the
search index and kept only if the rule still matches and the number of
matching sentences actually changed.

# Usage

	cfg, err := config.Load("rulesmith.yaml")
	if err != nil {
		log.Fatal(err)
	}

	gen, err := rulesmith.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer gen.Close()

	rule, err := gen.GenerateWith(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rule) // e.g. [lemma=dog] [tag=VBZ | word=ran]

# Backends

By default the index is reached through its REST API (pkg/adapters/http),
optionally behind a Redis result cache (pkg/adapters/redis), and documents
are read from a sharded directory of gzip JSON files (pkg/adapters/file).
Any ports.Searcher and ports.Corpus can be injected instead, such as the
in-memory backend in pkg/adapters/memory.

# Batch runs

Generator.Runner wires generation into a bounded loop that filters
degenerate rules, collects up to num_matches sentences per accepted rule and
writes one JSON record per rule through a ports.RuleSink.
*/
package rulesmith
