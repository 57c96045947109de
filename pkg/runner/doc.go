/*
Package runner bounds rule generation in time and drives batch runs.

WithDeadline runs any context-aware call under a wall-clock deadline and
gives up on it as soon as the deadline passes, whether or not the call
notices its context. Runner builds on it: it asks a generator for a rule,
filters degenerate rules, collects the sentences an accepted rule matches
and hands the record to a sink.

# Usage

	r := runner.NewRunner(engine.Generate, searcher, corpus, sink,
		runner.WithNumQueries(10),
		runner.WithWorkers(4),
		runner.WithLogger(logger),
	)

	summary, err := r.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
