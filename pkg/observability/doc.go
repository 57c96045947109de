/*
Package observability turns rule generation lifecycle events into Prometheus
metrics and structured log lines.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, so they can be
combined with LifecycleHooks.Merge and passed to the engine and the runner.
*/
package observability
