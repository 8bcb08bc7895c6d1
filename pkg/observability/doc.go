/*
Package observability provides tools for monitoring the macrograph engine.

Metrics exposes Prometheus collectors fed by the engine's lifecycle hooks and by an
instrumented Host wrapper, so every macro run, node evaluation and scene call is counted.
*/
package observability
