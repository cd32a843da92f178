// Package oteladapters provides OpenTelemetry implementations of the recordstore observability
// interfaces (Logger bridge, ContextualLogger, MetricsCollector, TracingCollector).
//
// The library desk service uses the same interfaces, so one set of adapters instruments both
// the store engines and the desk operations.
package oteladapters
