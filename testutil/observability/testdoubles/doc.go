// Package testdoubles provides spies for the recordstore observability interfaces.
//
//   - ContextualLoggerSpy: captures context-aware log calls
//   - MetricsCollectorSpy: captures durations, counters and values
//   - TracingCollectorSpy: captures started and finished spans
//
// The spies are safe for concurrent use, so they can sit behind code that retries.
package testdoubles
