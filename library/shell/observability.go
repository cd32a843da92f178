package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

const (
	// CommandDurationMetric tracks desk command execution duration.
	CommandDurationMetric = "desk_command_duration_seconds"

	// CommandCallsMetric tracks total desk command calls.
	CommandCallsMetric = "desk_command_calls_total"

	// CommandRejectedMetric tracks commands rejected by a business rule.
	CommandRejectedMetric = "desk_command_rejected_total"

	// CommandCanceledMetric tracks canceled commands.
	CommandCanceledMetric = "desk_command_canceled_total"

	// CommandTimeoutMetric tracks commands that hit their deadline.
	CommandTimeoutMetric = "desk_command_timeout_total"

	// CommandConcurrencyConflictMetric tracks commands that failed on a revision conflict after all retries.
	CommandConcurrencyConflictMetric = "desk_command_concurrency_conflicts_total"

	// CommandRetriesMetric tracks retry attempts in command handlers.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "LendBook")
	//   - attempt_number: Which retry attempt (1..5)
	//   - error_type: Category of error causing retry (e.g., "concurrency_conflict")
	CommandRetriesMetric = "desk_command_retries_total"

	// CommandRetryDelayMetric tracks backoff delays in command handlers.
	CommandRetryDelayMetric = "desk_command_retry_delay_seconds"

	// CommandMaxRetriesReachedMetric tracks when max retries are exhausted.
	CommandMaxRetriesReachedMetric = "desk_command_max_retries_reached_total"

	// QueryDurationMetric tracks desk query execution duration.
	QueryDurationMetric = "desk_query_duration_seconds"

	// QueryCallsMetric tracks total desk query calls.
	QueryCallsMetric = "desk_query_calls_total"

	// QueryCanceledMetric tracks canceled queries.
	QueryCanceledMetric = "desk_query_canceled_total"

	// QueryTimeoutMetric tracks queries that hit their deadline.
	QueryTimeoutMetric = "desk_query_timeout_total"

	// MalformedRecordsMetric tracks persisted entries that were skipped while decoding.
	MalformedRecordsMetric = "desk_malformed_records_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusRejected indicates a business rule rejected the command (a DomainError).
	StatusRejected = "rejected"

	// StatusError indicates an infrastructure error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to optimistic concurrency control.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "desk command started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "desk command completed"

	// LogMsgCommandRejected is logged when a business rule rejects a command.
	LogMsgCommandRejected = "desk command rejected"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "desk command failed"

	// LogMsgQueryStarted is logged when query processing begins.
	LogMsgQueryStarted = "desk query started"

	// LogMsgQueryCompleted is logged when query processing succeeds.
	LogMsgQueryCompleted = "desk query completed"

	// LogMsgQueryFailed is logged when query processing fails.
	LogMsgQueryFailed = "desk query failed"

	// LogMsgMalformedDocument is logged when a whole persisted document can't be decoded.
	LogMsgMalformedDocument = "malformed document treated as empty"

	// LogMsgMalformedEntries is logged when single persisted entries can't be decoded.
	LogMsgMalformedEntries = "malformed entries skipped"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"

	// LogAttrQueryType identifies the query type in logs.
	LogAttrQueryType = "query_type"

	// LogAttrStatus indicates the processing status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrErrorKind contains the kind of a DomainError.
	LogAttrErrorKind = "error_kind"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// LogAttrAttemptCount indicates how many attempts a command needed.
	LogAttrAttemptCount = "attempt_number"

	// LogAttrRecordKey identifies the persisted document.
	LogAttrRecordKey = "record_key"

	// LogAttrSkippedCount indicates how many entries were skipped.
	LogAttrSkippedCount = "skipped_count"

	// LogAttrCorrelationID identifies all log lines and spans of one desk operation.
	LogAttrCorrelationID = "correlation_id"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "desk.command"

	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "desk.query"
)

// Interface aliases for convenience when using handler observability.
// These match the recordstore observability interfaces, so one set of adapters serves both layers.

// MetricsCollector interface for collecting handler performance metrics.
type MetricsCollector = recordstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = recordstore.ContextualMetricsCollector

// TracingCollector interface for distributed tracing in handlers.
type TracingCollector = recordstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = recordstore.SpanContext

// ContextualLogger interface for context-aware logging in handlers.
type ContextualLogger = recordstore.ContextualLogger

// Logger interface for basic logging in handlers.
type Logger = recordstore.Logger

// BuildCommandLabels creates standard metric labels for command operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType:  commandType,
		LogAttrAttemptCount: strconv.Itoa(attemptNumber),
		"error_type":        errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ClassifyOutcome maps the error returned by a handler to one of the Status values.
func ClassifyOutcome(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case core.IsDomainError(err):
		return StatusRejected
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

// RecordCommandMetrics records all relevant metrics for a command operation.
// It handles both context-aware and basic metrics collectors automatically.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandCallsMetric, labels)

	switch status {
	case StatusRejected:
		incrementCounter(ctx, collector, CommandRejectedMetric, labels)
	case StatusCanceled:
		incrementCounter(ctx, collector, CommandCanceledMetric, labels)
	case StatusTimeout:
		incrementCounter(ctx, collector, CommandTimeoutMetric, labels)
	case StatusConcurrencyConflict:
		incrementCounter(ctx, collector, CommandConcurrencyConflictMetric, labels)
	}
}

// RecordQueryMetrics records all relevant metrics for a query operation.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, QueryCanceledMetric, labels)
	case StatusTimeout:
		incrementCounter(ctx, collector, QueryTimeoutMetric, labels)
	}
}

// StartCommandSpan starts a distributed tracing span for command operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
	correlationID string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrCommandType:   commandType,
		LogAttrCorrelationID: correlationID,
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, attrs)
}

// StartQuerySpan starts a distributed tracing span for query operations.
func StartQuerySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	queryType string,
	correlationID string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrQueryType:     queryType,
		LogAttrCorrelationID: correlationID,
	}

	return tracingCollector.StartSpan(ctx, SpanNameQueryHandle, attrs)
}

// FinishSpan completes a span started by StartCommandSpan or StartQuerySpan with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	if kind := core.KindOf(err); kind != "" {
		attrs[LogAttrErrorKind] = string(kind)
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	correlationID string,
) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandStarted,
		LogAttrCommandType, commandType,
		LogAttrCorrelationID, correlationID,
	)
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	correlationID string,
	duration time.Duration,
) {
	logInfo(ctx, logger, contextualLogger, LogMsgCommandCompleted,
		LogAttrCommandType, commandType,
		LogAttrCorrelationID, correlationID,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

// LogCommandError logs a failed command. Business rule rejections are expected outcomes and are logged at Info.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	correlationID string,
	err error,
) {
	if kind := core.KindOf(err); kind != "" {
		logInfo(ctx, logger, contextualLogger, LogMsgCommandRejected,
			LogAttrCommandType, commandType,
			LogAttrCorrelationID, correlationID,
			LogAttrErrorKind, string(kind),
		)

		return
	}

	args := []any{
		LogAttrCommandType, commandType,
		LogAttrCorrelationID, correlationID,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed, args...)
	}
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	correlationID string,
) {
	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgQueryStarted, LogAttrQueryType, queryType, LogAttrCorrelationID, correlationID)
	} else if logger != nil {
		logger.Debug(LogMsgQueryStarted, LogAttrQueryType, queryType, LogAttrCorrelationID, correlationID)
	}
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	correlationID string,
	duration time.Duration,
) {
	args := []any{
		LogAttrQueryType, queryType,
		LogAttrCorrelationID, correlationID,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgQueryCompleted, args...)
	} else if logger != nil {
		logger.Debug(LogMsgQueryCompleted, args...)
	}
}

// LogQueryError logs query processing errors.
func LogQueryError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	correlationID string,
	err error,
) {
	args := []any{
		LogAttrQueryType, queryType,
		LogAttrCorrelationID, correlationID,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgQueryFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgQueryFailed, args...)
	}
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to optimistic concurrency control failure.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, recordstore.ErrConcurrencyConflict)
}

func logInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

func logWarn(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.WarnContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Warn(msg, args...)
	}
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}
