package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

const (
	metricLoadDuration         = "recordstore_load_duration_seconds"
	metricSaveDuration         = "recordstore_save_duration_seconds"
	metricConcurrencyConflicts = "recordstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "recordstore_database_errors_total"
	spanNameLoad               = "recordstore.load"
	spanNameSave               = "recordstore.save"
	spanAttrOperation          = "operation"
	spanAttrKey                = "record_key"
	spanAttrExpectedRevision   = "expected_revision"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	operationLoad              = "load"
	operationSave              = "save"
	statusSuccess              = "success"
	statusError                = "error"
	statusConflict             = "conflict"
	errorTypeBuildQuery        = "build_query"
	errorTypeDatabase          = "database"
	errorTypeScan              = "scan"
	errorTypeRowsAffected      = "rows_affected"
	errorTypeCanceled          = "canceled"
	errorTypeTimeout           = "timeout"
)

// operationObserver bundles the span and metrics bookkeeping of one load or save.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	span      recordstore.SpanContext
	operation string
	metric    string
	start     time.Time
}

func (s *Store) startLoadObservation(ctx context.Context, key string) (*operationObserver, context.Context) {
	return s.startObservation(ctx, spanNameLoad, operationLoad, metricLoadDuration, map[string]string{
		spanAttrOperation: operationLoad,
		spanAttrKey:       key,
	})
}

func (s *Store) startSaveObservation(
	ctx context.Context,
	key string,
	expectedRevision recordstore.RevisionUint,
) (*operationObserver, context.Context) {

	return s.startObservation(ctx, spanNameSave, operationSave, metricSaveDuration, map[string]string{
		spanAttrOperation:        operationSave,
		spanAttrKey:              key,
		spanAttrExpectedRevision: fmt.Sprintf("%d", expectedRevision),
	})
}

func (s *Store) startObservation(
	ctx context.Context,
	spanName string,
	operation string,
	metric string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	var span recordstore.SpanContext
	if s.tracingCollector != nil {
		ctx, span = s.tracingCollector.StartSpan(ctx, spanName, attrs)
	}

	return &operationObserver{
		s:         s,
		ctx:       ctx,
		span:      span,
		operation: operation,
		metric:    metric,
		start:     time.Now(),
	}, ctx
}

func (o *operationObserver) finishSuccess(duration time.Duration) {
	o.s.recordDuration(o.ctx, o.metric, duration, o.operation, statusSuccess)
	o.finishSpan(statusSuccess, map[string]string{spanAttrDurationMS: formatMilliseconds(duration)})
}

func (o *operationObserver) finishConflict(duration time.Duration) {
	o.s.recordDuration(o.ctx, o.metric, duration, o.operation, statusConflict)
	o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{spanAttrOperation: o.operation})
	o.finishSpan(statusConflict, map[string]string{spanAttrDurationMS: formatMilliseconds(duration)})
}

func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.start)
	o.s.recordDuration(o.ctx, o.metric, duration, o.operation, statusError)
	o.s.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})
	o.finishSpan(statusError, map[string]string{spanAttrErrorType: errorType})
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string) {
	if o.s.tracingCollector == nil || o.span == nil {
		return
	}

	o.s.tracingCollector.FinishSpan(o.span, status, attrs)
}

// recordDuration records a duration metric, preferring the context-aware method when available.
func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric, preferring the context-aware method when available.
func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(recordstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// classifyError maps a driver error to a low-cardinality label.
func classifyError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errorTypeTimeout
	default:
		return errorTypeDatabase
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(d))
}
