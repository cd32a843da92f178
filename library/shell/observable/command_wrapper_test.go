package observable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
	"github.com/AntonStoeckl/library-desk-go/library/shell/observable"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
	"github.com/AntonStoeckl/library-desk-go/testutil/observability/testdoubles"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type stubCommandHandler struct {
	value  string
	result shell.HandlerResult
	err    error
}

func (h stubCommandHandler) Handle(_ context.Context, _ testCommand) (string, shell.HandlerResult, error) {
	return h.value, h.result, h.err
}

func Test_CommandWrapper_Success(t *testing.T) {
	// arrange
	wrapper, metrics, tracing, logger := givenCommandWrapper(t, stubCommandHandler{
		value:  "done",
		result: shell.HandlerResult{RetryAttempts: 1, LastErrorType: "none"},
	})

	// act
	value, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "done", value)

	calls := metrics.CounterRecords(shell.CommandCallsMetric)
	require.Len(t, calls, 1)
	assert.Equal(t, shell.BuildCommandLabels("TestCommand", shell.StatusSuccess), calls[0].Labels)
	assert.Len(t, metrics.DurationRecords(shell.CommandDurationMetric), 1)
	assert.Empty(t, metrics.DurationRecords(shell.CommandRetryDelayMetric))

	spans := tracing.SpansNamed(shell.SpanNameCommandHandle)
	require.Len(t, spans, 1)
	assert.Equal(t, shell.StatusSuccess, spans[0].Status)
	assert.NotEmpty(t, spans[0].Attrs[shell.LogAttrCorrelationID])

	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_CorrelationIDIsSharedAndFresh(t *testing.T) {
	wrapper, _, _, logger := givenCommandWrapper(t, stubCommandHandler{})

	_, _ = wrapper.Handle(context.Background(), testCommand{})
	_, _ = wrapper.Handle(context.Background(), testCommand{})

	infos := logger.Records("info")
	require.Len(t, infos, 4)

	first, _ := infos[0].Attr(shell.LogAttrCorrelationID)
	firstDone, _ := infos[1].Attr(shell.LogAttrCorrelationID)
	second, _ := infos[2].Attr(shell.LogAttrCorrelationID)

	assert.Equal(t, first, firstDone)
	assert.NotEqual(t, first, second)
}

func Test_CommandWrapper_Outcomes(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus string
		expectedMetric string
		expectErrorLog bool
	}{
		{
			name:           "domain error",
			err:            core.NewDomainError(core.KindAlreadyLent, "978-1", "book is already lent"),
			expectedStatus: shell.StatusRejected,
			expectedMetric: shell.CommandRejectedMetric,
		},
		{
			name:           "conflict after retries",
			err:            recordstore.ErrConcurrencyConflict,
			expectedStatus: shell.StatusConcurrencyConflict,
			expectedMetric: shell.CommandConcurrencyConflictMetric,
			expectErrorLog: true,
		},
		{
			name:           "canceled",
			err:            context.Canceled,
			expectedStatus: shell.StatusCanceled,
			expectedMetric: shell.CommandCanceledMetric,
			expectErrorLog: true,
		},
		{
			name:           "timeout",
			err:            context.DeadlineExceeded,
			expectedStatus: shell.StatusTimeout,
			expectedMetric: shell.CommandTimeoutMetric,
			expectErrorLog: true,
		},
		{
			name:           "infrastructure error",
			err:            errors.New("disk full"),
			expectedStatus: shell.StatusError,
			expectedMetric: shell.CommandCallsMetric,
			expectErrorLog: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapper, metrics, tracing, logger := givenCommandWrapper(t, stubCommandHandler{err: tc.err})

			_, err := wrapper.Handle(context.Background(), testCommand{})

			assert.ErrorIs(t, err, tc.err)
			assert.Len(t, metrics.CounterRecords(tc.expectedMetric), 1)
			assert.Equal(t, tc.expectedStatus, tracing.SpansNamed(shell.SpanNameCommandHandle)[0].Status)
			assert.Equal(t, tc.expectErrorLog, logger.HasErrorLog(shell.LogMsgCommandFailed))
			assert.Equal(t, !tc.expectErrorLog, logger.HasInfoLog(shell.LogMsgCommandRejected))
		})
	}
}

func Test_CommandWrapper_RecordsRetryDelay(t *testing.T) {
	wrapper, metrics, _, _ := givenCommandWrapper(t, stubCommandHandler{
		result: shell.HandlerResult{RetryAttempts: 3, TotalRetryDelay: 30 * time.Millisecond},
	})

	_, err := wrapper.Handle(context.Background(), testCommand{})

	require.NoError(t, err)
	delays := metrics.DurationRecords(shell.CommandRetryDelayMetric)
	require.Len(t, delays, 1)
	assert.Equal(t, 30*time.Millisecond, delays[0].Duration)
}

func Test_CommandWrapper_WithoutObservability(t *testing.T) {
	wrapper, err := observable.NewCommandWrapper[testCommand, string](stubCommandHandler{value: "plain"})
	require.NoError(t, err)

	value, err := wrapper.Handle(context.Background(), testCommand{})

	require.NoError(t, err)
	assert.Equal(t, "plain", value)
}

func givenCommandWrapper(t *testing.T, handler stubCommandHandler) (
	*observable.CommandWrapper[testCommand, string],
	*testdoubles.MetricsCollectorSpy,
	*testdoubles.TracingCollectorSpy,
	*testdoubles.ContextualLoggerSpy,
) {
	t.Helper()

	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handler,
		observable.WithCommandMetrics[testCommand, string](metrics),
		observable.WithCommandTracing[testCommand, string](tracing),
		observable.WithCommandContextualLogging[testCommand, string](logger),
	)
	require.NoError(t, err)

	return wrapper, metrics, tracing, logger
}
