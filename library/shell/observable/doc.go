// Package observable provides wrappers that instrument command and query handlers
// with metrics, tracing and logging while keeping the handlers free of those concerns.
//
// The wrappers are applied externally at wiring time:
//
//	coreHandler := lendbook.NewCommandHandler(records)
//
//	lendBook, err := observable.NewCommandWrapper[lendbook.Command, core.Loan](
//		coreHandler,
//		observable.WithCommandMetrics[lendbook.Command, core.Loan](metricsCollector),
//		observable.WithCommandTracing[lendbook.Command, core.Loan](tracingCollector),
//		observable.WithCommandContextualLogging[lendbook.Command, core.Loan](contextualLogger),
//	)
//
//	loan, err := lendBook.Handle(ctx, command)
//
// Every Handle call gets a fresh correlation ID, which is attached to all log lines and to the span.
// Business rule rejections (core.DomainError) are recorded with the status "rejected",
// not as failures.
package observable
