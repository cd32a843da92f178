package desk

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/library/shell"
)

// Option configures a Service.
type Option func(*Service) error

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now == nil {
			return ErrNilClock
		}

		s.now = now

		return nil
	}
}

// WithCatalog sets the catalog used by RegisterBookWithLookup and ResolveAutoRegistration.
// Without a catalog every lookup yields no result.
func WithCatalog(catalog CatalogLookup) Option {
	return func(s *Service) error {
		s.catalog = catalog
		return nil
	}
}

// WithStudents sets the directory used for display names.
func WithStudents(students core.StudentDirectory) Option {
	return func(s *Service) error {
		s.students = students
		return nil
	}
}

// WithLoanIDGenerator replaces the ULID generator for loan IDs.
func WithLoanIDGenerator(newID func() string) Option {
	return func(s *Service) error {
		if newID == nil {
			return ErrNilLoanIDGenerator
		}

		s.newLoanID = newID

		return nil
	}
}

// WithRetryOptions configures the conflict retry of all command handlers.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(s *Service) error {
		s.retryOptions = opts
		return nil
	}
}

// WithLogger sets the logger for command and query logging.
func WithLogger(logger shell.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over the plain one.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Service) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for command and query metrics.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(s *Service) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for command and query spans.
func WithTracing(collector shell.TracingCollector) Option {
	return func(s *Service) error {
		s.tracingCollector = collector
		return nil
	}
}

func newULID() string {
	return ulid.Make().String()
}
