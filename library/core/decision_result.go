package core

// DecisionResult represents the outcome of a business decision in a Decide function.
// R is the record the decision produces, e.g. the Book to register or the Loan to create.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// SuccessDecision(value) or ErrorDecision(err).
type DecisionResult[R any] struct {
	Outcome string // "success" or "error"
	Value   R      // zero value for error decisions
	Err     error
}

const (
	successOutcome = "success"
	errorOutcome   = "error"
)

// SuccessDecision creates a DecisionResult indicating a state change that should be persisted.
func SuccessDecision[R any](value R) DecisionResult[R] {
	return DecisionResult[R]{
		Outcome: successOutcome,
		Value:   value,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision[R any](err error) DecisionResult[R] {
	return DecisionResult[R]{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult[R]) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}

// IsSuccess reports whether the decision produced a value to persist.
func (r DecisionResult[R]) IsSuccess() bool {
	return r.Outcome == successOutcome
}
