package overdueloans

import (
	"time"
)

const queryType = "OverdueLoans"

// Query asks for the loans that are overdue at AsOf.
// AsOf keeps its full precision, only persisted timestamps are truncated.
type Query struct {
	AsOf time.Time
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery(asOf time.Time) Query {
	return Query{AsOf: asOf}
}
