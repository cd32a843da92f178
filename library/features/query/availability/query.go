package availability

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

const queryType = "BookAvailability"

// Query asks whether the book with ISBN can be lent right now.
type Query struct {
	ISBN core.ISBNString
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query. Surrounding whitespace is removed from the ISBN.
func BuildQuery(isbn string) Query {
	return Query{ISBN: core.NormalizeInput(isbn)}
}
