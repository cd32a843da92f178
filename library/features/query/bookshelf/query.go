package bookshelf

const queryType = "Bookshelf"

// Query asks for the most recently registered books and whether they can be lent.
// A Limit of zero or less means no limit.
type Query struct {
	Limit int
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery(limit int) Query {
	return Query{Limit: limit}
}
