package bookshelf

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// BookInfo is a registered book and whether it is on the shelf right now.
type BookInfo struct {
	Book      core.Book
	Available bool
}

// Bookshelf is the query result, newest registration first.
type Bookshelf struct {
	Books []BookInfo
	Count int
}
