package availability

import (
	"github.com/AntonStoeckl/library-desk-go/library/core"
)

// BookAvailability is the query result.
type BookAvailability struct {
	ISBN       core.ISBNString
	Registered bool
	Available  bool
}
