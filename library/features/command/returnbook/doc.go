// Package returnbook implements the Return Book use case.
//
// Returning a book closes its most recent active loan. The loan stays in the history,
// flagged as returned, so a book can be lent again and stops showing up as overdue.
package returnbook
