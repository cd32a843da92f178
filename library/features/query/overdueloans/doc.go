// Package overdueloans implements the Overdue Loans query use case.
//
// The result lists every active loan whose due date lies before the reference time,
// in the order the loans were made. Entries are not deduplicated.
package overdueloans
