// Package availability implements the Book Availability query use case.
//
// A book is available when it is registered and no active loan references it.
// An unregistered ISBN is reported as not available; it is not an error.
package availability
