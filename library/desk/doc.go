// Package desk is the entry point for everything the library desk does.
//
// Service owns the book and loan collections through the Records repository and exposes the
// operations a view layer needs: register, lend, return, availability, overdue and recent books,
// and the advisory auto-registration proposal. Each mutation runs load, decide and save with
// a retry on revision conflicts. Business rule violations come back as *core.DomainError values.
package desk
