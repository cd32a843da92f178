// Package bookshelf implements the Bookshelf query use case.
//
// The query returns the most recently registered books together with their availability,
// projected from a single load of the books and the loans. The desk front page renders it.
package bookshelf
