// Package core contains the domain model of the library desk:
// books on the shelf, loans to students, and the rules that connect them.
//
// Everything in here is pure. The types carry no persistence concerns and the
// helpers never perform I/O, so the Decide functions in the feature packages can
// be tested with plain slices.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
