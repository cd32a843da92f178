// Package shell connects the pure library core to the outside world.
//
// Records is the only persistence boundary: it encodes Books and Loans into
// revisioned documents of a recordstore engine and decodes them back, tolerating
// missing and malformed data. The package also provides the retry loop used by
// command handlers to resolve revision conflicts, and the logging, metrics and
// tracing helpers shared by the handler wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
