// Package config loads the library desk configuration and builds the infrastructure it names.
//
// Values come from the defaults, then an optional YAML file, then LIBRARYDESK_* environment
// variables, then command-line flags; each layer overrides the previous one.
//
// Besides parsing, this package contains factory functions for the PostgreSQL connections
// (pgx.Pool, sql.DB, sqlx.DB), the OpenTelemetry providers and the slog logger.
package config
