// Package adapters hides the differences between pgx, database/sql and sqlx behind DBAdapter,
// so the postgres record store builds its SQL once and runs it on whichever driver the caller owns.
package adapters
