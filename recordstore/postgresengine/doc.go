// Package postgresengine provides a PostgreSQL implementation of the recordstore engine contract.
//
// Every key is one row in a table (default "desk_records") holding the JSON document as jsonb
// and an integer revision. Saving with an expected revision is a single conditional statement:
// an INSERT ... ON CONFLICT DO NOTHING for the first write, an UPDATE ... WHERE revision = expected
// afterwards. Zero affected rows means somebody else saved in between (recordstore.ErrConcurrencyConflict).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Conditional writes with concurrency conflict detection
//   - Configurable table name, EnsureTable for first-time setup
//   - Logger, ContextualLogger, MetricsCollector and TracingCollector hooks
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db)
//	_ = store.EnsureTable(ctx)
//
//	// With a custom table and operational logging
//	store, _ := postgresengine.NewStoreFromSQLDB(
//		db,
//		postgresengine.WithTableName("library_records"),
//		postgresengine.WithLogger(logger),
//	)
//
//	collection, _ := store.Load(ctx, "books")
//	err := store.Save(ctx, updated, collection.Revision)
package postgresengine
