// Package recordstore provides the core abstractions of a small revisioned
// key-value store for JSON documents.
//
// Each key holds exactly one JSON document (typically a JSON array of records)
// together with a revision. The revision is handed out by Load and must be
// handed back to Save, which lets engines detect that a document was changed
// by somebody else in between (optimistic concurrency).
//
// Key types:
//   - StorableCollection: a JSON document plus the key and revision it was loaded with
//   - RevisionUint: the revision of a document, 0 means "no document stored yet"
//
// Engines live in sub-packages:
//   - fileengine: one file per key in a local directory (the default desk profile)
//   - memengine: process memory only
//   - postgresengine: one row per key in a PostgreSQL table
//
// Common usage pattern:
//
//	collection, err := store.Load(ctx, "books")
//	if err != nil {
//		// handle error
//	}
//
//	updated, err := recordstore.BuildStorableCollection("books", newPayloadJSON)
//	if err != nil {
//		// handle error
//	}
//
//	err = store.Save(ctx, updated, collection.Revision)
//	if errors.Is(err, recordstore.ErrConcurrencyConflict) {
//		// reload, decide again, retry
//	}
package recordstore
