// Package snapshot persists the plain-cell state of a pebble Manager.
//
// A snapshot is one JSON document holding the values returned by
// Manager.Snapshot. Stores keep documents under a caller-chosen key:
//
//	store := snapshot.NewMemoryStore()
//	if err := snapshot.Save(ctx, store, "user-42", m); err != nil {
//	    return err
//	}
//	// later, in a fresh boundary
//	if err := snapshot.Load(ctx, store, "user-42", other); err != nil {
//	    return err
//	}
//
// Three stores are provided: MemoryStore for tests and single-process use,
// SQLStore for database/sql (SQLite via NewSQLiteStore, or PostgreSQL), and
// S3Store for object storage.
package snapshot
