// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file serves two stores:
//
//   - RecordCache: the client-side record cache, persisted so a restart can
//     render the last settled list before the backend answers
//   - RecordStore: the records the local backend lists, adds and removes
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-library/data/library.db
//
// # Thread Safety
//
// All operations are thread-safe. Writes run in transactions and SQLite runs
// in WAL mode.
package sqlite
