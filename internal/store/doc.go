// Package store provides persistent storage for the invocation audit trail
// using SQLite.
//
// # Data Model
//
// A single table holds one row per tool invocation:
//
//   - InvocationRecord: tool name, outcome (ok, invalid_args, error),
//     wall-clock duration in milliseconds, UTC timestamp, and a bounded
//     failure detail for non-ok outcomes
//
// Records are written by the dispatcher after each tools/call and read
// back through GetInvocation or through ListInvocations with optional
// time, tool, and outcome filters. The audit trail is append-only;
// nothing updates or deletes rows.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on open, as are missing parent
// directories of the database path.
//
// # Error Handling
//
//   - ErrNotFound: Requested entity does not exist
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for integration tests with
// real SQLite.
package store
