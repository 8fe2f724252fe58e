// Package database provides the SQLite store behind zone status history.
//
// The service records a snapshot row every time an amplifier zone is
// polled or commanded; the history repository reads them back for the
// restore action and prunes them on a retention schedule. This package
// owns the connection itself:
//
//   - WAL mode so reads do not block behind the recorder's inserts
//   - additive-only schema migrations embedded in the binary
//   - health checks for the readiness loop
//
// Migrations are apply-only at runtime. Each migration file pairs an
// .up.sql with a .down.sql; the down scripts are kept for manual
// rollback with the sqlite3 CLI and are never executed by the service.
// New columns must be nullable or carry a default so an older binary can
// still read a migrated database.
package database
