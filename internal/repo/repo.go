// Package repo contains all database access logic for the ride dispatch
// backend. Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
//
// Every booking mutation is a single conditional UPDATE whose WHERE clause
// re-checks the current status (and, for accepts, offer membership and window
// overlap). The state check and the state write happen as one atomic
// statement against the store, never as a read followed by a write — the
// offer accept race depends on this.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
//
// Begin is included because booking mutators append a history row in the same
// transaction as the status change; on a pgx.Tx it opens a savepoint, so the
// pattern nests cleanly under test transactions.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}
