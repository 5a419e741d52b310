// Package dialect provides database dialect abstraction for the session
// transport layer: the driver/transaction interfaces the sql subpackage
// implements, and the dialect name constants used to select
// dialect-specific behavior (session variable syntax, error code mapping).
package dialect

import "context"

// Supported dialect names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// ExecQuerier is implemented by both Driver and Tx.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface a connection pool member must satisfy.
type Driver interface {
	ExecQuerier
	Tx(ctx context.Context) (Tx, error)
	Close() error
	Dialect() string
}

// Tx extends Driver with transaction control.
type Tx interface {
	Driver
	Commit() error
	Rollback() error
}
