// Package sql provides the database transport primitives the session pool
// is built on: a dialect.Driver/dialect.Tx implementation over
// database/sql, plus query statistics.
//
// # Dialect Support
//
// The driver adapts to PostgreSQL, MySQL, and SQLite:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//
// # Statistics
//
// StatsDriver wraps a Driver to track query counts, durations, and slow
// queries:
//
//	drv, stats, err := sql.OpenWithStats(dialect.Postgres, dsn, sql.WithSlowQueryLog())
package sql
