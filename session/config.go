package session

import "time"

// Config configures a Pool: how to reach the store and how many sessions
// may be checked out concurrently (spec §4.9).
type Config struct {
	// Dialect is one of dialect.Postgres, dialect.MySQL, dialect.SQLite.
	Dialect string
	// DSN is the driver-specific data source name.
	DSN string
	// PoolSize bounds how many sessions may be checked out at once.
	// Defaults to 10 when <= 0.
	PoolSize int
	// SlowQueryThreshold marks a query as slow for the pool's stats
	// (spec §5's suspension-point accounting). Defaults to 100ms.
	SlowQueryThreshold time.Duration
}

func (c Config) poolSize() int {
	if c.PoolSize <= 0 {
		return 10
	}
	return c.PoolSize
}

func (c Config) slowQueryThreshold() time.Duration {
	if c.SlowQueryThreshold <= 0 {
		return 100 * time.Millisecond
	}
	return c.SlowQueryThreshold
}
