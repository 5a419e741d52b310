package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	graphkb "github.com/bcgsc/graphkb-core"
	sqldialect "github.com/bcgsc/graphkb-core/dialect/sql"
)

// Pool hands out a fixed number of Sessions, enforcing the exclusive
// checkout discipline spec §5 requires: "each request acquires one session
// from a fixed-size pool and owns it exclusively until release." All
// Sessions share one underlying *sql.DB-backed driver (itself already
// connection-pooled); Pool's channel bounds concurrent in-flight requests
// against the store, not raw TCP connections.
type Pool struct {
	driver *sqldialect.StatsDriver
	tokens chan *Session
}

// Open dials cfg.DSN with cfg.Dialect and returns a ready Pool. The dialect
// driver must already be registered (see dialects.go's blank imports).
func Open(cfg Config) (*Pool, error) {
	drv, stats, err := sqldialect.OpenWithStats(cfg.Dialect, cfg.DSN,
		sqldialect.WithSlowThreshold(cfg.slowQueryThreshold()),
		sqldialect.WithSlowQueryLog(),
	)
	if err != nil {
		return nil, graphkb.NewDatabaseConnectionError(err)
	}
	_ = stats // retrievable back via Pool.Stats
	size := cfg.poolSize()
	tokens := make(chan *Session, size)
	for range size {
		tokens <- &Session{drv: drv, dialect: cfg.Dialect, id: uuid.NewString()}
	}
	return &Pool{driver: drv, tokens: tokens}, nil
}

// Stats returns a snapshot of accumulated query statistics across every
// session this pool has handed out.
func (p *Pool) Stats() sqldialect.StatsSnapshot {
	return p.driver.QueryStats().Stats()
}

// Acquire blocks until a session is available or ctx is cancelled. The
// caller must call Release when done, on every code path (spec §5).
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	select {
	case s := <-p.tokens:
		return s, nil
	case <-ctx.Done():
		return nil, graphkb.NewDatabaseConnectionError(ctx.Err())
	}
}

// Release returns s to the pool. Safe to call even if the caller's
// operation failed; a caller must never use s again afterward.
func (p *Pool) Release(s *Session) {
	select {
	case p.tokens <- s:
	default:
		slog.Warn("session: release called on a full pool, dropping token")
	}
}

// Close closes the underlying driver. Callers must ensure no sessions are
// checked out.
func (p *Pool) Close() error {
	return p.driver.Close()
}
