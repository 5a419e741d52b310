package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/dialect"
	sqldialect "github.com/bcgsc/graphkb-core/dialect/sql"
	"github.com/bcgsc/graphkb-core/dialect/sql/sqlgraph"
)

// Session is one checked-out connection from a Pool. A Session is owned
// exclusively by the caller that acquired it until it is released (spec
// §5); it is not safe for concurrent use by multiple goroutines. id tags
// the session's own log lines so an opaque driver failure can be
// correlated back to the connection that produced it.
type Session struct {
	drv     dialect.Driver
	dialect string
	id      string
}

// New wraps drv as a standalone Session outside of a Pool, for callers
// (tests, one-off scripts) that already hold a dialect.Driver.
func New(drv dialect.Driver, dialectName string) *Session {
	return &Session{drv: drv, dialect: dialectName, id: uuid.NewString()}
}

// Query runs sqlText with params bound positionally per dialect and
// returns the resulting rows as records. Driver errors are translated into
// this module's error taxonomy (spec §4.9).
func (s *Session) Query(ctx context.Context, sqlText string, params map[string]any) ([]graphkb.Record, error) {
	query, args, err := bindArgs(s.dialect, sqlText, params)
	if err != nil {
		return nil, graphkb.NewValidationError("params", err.Error(), params)
	}
	rows := &sqldialect.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, s.translateError(err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Exec runs sqlText for side effect and returns the number of rows
// affected, when the driver reports it.
func (s *Session) Exec(ctx context.Context, sqlText string, params map[string]any) (int64, error) {
	query, args, err := bindArgs(s.dialect, sqlText, params)
	if err != nil {
		return 0, graphkb.NewValidationError("params", err.Error(), params)
	}
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, s.translateError(err)
	}
	if res == nil {
		return 0, nil
	}
	return res.RowsAffected()
}

// Tx runs fn inside a transaction, committing if fn returns nil and rolling
// back otherwise. The session passed to fn is scoped to the transaction
// (spec §5: "writes observe the store's read-your-writes semantics on the
// same session").
func (s *Session) Tx(ctx context.Context, fn func(*Session) error) (rerr error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return s.translateError(err)
	}
	defer func() {
		if rerr != nil {
			_ = tx.Rollback()
			return
		}
		rerr = tx.Commit()
	}()
	return fn(&Session{drv: tx, dialect: s.dialect, id: s.id})
}

// translateError maps a driver-level error to this module's taxonomy per
// spec §4.9: a missing-row sentinel becomes NoRecordFoundError, a unique
// constraint violation becomes RecordExistsError, any other constraint
// violation becomes ValidationError, and everything else is an opaque
// DatabaseConnectionError.
func (s *Session) translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return graphkb.NewNoRecordFoundError("", "")
	case sqlgraph.IsUniqueConstraintError(err):
		return graphkb.NewRecordExistsError("", nil)
	case sqlgraph.IsConstraintError(err):
		return graphkb.NewValidationError("record", fmt.Sprintf("constraint violation: %v", err), nil)
	default:
		slog.Error("session: opaque driver error", "session", s.id, "error", err)
		return graphkb.NewDatabaseConnectionError(err)
	}
}

// scanRecords drains rows into records keyed by column name. Values come
// back as whatever the driver's native Scan produces (string, int64,
// float64, bool, time.Time, []byte, nil); callers that need a specific
// Go representation (e.g. @rid as a string) read it off the map directly
// since Record is just map[string]any.
func scanRecords(rows *sqldialect.Rows) ([]graphkb.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, graphkb.NewDatabaseConnectionError(err)
	}
	var out []graphkb.Record
	for rows.Next() {
		dest := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, graphkb.NewDatabaseConnectionError(err)
		}
		rec := make(graphkb.Record, len(cols))
		for i, col := range cols {
			if b, ok := dest[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = dest[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, graphkb.NewDatabaseConnectionError(err)
	}
	return out, nil
}
