package record

import (
	"context"
	"fmt"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/permission"
	"github.com/bcgsc/graphkb-core/query"
	"github.com/bcgsc/graphkb-core/schema"
	"github.com/bcgsc/graphkb-core/session"
)

// Create formats content against class, rejects an active-index
// collision, resolves a declared-but-missing displayName, inserts the
// record, and returns it as stored (spec §4.8).
func (s *Store) Create(ctx context.Context, sess *session.Session, class string, content graphkb.Record, user graphkb.User) (graphkb.Record, error) {
	if err := s.Gate.CheckClassPermission(ctx, user, class, permission.OpCreate); err != nil {
		return nil, err
	}
	cls, ok := s.Registry.Get(class)
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}

	formatted, err := s.Registry.FormatRecord(class, content, schema.FormatOptions{AddDefaults: true})
	if err != nil {
		return nil, err
	}

	if len(cls.ActiveProperties) > 0 {
		collision, err := s.activeRecordExists(ctx, sess, class, cls.ActiveProperties, formatted)
		if err != nil {
			return nil, err
		}
		if collision {
			return nil, graphkb.NewRecordExistsError(class, activePropsSubset(formatted, cls.ActiveProperties))
		}
	}

	if cls.DisplayNameFunc != nil {
		if _, has := formatted["displayName"]; !has {
			name, err := cls.DisplayNameFunc(formatted)
			if err != nil {
				return nil, err
			}
			formatted["displayName"] = name
		}
	}

	formatted[graphkb.KeyCreatedAt] = now()
	formatted[graphkb.KeyCreatedBy] = user.RecordID

	return s.insertRaw(ctx, sess, class, formatted)
}

// CreateEdge creates an edge of class from out to in carrying content,
// rejecting a self-loop and stripping any caller-supplied class tag
// since the edge's class is implied by the call (spec §4.8).
func (s *Store) CreateEdge(ctx context.Context, sess *session.Session, class, out, in string, content graphkb.Record, user graphkb.User) (graphkb.Record, error) {
	if err := s.Gate.CheckClassPermission(ctx, user, class, permission.OpCreate); err != nil {
		return nil, err
	}
	if out == in {
		return nil, graphkb.NewValidationError("edge", "out and in record must differ", out)
	}
	cls, ok := s.Registry.Get(class)
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}
	if !cls.IsEdge {
		return nil, graphkb.NewValidationError("class", "not an edge class", class)
	}

	delete(content, graphkb.KeyClass)
	formatted, err := s.Registry.FormatRecord(class, content, schema.FormatOptions{AddDefaults: true})
	if err != nil {
		return nil, err
	}
	delete(formatted, graphkb.KeyClass)

	formatted[graphkb.KeyCreatedAt] = now()
	formatted[graphkb.KeyCreatedBy] = user.RecordID

	ctxRender := filter.NewRenderContext()
	outSQL, err := query.RecordIDsTarget([]string{out}).Render(ctxRender)
	if err != nil {
		return nil, err
	}
	inSQL, err := query.RecordIDsTarget([]string{in}).Render(ctxRender)
	if err != nil {
		return nil, err
	}
	set := renderSet(ctxRender, formatted, sortedKeys(formatted))
	sqlText := fmt.Sprintf("CREATE EDGE %s FROM (SELECT FROM %s) TO (SELECT FROM %s)", class, outSQL, inSQL)
	if set != "" {
		sqlText += " SET " + set
	}

	rows, err := sess.Query(ctx, sqlText, ctxRender.Params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, graphkb.NewDatabaseConnectionError(fmt.Errorf("CREATE EDGE %s returned no row", class))
	}
	return rows[0], nil
}

// insertRaw inserts formatted (already schema-formatted) content as a new
// row of class and returns the row the store hands back.
func (s *Store) insertRaw(ctx context.Context, sess *session.Session, class string, formatted graphkb.Record) (graphkb.Record, error) {
	// The store assigns a fresh recordId on insert; a caller building
	// formatted from a clone of an existing row (the copy-on-write step
	// in update/remove) must not ask to set @rid/@class as if they were
	// ordinary properties.
	delete(formatted, graphkb.KeyRID)
	delete(formatted, graphkb.KeyClass)

	ctxRender := filter.NewRenderContext()
	set := renderSet(ctxRender, formatted, sortedKeys(formatted))
	sqlText := fmt.Sprintf("INSERT INTO %s SET %s", class, set)

	rows, err := sess.Query(ctx, sqlText, ctxRender.Params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, graphkb.NewDatabaseConnectionError(fmt.Errorf("INSERT INTO %s returned no row", class))
	}
	return rows[0], nil
}

// activeRecordExists runs the active-uniqueness pre-select spec §3 and
// §5 describe: best-effort, since the store's own unique index has final
// say over a create that loses the race.
func (s *Store) activeRecordExists(ctx context.Context, sess *session.Session, class string, activeCols []string, formatted graphkb.Record) (bool, error) {
	props, err := s.Registry.QueryProperties(class)
	if err != nil {
		return false, err
	}
	comparisons := make([]filter.Node, 0, len(activeCols))
	for _, col := range activeCols {
		prop, ok := props[col]
		if !ok {
			return false, graphkb.NewValidationError(class, "activeProperties references unknown property", col)
		}
		cmp, err := filter.NewComparison(col, formatted[col], "", false, prop)
		if err != nil {
			return false, err
		}
		comparisons = append(comparisons, cmp)
	}

	sub := &query.Subquery{Target: query.ClassTarget(class), Filters: filter.And(comparisons...)}
	w := &query.WrapperQuery{Inner: sub, Limit: 1}
	sqlText, params, err := w.Build()
	if err != nil {
		return false, err
	}
	rows, err := sess.Query(ctx, sqlText, params)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
