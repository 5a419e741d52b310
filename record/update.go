package record

import (
	"context"
	"fmt"
	"time"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/permission"
	"github.com/bcgsc/graphkb-core/query"
	"github.com/bcgsc/graphkb-core/schema"
	"github.com/bcgsc/graphkb-core/session"
)

// Update selects the unique record w identifies, copy-on-writes it
// (spec §4.8): the original's pre-change content is stored as a new,
// already-deleted row, changes are formatted and applied to the live
// row, and history is set to the copy's recordId.
func (s *Store) Update(ctx context.Context, sess *session.Session, class string, w *query.WrapperQuery, changes graphkb.Record, user graphkb.User) (graphkb.Record, error) {
	if err := s.Gate.CheckClassPermission(ctx, user, class, permission.OpUpdate); err != nil {
		return nil, err
	}
	cls, ok := s.Registry.Get(class)
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}
	if cls.IsEdge {
		return nil, graphkb.NewNotImplementedError("update", "edge classes are immutable; delete and recreate instead")
	}

	one := 1
	results, err := s.Select(ctx, sess, w, SelectOptions{ExactlyN: &one, User: user, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	original := results[0]
	rid := original.RID()
	if rid == "" {
		return nil, graphkb.NewValidationError("record", "selected record is missing a recordId", original)
	}

	// FormatRecord is idempotent (spec §8), so merging the formatted
	// original with the raw changes and re-formatting the whole document
	// both validates the patch and re-derives any cast it implies.
	merged := original.Clone()
	for k, v := range changes {
		merged[k] = v
	}
	formatted, err := s.Registry.FormatRecord(class, merged, schema.FormatOptions{})
	if err != nil {
		return nil, err
	}
	if cls.DisplayNameFunc != nil {
		name, err := cls.DisplayNameFunc(formatted)
		if err != nil {
			return nil, err
		}
		formatted["displayName"] = name
	}

	copyRec := original.Clone()
	copyRec[graphkb.KeyDeletedAt] = now()
	copyRec[graphkb.KeyDeletedBy] = user.RecordID
	copyStored, err := s.insertRaw(ctx, sess, class, copyRec)
	if err != nil {
		return nil, err
	}

	updateFields := make(graphkb.Record, len(changes)+2)
	for k := range changes {
		updateFields[k] = formatted[k]
	}
	if cls.DisplayNameFunc != nil {
		updateFields["displayName"] = formatted["displayName"]
	}
	updateFields[graphkb.KeyHistory] = copyStored.RID()

	return s.applyUpdate(ctx, sess, class, rid, updateFields)
}

// Remove selects the unique record w identifies and soft-deletes it. An
// edge additionally has both endpoints copied and repointed at the
// copies, so the deleted edge stays bound to historical vertex snapshots
// (spec §4.8).
func (s *Store) Remove(ctx context.Context, sess *session.Session, class string, w *query.WrapperQuery, user graphkb.User) (graphkb.Record, error) {
	if err := s.Gate.CheckClassPermission(ctx, user, class, permission.OpDelete); err != nil {
		return nil, err
	}
	cls, ok := s.Registry.Get(class)
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}

	one := 1
	results, err := s.Select(ctx, sess, w, SelectOptions{ExactlyN: &one, User: user, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	original := results[0]
	rid := original.RID()
	if rid == "" {
		return nil, graphkb.NewValidationError("record", "selected record is missing a recordId", original)
	}

	deletedAt := now()
	updateFields := graphkb.Record{
		graphkb.KeyDeletedAt: deletedAt,
		graphkb.KeyDeletedBy: user.RecordID,
	}

	if cls.IsEdge {
		outRID, _ := original[graphkb.KeyOut].(string)
		inRID, _ := original[graphkb.KeyIn].(string)
		newOut, err := s.repointEndpoint(ctx, sess, outRID, user, deletedAt)
		if err != nil {
			return nil, err
		}
		newIn, err := s.repointEndpoint(ctx, sess, inRID, user, deletedAt)
		if err != nil {
			return nil, err
		}
		updateFields[graphkb.KeyOut] = newOut
		updateFields[graphkb.KeyIn] = newIn
	}

	return s.applyUpdate(ctx, sess, class, rid, updateFields)
}

// repointEndpoint copies the vertex at rid, marking the copy deleted, and
// returns the copy's new recordId.
func (s *Store) repointEndpoint(ctx context.Context, sess *session.Session, rid string, user graphkb.User, deletedAt time.Time) (string, error) {
	if rid == "" {
		return "", graphkb.NewValidationError("edge", "endpoint is missing a recordId", rid)
	}
	endpoint, err := s.fetchByRID(ctx, sess, rid)
	if err != nil {
		return "", err
	}
	class := endpoint.Class()
	if class == "" {
		return "", graphkb.NewValidationError("edge", "endpoint is missing a class tag", rid)
	}
	copyRec := endpoint.Clone()
	copyRec[graphkb.KeyDeletedAt] = deletedAt
	copyRec[graphkb.KeyDeletedBy] = user.RecordID
	stored, err := s.insertRaw(ctx, sess, class, copyRec)
	if err != nil {
		return "", err
	}
	return stored.RID(), nil
}

// fetchByRID selects the single record identified by rid, independent of
// class -- remove's edge-endpoint copy needs the endpoint's class before
// it can reinsert a copy of it.
func (s *Store) fetchByRID(ctx context.Context, sess *session.Session, rid string) (graphkb.Record, error) {
	sub := &query.Subquery{Target: query.RecordIDsTarget([]string{rid}), History: true}
	w := &query.WrapperQuery{Inner: sub, Limit: 1}
	sqlText, params, err := w.Build()
	if err != nil {
		return nil, err
	}
	rows, err := sess.Query(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, graphkb.NewNoRecordFoundError("", rid)
	}
	return rows[0], nil
}

// applyUpdate runs "UPDATE <class> SET ... WHERE @rid IN [rid] RETURN
// AFTER" and returns the row the store hands back post-update.
func (s *Store) applyUpdate(ctx context.Context, sess *session.Session, class, rid string, fields graphkb.Record) (graphkb.Record, error) {
	ctxRender := filter.NewRenderContext()
	target, err := query.RecordIDsTarget([]string{rid}).Render(ctxRender)
	if err != nil {
		return nil, err
	}
	set := renderSet(ctxRender, fields, sortedKeys(fields))
	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE @rid IN %s RETURN AFTER", class, set, target)

	rows, err := sess.Query(ctx, sqlText, ctxRender.Params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, graphkb.NewNoRecordFoundError(class, sqlText)
	}
	return rows[0], nil
}
