package record

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/cast"
	"github.com/bcgsc/graphkb-core/permission"
	"github.com/bcgsc/graphkb-core/query"
	"github.com/bcgsc/graphkb-core/session"
)

// SelectOptions controls the post-query trimming and exactness checks
// select(session, query, {exactlyN?, user}) applies (spec §4.8).
type SelectOptions struct {
	// ExactlyN, when non-nil, requires the trimmed result set to have
	// exactly this many rows, failing with NoRecordFoundError (too few)
	// or MultipleRecordsFoundError (too many) otherwise.
	ExactlyN *int
	User     graphkb.User
	// ActiveOnly drops expanded neighbours with a non-null deletedAt.
	// It does not affect top-level rows, whose active-ness is already
	// governed by the query itself (query.Subquery.History).
	ActiveOnly bool
}

// Select runs w, translates driver errors into the domain taxonomy, and
// trims the result per spec §4.8: drop records the user cannot see, drop
// inactive neighbours when ActiveOnly, prune backref lists the same way.
//
// When s.Cache is set, the raw (untrimmed) rows are cached keyed by the
// rendered statement and its ordering/paging knobs, since trimming is
// user-specific and must be reapplied on every call regardless of
// whether the query itself came from cache.
func (s *Store) Select(ctx context.Context, sess *session.Session, w *query.WrapperQuery, opts SelectOptions) ([]graphkb.Record, error) {
	sqlText, params, err := w.Build()
	if err != nil {
		return nil, err
	}

	var key graphkb.CacheKey
	if s.Cache != nil {
		key = graphkb.CacheKey{
			Class:      w.TargetClass,
			Operation:  "select",
			Predicates: sqlText,
			OrderBy:    strings.Join(w.OrderBy, ","),
			Limit:      w.Limit,
			Skip:       w.Skip,
		}
	}

	rows, err := s.queryCached(ctx, sess, key, sqlText, params)
	if err != nil {
		return nil, err
	}

	trimmed := s.trim(rows, opts.User, opts.ActiveOnly)
	if opts.ExactlyN != nil {
		switch n := *opts.ExactlyN; {
		case len(trimmed) < n:
			return nil, graphkb.NewNoRecordFoundError(w.TargetClass, sqlText)
		case len(trimmed) > n:
			return nil, graphkb.NewMultipleRecordsFoundError(w.TargetClass, len(trimmed))
		}
	}
	return trimmed, nil
}

// queryCached runs sqlText through sess, transparently serving and
// populating s.Cache under key when s.Cache is set. An empty key.Class
// paired with a nil s.Cache is the normal uncached path.
func (s *Store) queryCached(ctx context.Context, sess *session.Session, key graphkb.CacheKey, sqlText string, params map[string]any) ([]graphkb.Record, error) {
	if s.Cache == nil {
		return sess.Query(ctx, sqlText, params)
	}

	cacheKey := key.String()
	if cached, err := s.Cache.Get(ctx, cacheKey); err == nil && cached != nil {
		var rows []graphkb.Record
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := sess.Query(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rows); err == nil {
		_ = s.Cache.Set(ctx, cacheKey, data, 0)
	}
	return rows, nil
}

// trim drops every top-level row the user cannot see, then recursively
// trims neighbours reachable through expanded properties.
func (s *Store) trim(rows []graphkb.Record, user graphkb.User, activeOnly bool) []graphkb.Record {
	out := make([]graphkb.Record, 0, len(rows))
	for _, rec := range rows {
		if !s.Gate.HasRecordAccess(user, rec) {
			continue
		}
		trimmed := make(graphkb.Record, len(rec))
		for k, v := range rec {
			if tv, ok := trimNeighborValue(v, user, s.Gate, activeOnly); ok {
				trimmed[k] = tv
			}
		}
		out = append(out, trimmed)
	}
	return out
}

// trimNeighborValue walks v, descending into nested records and lists of
// records (the shape a WrapperQuery's Neighbors expansion produces),
// reporting ok=false when v is a neighbour record that must be dropped.
func trimNeighborValue(v any, user graphkb.User, gate *permission.Gate, activeOnly bool) (any, bool) {
	switch t := v.(type) {
	case graphkb.Record:
		return trimNeighborRecord(t, user, gate, activeOnly)
	case map[string]any:
		return trimNeighborRecord(graphkb.Record(t), user, gate, activeOnly)
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if tv, ok := trimNeighborValue(e, user, gate, activeOnly); ok {
				out = append(out, tv)
			}
		}
		return out, true
	default:
		return v, true
	}
}

func trimNeighborRecord(rec graphkb.Record, user graphkb.User, gate *permission.Gate, activeOnly bool) (any, bool) {
	if activeOnly && rec.IsDeleted() {
		return nil, false
	}
	if !gate.HasRecordAccess(user, rec) {
		return nil, false
	}
	trimmed := make(graphkb.Record, len(rec))
	for k, v := range rec {
		if tv, ok := trimNeighborValue(v, user, gate, activeOnly); ok {
			trimmed[k] = tv
		}
	}
	return trimmed, true
}

// ListOptions carries the projection/expansion knobs selectFromList and
// selectByKeyword share with an ordinary select (spec §4.8, §4.6).
type ListOptions struct {
	Neighbors        int
	ReturnProperties []string
	IncludeHistory   bool
}

// SelectFromList validates each of recordIDs, selects the record-id set,
// and requires the trimmed result to contain exactly len(recordIDs) rows
// (spec §4.8).
func (s *Store) SelectFromList(ctx context.Context, sess *session.Session, recordIDs []string, listOpts ListOptions, opts SelectOptions) ([]graphkb.Record, error) {
	normalized := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		rid, err := cast.ToRID(id)
		if err != nil {
			return nil, err
		}
		normalized[i] = rid
	}

	w := &query.WrapperQuery{
		Inner:            &query.Subquery{Target: query.RecordIDsTarget(normalized)},
		Neighbors:        listOpts.Neighbors,
		ReturnProperties: listOpts.ReturnProperties,
		IncludeHistory:   listOpts.IncludeHistory,
	}
	n := len(recordIDs)
	opts.ExactlyN = &n
	return s.Select(ctx, sess, w, opts)
}

// SelectByKeyword is a thin wrapper over the multi-class keyword search
// (spec §4.7), run through the same select/trim pipeline as any other
// query (spec §4.8).
func (s *Store) SelectByKeyword(ctx context.Context, sess *session.Session, keywords []string, listOpts ListOptions, opts SelectOptions) ([]graphkb.Record, error) {
	ks, err := query.NewKeywordSearch(keywords)
	if err != nil {
		return nil, err
	}
	w := &query.WrapperQuery{
		Inner:            ks,
		Neighbors:        listOpts.Neighbors,
		ReturnProperties: listOpts.ReturnProperties,
		IncludeHistory:   listOpts.IncludeHistory,
	}
	return s.Select(ctx, sess, w, opts)
}

// CountsOptions parameterizes SelectCounts (spec §4.8).
type CountsOptions struct {
	ClassList     []string
	ActiveOnly    bool
	GroupBySource bool
}

// SelectCounts emits one "SELECT count(*) ... [GROUP BY source]" per
// class in opts.ClassList, optionally filtering soft-deleted rows (spec
// §4.8). Class names come from the schema registry, not free-form user
// text, so they are spliced into the statement directly -- the same
// trust boundary query.Target.Render already applies to class names.
func (s *Store) SelectCounts(ctx context.Context, sess *session.Session, opts CountsOptions) (map[string][]graphkb.Record, error) {
	out := make(map[string][]graphkb.Record, len(opts.ClassList))
	for _, class := range opts.ClassList {
		if _, ok := s.Registry.Get(class); !ok {
			return nil, graphkb.NewValidationError("class", "unknown class", class)
		}
		projection := "count(*) AS count"
		if opts.GroupBySource {
			projection += ", source"
		}
		sqlText := fmt.Sprintf("SELECT %s FROM %s", projection, class)
		if opts.ActiveOnly {
			sqlText += " WHERE deletedAt IS NULL"
		}
		if opts.GroupBySource {
			sqlText += " GROUP BY source"
		}
		rows, err := sess.Query(ctx, sqlText, nil)
		if err != nil {
			return nil, err
		}
		out[class] = rows
	}
	return out, nil
}
