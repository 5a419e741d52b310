// Package record implements the record-lifecycle operations spec §4.8
// describes on top of the query builder and session layers: create,
// createEdge, select, update, remove, selectCounts, selectFromList, and
// selectByKeyword. Every operation runs schema-driven validation first,
// then talks to the store through a *session.Session, then translates
// the result back into graphkb.Record values trimmed for the requesting
// user.
package record

import (
	"sort"
	"strings"
	"time"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/permission"
	"github.com/bcgsc/graphkb-core/schema"
)

// Store bundles the schema and permission collaborators every record
// operation needs. A Store is stateless and safe for concurrent use; it
// carries no session of its own, since spec §5 scopes a session to a
// single in-flight request.
type Store struct {
	Registry *schema.Registry
	Gate     *permission.Gate
	// Cache, when set, lets Select short-circuit the read path for an
	// unchanged query instead of re-running it against the store. Left
	// nil, Select always queries the store directly.
	Cache graphkb.Cache
}

// NewStore returns a Store backed by registry and gate.
func NewStore(registry *schema.Registry, gate *permission.Gate) *Store {
	return &Store{Registry: registry, Gate: gate}
}

// now is overridable in tests; production code always sees time.Now.
var now = func() time.Time { return time.Now().UTC() }

// sortedKeys returns rec's keys in sorted order, so the SQL this package
// renders is deterministic regardless of Go's randomized map iteration.
func sortedKeys(rec graphkb.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderSet renders "k0 = :p0, k1 = :p1, ..." for each key in fields,
// reading its bound value from values. The bound values accumulate in
// ctx; only the rendered fragment is returned.
func renderSet(ctx *filter.RenderContext, values graphkb.Record, fields []string) string {
	assignments := make([]string, len(fields))
	for i, k := range fields {
		assignments[i] = k + " = " + ctx.Bind(values[k])
	}
	return strings.Join(assignments, ", ")
}

// activePropsSubset extracts the subset of formatted naming cols, for
// attaching to a RecordExistsError so callers can see which tuple
// collided.
func activePropsSubset(formatted graphkb.Record, cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = formatted[c]
	}
	return out
}
