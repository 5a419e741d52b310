package query

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/schema"
	"github.com/bcgsc/graphkb-core/traversal"
)

// OrderDirection is the sort direction for a WrapperQuery's OrderBy.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// WrapperQuery is the top-level wrapping spec §4.6 describes: count,
// ordering, pagination, return-property projection, and depth-bounded
// neighbour expansion layered on top of an inner Subquery or
// FixedSubquery.
type WrapperQuery struct {
	Inner filter.Renderable

	// Registry and TargetClass, when both set, enable validating that
	// every OrderBy and ReturnProperties entry is a real attribute path
	// on TargetClass (spec §4.6) before Build renders any SQL.
	Registry    *schema.Registry
	TargetClass string

	ReturnProperties []string
	// Neighbors, when > 0, recursively expands linked records up to this
	// depth, always including @rid/@class and excluding history unless
	// IncludeHistory is set (spec §4.6).
	Neighbors      int
	IncludeHistory bool

	OrderBy          []string
	OrderByDirection OrderDirection

	Skip  int
	Limit int
	Count bool
}

// Build renders w to a complete SQL statement and its bound parameters.
// limit defaults to MaxLimit when unset; skip/limit/orderBy are dropped
// from the output when Count is set (spec §4.6).
func (w *WrapperQuery) Build() (string, map[string]any, error) {
	if err := w.validate(); err != nil {
		return "", nil, err
	}
	if err := w.validateAttributePaths(); err != nil {
		return "", nil, err
	}
	ctx := filter.NewRenderContext()
	innerSQL, err := w.Inner.Render(ctx)
	if err != nil {
		return "", nil, err
	}

	if w.Count {
		return fmt.Sprintf("SELECT count(*) AS count FROM (%s)", innerSQL), ctx.Params, nil
	}

	if !w.needsWrapper() {
		return innerSQL, ctx.Params, nil
	}

	projection := w.projection()
	sql := fmt.Sprintf("SELECT %s FROM (%s)", projection, innerSQL)
	if len(w.OrderBy) > 0 {
		dir := w.OrderByDirection
		if dir == "" {
			dir = OrderAsc
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", strings.Join(w.OrderBy, ", "), dir)
	}
	if w.Skip > 0 {
		sql += fmt.Sprintf(" SKIP %d", w.Skip)
	}
	sql += fmt.Sprintf(" LIMIT %d", w.effectiveLimit())
	return sql, ctx.Params, nil
}

func (w *WrapperQuery) needsWrapper() bool {
	return w.Count || len(w.OrderBy) > 0 || w.Skip > 0 || w.Limit > 0 || len(w.ReturnProperties) > 0 || w.Neighbors > 0
}

func (w *WrapperQuery) effectiveLimit() int {
	if w.Limit <= 0 {
		return MaxLimit
	}
	return w.Limit
}

func (w *WrapperQuery) validate() error {
	if w.Limit < 0 || w.Limit > MaxLimit {
		return graphkb.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit), w.Limit)
	}
	if w.Skip < 0 {
		return graphkb.NewValidationError("skip", "must be >= 0", w.Skip)
	}
	if w.Neighbors < 0 || w.Neighbors > MaxNeighbors {
		return graphkb.NewValidationError("neighbors", fmt.Sprintf("must be between 0 and %d", MaxNeighbors), w.Neighbors)
	}
	if len(w.OrderBy) > 0 && w.OrderByDirection != "" && w.OrderByDirection != OrderAsc && w.OrderByDirection != OrderDesc {
		return graphkb.NewValidationError("orderByDirection", "must be ASC or DESC", w.OrderByDirection)
	}
	return nil
}

// validateAttributePaths checks every OrderBy and ReturnProperties entry
// resolves against w.TargetClass, when w.Registry is supplied. Each path
// is parsed and validated independently, so the checks run concurrently
// via errgroup rather than in a sequential loop.
func (w *WrapperQuery) validateAttributePaths() error {
	if w.Registry == nil || w.TargetClass == "" {
		return nil
	}
	paths := make([]string, 0, len(w.OrderBy)+len(w.ReturnProperties))
	paths = append(paths, w.OrderBy...)
	paths = append(paths, w.ReturnProperties...)

	var g errgroup.Group
	for _, p := range paths {
		p := p
		g.Go(func() error {
			parsed, err := traversal.ParseString(p)
			if err != nil {
				return err
			}
			_, err = traversal.Validate(w.Registry, w.TargetClass, parsed)
			return err
		})
	}
	return g.Wait()
}

// projection renders the select-list: returnProperties verbatim when
// supplied, else "*" optionally expanded to a nested neighbour
// projection.
func (w *WrapperQuery) projection() string {
	if len(w.ReturnProperties) > 0 {
		return strings.Join(w.ReturnProperties, ", ")
	}
	if w.Neighbors > 0 {
		return neighborsProjection(w.Neighbors, w.IncludeHistory)
	}
	return "*"
}

// neighborsProjection builds a nested fetch expression that recursively
// expands linked records depth levels deep, always keeping @rid/@class
// visible at every level and dropping history unless includeHistory is
// set (spec §4.6).
func neighborsProjection(depth int, includeHistory bool) string {
	exclusions := ""
	if !includeHistory {
		exclusions = fmt.Sprintf(",-%s", graphkb.KeyHistory)
	}
	projection := "*" + exclusions
	for i := 0; i < depth; i++ {
		projection = fmt.Sprintf("*:{@rid,@class,%s}", projection)
	}
	return projection
}
