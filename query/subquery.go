package query

import (
	"fmt"

	"github.com/bcgsc/graphkb-core/filter"
)

// Subquery is "SELECT * FROM <target> [WHERE <filters>]", wrapped in an
// active-only filter unless History is set (spec §4.5).
type Subquery struct {
	Target  Target
	Filters filter.Node
	History bool
}

// RenderInner emits "SELECT * FROM <target> [WHERE <filters>]" with no
// active-only wrapping -- the fragment fixed subqueries compose into
// their own TRAVERSE templates before applying a single outer
// active-only wrap themselves.
func (s *Subquery) RenderInner(ctx *filter.RenderContext) (string, error) {
	targetSQL, err := s.Target.Render(ctx)
	if err != nil {
		return "", err
	}
	inner := fmt.Sprintf("SELECT * FROM %s", targetSQL)
	if s.Filters != nil {
		whereSQL, err := s.Filters.Render(ctx)
		if err != nil {
			return "", err
		}
		inner += " WHERE " + whereSQL
	}
	return inner, nil
}

// Render implements filter.Renderable, so a Subquery can appear as the
// value side of an IN/CONTAINSANY/CONTAINSALL Comparison as well as at
// the top of a Wrapper Query. Unless History is set, it wraps
// RenderInner's output in an active-only filter (spec §4.5).
func (s *Subquery) Render(ctx *filter.RenderContext) (string, error) {
	inner, err := s.RenderInner(ctx)
	if err != nil {
		return "", err
	}
	if s.History {
		return inner, nil
	}
	return fmt.Sprintf("SELECT * FROM (%s) WHERE deletedAt IS NULL", inner), nil
}
