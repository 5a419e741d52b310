package query

import (
	"fmt"
	"strings"

	"github.com/bcgsc/graphkb-core/filter"
)

// Target is the sum type a Subquery selects from, per Design Notes §9:
// a class name, an explicit list of recordIds, or a nested Subquery.
// Exactly one field is set.
type Target struct {
	Class     string
	RecordIDs []string
	Sub       *Subquery
}

// ClassTarget builds a Target selecting from class by name.
func ClassTarget(class string) Target { return Target{Class: class} }

// RecordIDsTarget builds a Target selecting an explicit list of
// "cluster:position" identifiers.
func RecordIDsTarget(ids []string) Target { return Target{RecordIDs: ids} }

// SubqueryTarget builds a Target selecting from a nested Subquery.
func SubqueryTarget(sub *Subquery) Target { return Target{Sub: sub} }

// Render emits the FROM-clause fragment for t: a bare class name, a
// bracketed ("[...]") record-id set lookup, or a parenthesised nested
// subquery rendering.
func (t Target) Render(ctx *filter.RenderContext) (string, error) {
	switch {
	case t.Sub != nil:
		sql, err := t.Sub.Render(ctx)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	case len(t.RecordIDs) > 0:
		placeholders := make([]string, len(t.RecordIDs))
		for i, id := range t.RecordIDs {
			placeholders[i] = ctx.Bind(id)
		}
		return fmt.Sprintf("[%s]", strings.Join(placeholders, ", ")), nil
	default:
		return t.Class, nil
	}
}
