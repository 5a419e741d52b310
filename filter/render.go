package filter

import (
	"fmt"
	"strings"
)

// RenderContext threads a monotonically increasing parameter counter and
// the accumulated bind values through a filter tree's recursive render,
// per spec §9's "bind parameters into a monotone counter carried through
// the recursion" guidance. SQL text is never built by interpolating a
// scalar directly; every scalar passed to Bind gets a ":pN" placeholder.
type RenderContext struct {
	Params map[string]any
	next    int
}

// NewRenderContext returns an empty RenderContext starting its
// placeholder counter at p0.
func NewRenderContext() *RenderContext {
	return &RenderContext{Params: map[string]any{}}
}

// Bind records v under a fresh placeholder name and returns that name
// (e.g. ":p0") for splicing into SQL text.
func (ctx *RenderContext) Bind(v any) string {
	name := fmt.Sprintf("p%d", ctx.next)
	ctx.next++
	ctx.Params[name] = v
	return ":" + name
}

// Render emits "attr OP :pN" (or the list/subquery/IS-null variants),
// wrapped in "NOT (...)" when Negate is set.
func (c *Comparison) Render(ctx *RenderContext) (string, error) {
	var sql string
	var err error
	switch {
	case c.Operator == OpIS:
		sql = fmt.Sprintf("%s IS NULL", c.Attr)
	case isSubqueryValue(c.Value):
		sql, err = c.renderSubquery(ctx)
	case isListValue(c.Value):
		sql = c.renderList(ctx)
	default:
		sql = fmt.Sprintf("%s %s %s", c.Attr, c.Operator, ctx.Bind(c.Value))
	}
	if err != nil {
		return "", err
	}
	if c.Negate {
		return fmt.Sprintf("NOT (%s)", sql), nil
	}
	return sql, nil
}

func (c *Comparison) renderSubquery(ctx *RenderContext) (string, error) {
	sub, err := c.Value.(Renderable).Render(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s (%s)", c.Attr, c.Operator, sub), nil
}

func (c *Comparison) renderList(ctx *RenderContext) string {
	values := c.Value.([]any)
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = ctx.Bind(v)
	}
	switch c.Operator {
	case OpIN:
		return fmt.Sprintf("%s IN (%s)", c.Attr, strings.Join(placeholders, ", "))
	default:
		return fmt.Sprintf("%s %s [%s]", c.Attr, c.Operator, strings.Join(placeholders, ", "))
	}
}
