package filter

import "strings"

// ClauseOp is the boolean operator joining a Clause's children.
type ClauseOp string

const (
	ClauseAnd ClauseOp = "AND"
	ClauseOr  ClauseOp = "OR"
)

// Clause composes Comparisons and nested Clauses under AND/OR, with
// optional negation (spec §4.4).
type Clause struct {
	Operator ClauseOp
	Children []Node
	Negate   bool
}

// And is a convenience constructor for an AND clause.
func And(children ...Node) *Clause { return &Clause{Operator: ClauseAnd, Children: children} }

// Or is a convenience constructor for an OR clause.
func Or(children ...Node) *Clause { return &Clause{Operator: ClauseOr, Children: children} }

// Render joins each child's rendering with the clause's operator,
// parenthesising a nested Clause child when it has two or more children
// and a different operator than its parent, so precedence survives
// round-tripping through SQL text (spec §4.4).
func (c *Clause) Render(ctx *RenderContext) (string, error) {
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		rendered, err := child.Render(ctx)
		if err != nil {
			return "", err
		}
		if nested, ok := child.(*Clause); ok && len(nested.Children) >= 2 && nested.Operator != c.Operator {
			rendered = "(" + rendered + ")"
		}
		parts[i] = rendered
	}
	sql := strings.Join(parts, " "+string(c.Operator)+" ")
	if c.Negate {
		sql = "NOT (" + sql + ")"
	}
	return sql, nil
}
