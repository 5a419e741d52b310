// Package filter implements the Comparison/Clause predicate tree (spec
// §4.4): a sum-type-flavoured AST (Node = *Comparison | *Clause) that
// renders itself to parameterised SQL. No node ever interpolates a
// user-supplied scalar directly into SQL text; every scalar is bound
// through a RenderContext and referenced by placeholder name.
package filter

import (
	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/schema"
)

// Operator enumerates the comparison operators spec §4.4 names.
type Operator string

const (
	OpEQ           Operator = "="
	OpNEQ          Operator = "!="
	OpGT           Operator = ">"
	OpGTE          Operator = ">="
	OpLT           Operator = "<"
	OpLTE          Operator = "<="
	OpIN           Operator = "IN"
	OpCONTAINS     Operator = "CONTAINS"
	OpCONTAINSANY  Operator = "CONTAINSANY"
	OpCONTAINSALL  Operator = "CONTAINSALL"
	OpCONTAINSTEXT Operator = "CONTAINSTEXT"
	OpIS           Operator = "IS"
	OpTextSearch   Operator = "~"
)

var comparisonOperators = map[Operator]bool{
	OpEQ: true, OpNEQ: true, OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	OpIN: true, OpCONTAINS: true, OpCONTAINSANY: true, OpCONTAINSALL: true,
	OpCONTAINSTEXT: true, OpIS: true, OpTextSearch: true,
}

// Node is one element of the filter tree: a *Comparison leaf or a
// *Clause interior node.
type Node interface {
	Render(ctx *RenderContext) (string, error)
}

// Renderable is implemented by values that render themselves as a SQL
// fragment instead of a bound scalar -- specifically, subqueries used as
// the right-hand side of IN/CONTAINSANY/CONTAINSALL comparisons. The
// query package's Subquery type implements this; filter never imports
// query, avoiding a cycle.
type Renderable interface {
	Render(ctx *RenderContext) (string, error)
}

// Comparison is a single predicate: attr OP value, optionally negated.
type Comparison struct {
	Attr     string
	Operator Operator
	Value    any
	Negate   bool

	// prop, when set via NewComparison, drives defaulting/validation.
	// Comparisons built directly (not via NewComparison) skip that pass
	// and are trusted as already valid -- for comparisons against
	// bookkeeping columns the registry doesn't describe (deletedAt, etc).
	prop *schema.Property
}

// NewComparison builds and validates a Comparison against prop,
// applying spec §4.4's defaulting rules when operator is "" and running
// every validation rule before returning.
func NewComparison(attr string, value any, operator Operator, negate bool, prop *schema.Property) (*Comparison, error) {
	c := &Comparison{Attr: attr, Value: value, Operator: operator, Negate: negate, prop: prop}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

// RawComparison builds a Comparison with no registry-driven defaulting
// or validation, for bookkeeping-column predicates synthesized
// internally (e.g. "deletedAt IS NULL").
func RawComparison(attr string, operator Operator, value any, negate bool) *Comparison {
	return &Comparison{Attr: attr, Operator: operator, Value: value, Negate: negate}
}

func isSubqueryValue(v any) bool {
	_, ok := v.(Renderable)
	return ok
}

func isListValue(v any) bool {
	_, ok := v.([]any)
	return ok
}

// resolve applies defaulting (spec §4.4) when c.Operator is empty, then
// validates and casts c.Value.
func (c *Comparison) resolve() error {
	if c.prop == nil {
		return nil
	}
	if c.Operator == "" {
		c.Operator = c.defaultOperator()
	}
	if !comparisonOperators[c.Operator] {
		return graphkb.NewValidationError(c.Attr, "unrecognized operator", c.Operator)
	}
	return c.validate()
}

func (c *Comparison) defaultOperator() Operator {
	iterable := c.prop.Iterable()
	switch {
	case iterable && !isListValue(c.Value) && !isSubqueryValue(c.Value):
		return OpCONTAINS
	case iterable && isListValue(c.Value):
		return OpCONTAINSALL
	case iterable && isSubqueryValue(c.Value):
		return OpCONTAINSANY
	case !iterable && (isListValue(c.Value) || isSubqueryValue(c.Value)):
		return OpIN
	case c.Value == nil:
		return OpIS
	default:
		return OpEQ
	}
}

func (c *Comparison) validate() error {
	iterable := c.prop.Iterable()
	switch c.Operator {
	case OpGT, OpGTE, OpLT, OpLTE:
		if iterable {
			return graphkb.NewValidationError(c.Attr, "inequality operator forbidden on iterable property", c.Operator)
		}
	case OpCONTAINS, OpCONTAINSALL, OpCONTAINSANY, OpCONTAINSTEXT:
		if !iterable {
			return graphkb.NewValidationError(c.Attr, "CONTAINS* operator forbidden on non-iterable property", c.Operator)
		}
	case OpIN:
		if !isListValue(c.Value) && !isSubqueryValue(c.Value) {
			return graphkb.NewValidationError(c.Attr, "IN requires an iterable value", c.Value)
		}
	case OpEQ:
		if iterable && !isListValue(c.Value) && !isSubqueryValue(c.Value) {
			return graphkb.NewValidationError(c.Attr, "= against an iterable property requires an iterable value", c.Value)
		}
		if !iterable && (isListValue(c.Value) || isSubqueryValue(c.Value)) {
			return graphkb.NewValidationError(c.Attr, "= against a scalar property requires a scalar value", c.Value)
		}
	case OpIS:
		if c.Value != nil {
			return graphkb.NewValidationError(c.Attr, "IS is only valid against null", c.Value)
		}
	}

	return c.castAndCheckChoices()
}

func (c *Comparison) castAndCheckChoices() error {
	switch v := c.Value.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			cast, err := c.castOne(e)
			if err != nil {
				return err
			}
			out[i] = cast
		}
		c.Value = out
		return nil
	default:
		if isSubqueryValue(v) {
			return nil
		}
		cast, err := c.castOne(v)
		if err != nil {
			return err
		}
		c.Value = cast
		return nil
	}
}

func (c *Comparison) castOne(v any) (any, error) {
	if v == nil {
		if !c.prop.Nullable {
			return nil, graphkb.NewValidationError(c.Attr, "property is not nullable", v)
		}
		return nil, nil
	}
	if c.prop.Cast != nil {
		cast, err := c.prop.Cast(v)
		if err != nil {
			return nil, err
		}
		v = cast
	}
	if len(c.prop.Choices) > 0 && !choiceAllowed(c.prop.Choices, v) {
		return nil, graphkb.NewValidationError(c.Attr, "value not in choices", v)
	}
	return v, nil
}

func choiceAllowed(choices []any, v any) bool {
	for _, choice := range choices {
		if choice == v {
			return true
		}
	}
	return false
}
