// Package traversal compiles dotted attribute strings (e.g.
// "outE('ImpliedBy').inV().reference1.name") or their object-tree
// equivalent into a Path: a chain of Node values terminating in a
// property reference, per spec §4.3.
package traversal

import (
	graphkb "github.com/bcgsc/graphkb-core"
)

// NodeType distinguishes the three step kinds a Path may contain.
type NodeType string

const (
	// NodeDirect is a plain property access ("attr").
	NodeDirect NodeType = "DIRECT"
	// NodeEdge is an edge-set traversal ("in(...)", "out(...)", "both(...)").
	NodeEdge NodeType = "EDGE"
	// NodeLink follows a link/embedded property to another class.
	NodeLink NodeType = "LINK"
)

// Direction is the edge direction an EDGE node traverses.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// Node is one step of a Path.
type Node struct {
	Type NodeType

	// Attr names the property this node accesses. Required for
	// NodeDirect and NodeLink; forbidden for NodeEdge.
	Attr string

	// Edges restricts a NodeEdge to the named edge classes. Empty means
	// "all edges" (the bare inE/outE/bothE form).
	Edges []string
	// Direction is set only on NodeEdge.
	Direction Direction
	// Vertex, when true on a NodeEdge, means the step resolves to the
	// far-side vertex of the matched edges (a ".vertex" or ".inV()"-style
	// suffix)
	// instead of the edge records themselves.
	Vertex bool

	// Size, when true, means this node computes the cardinality of the
	// current iterable instead of descending further ("size()").
	Size bool

	// Child is the next step in the path. nil marks a terminal node.
	Child *Node
}

// Path is a parsed traversal: a (possibly singleton) chain of Nodes,
// with Terminal pointing at the node whose value is ultimately produced
// (the last node with no Child).
type Path struct {
	Root     *Node
	Terminal *Node
}

// TerminalAttr returns the Terminal node's property name, or "" when the
// path ends in an edge or size() step with no trailing attribute.
func (p *Path) TerminalAttr() string {
	if p.Terminal == nil {
		return ""
	}
	return p.Terminal.Attr
}

// objectNode mirrors the object form's {type, attr, edges, direction,
// child} shape (spec §4.3) as a JSON-tagged struct. ParseObject reads
// the same keys from a map[string]any and does not use this type.
type objectNode struct {
	Type      string      `json:"type"`
	Attr      string      `json:"attr"`
	Edges     []string    `json:"edges"`
	Direction string      `json:"direction"`
	Child     *objectNode `json:"child"`
}

// newValidationError is a small local alias kept for readability at call
// sites below.
func newValidationError(subject, reason string, value any) error {
	return graphkb.NewValidationError(subject, reason, value)
}
