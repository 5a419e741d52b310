package query

import (
	"fmt"
	"strings"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/schema"
)

// FixedSubqueryKind names one of the four parameterised graph-algorithm
// templates spec §4.5 defines.
type FixedSubqueryKind string

const (
	KindAncestors    FixedSubqueryKind = "ancestors"
	KindDescendants  FixedSubqueryKind = "descendants"
	KindNeighborhood FixedSubqueryKind = "neighborhood"
	KindSimilarTo    FixedSubqueryKind = "similarTo"
)

// FixedSubquery realises one of the four graph-algorithm templates,
// composing a base Subquery (spec §4.5).
type FixedSubquery struct {
	Kind    FixedSubqueryKind
	Base    *Subquery
	Edges   []string
	Depth   int
	History bool
}

// NewFixedSubquery validates edges against reg (each must name a known
// edge class) and depth against the bound appropriate to kind, applying
// spec §4.5's defaulting (edges default to ["SubClassOf"] for the tree
// queries).
func NewFixedSubquery(kind FixedSubqueryKind, reg *schema.Registry, base *Subquery, edges []string, depth int, history bool) (*FixedSubquery, error) {
	if len(edges) == 0 && (kind == KindAncestors || kind == KindDescendants) {
		edges = append([]string(nil), defaultTreeEdges...)
	}
	for _, e := range edges {
		c, ok := reg.Get(e)
		if !ok {
			return nil, graphkb.NewValidationError("edges", "unknown edge class", e)
		}
		if !c.IsEdge {
			return nil, graphkb.NewValidationError("edges", "not an edge class", e)
		}
	}

	switch kind {
	case KindAncestors, KindDescendants:
		if depth < 1 || depth > MaxTravelDepth {
			return nil, graphkb.NewValidationError("depth", fmt.Sprintf("must be between 1 and %d", MaxTravelDepth), depth)
		}
	case KindNeighborhood:
		if depth < 0 || depth > MaxNeighbors {
			return nil, graphkb.NewValidationError("depth", fmt.Sprintf("must be between 0 and %d", MaxNeighbors), depth)
		}
	case KindSimilarTo:
		// similarTo's depth is fixed by its two-pass algorithm; the
		// caller-supplied depth is ignored.
	default:
		return nil, graphkb.NewValidationError("kind", "unrecognized fixed subquery kind", kind)
	}

	return &FixedSubquery{Kind: kind, Base: base, Edges: edges, Depth: depth, History: history}, nil
}

// Render emits the kind-specific SQL template, wrapped in an
// active-only filter unless History is set.
func (f *FixedSubquery) Render(ctx *filter.RenderContext) (string, error) {
	var inner string
	var err error
	switch f.Kind {
	case KindAncestors:
		inner, err = f.renderTraverse(ctx, "in")
	case KindDescendants:
		inner, err = f.renderTraverse(ctx, "out")
	case KindNeighborhood:
		inner, err = f.renderNeighborhood(ctx)
	case KindSimilarTo:
		inner, err = f.renderSimilarTo(ctx)
	default:
		return "", graphkb.NewValidationError("kind", "unrecognized fixed subquery kind", f.Kind)
	}
	if err != nil {
		return "", err
	}
	if f.History {
		return inner, nil
	}
	return fmt.Sprintf("SELECT * FROM (%s) WHERE deletedAt IS NULL", inner), nil
}

func (f *FixedSubquery) renderTraverse(ctx *filter.RenderContext, direction string) (string, error) {
	baseSQL, err := f.Base.RenderInner(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TRAVERSE %s(%s) FROM (%s) MAXDEPTH %d", direction, quoteEdgeList(f.Edges), baseSQL, f.Depth), nil
}

// renderNeighborhood builds a pattern-match traversal in both directions
// bounded by f.Depth, returning distinct reachable elements (spec §4.5).
// Modelled as a bounded-depth TRAVERSE wrapped in a DISTINCT projection,
// since the store's MATCH pattern syntax is not otherwise exercised by
// this codebase's fixed subqueries.
func (f *FixedSubquery) renderNeighborhood(ctx *filter.RenderContext) (string, error) {
	baseSQL, err := f.Base.RenderInner(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"SELECT DISTINCT * FROM (TRAVERSE both(%s) FROM (%s) MAXDEPTH %d)",
		quoteEdgeList(f.Edges), baseSQL, f.Depth,
	), nil
}

// renderSimilarTo implements the three-stage similarity algorithm (spec
// §4.5): a first disambiguation pass over the fixed similarity edge set,
// a SubClassOf closure over that result, then a second disambiguation
// pass over the union -- deduplicated by recordId. Every stage includes
// the seed set itself (TRAVERSE MAXDEPTH includes depth 0), which is
// what gives the algorithm its reflexivity property (spec §8).
func (f *FixedSubquery) renderSimilarTo(ctx *filter.RenderContext) (string, error) {
	baseSQL, err := f.Base.RenderInner(ctx)
	if err != nil {
		return "", err
	}
	firstPass := fmt.Sprintf("TRAVERSE both(%s) FROM (%s) MAXDEPTH 1", quoteEdgeList(similarToEdges), baseSQL)
	closure := fmt.Sprintf("TRAVERSE both('SubClassOf') FROM (%s) MAXDEPTH %d", firstPass, MaxTravelDepth)
	secondPass := fmt.Sprintf("TRAVERSE both(%s) FROM (%s) MAXDEPTH 1", quoteEdgeList(similarToEdges), closure)
	return fmt.Sprintf("SELECT DISTINCT * FROM (%s)", secondPass), nil
}

func quoteEdgeList(edges []string) string {
	quoted := make([]string, len(edges))
	for i, e := range edges {
		quoted[i] = "'" + e + "'"
	}
	return strings.Join(quoted, ", ")
}
