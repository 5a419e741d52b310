// Package query builds parameterised SQL for the subquery, fixed
// subquery, wrapper, and keyword-search shapes (spec §4.5-4.7). Every
// Build/Render method returns (sqlText, params) pairs produced entirely
// from a filter.RenderContext; no user-supplied scalar is ever spliced
// directly into SQL text.
package query

// Bounds on traversal and pagination depth/size, enforced at parse time
// so a malformed or adversarial request cannot start an unbounded
// traversal or return an unbounded result set (spec §5).
const (
	// MaxTravelDepth bounds ancestors/descendants TRAVERSE MAXDEPTH.
	MaxTravelDepth = 50
	// MaxNeighbors bounds both neighborhood's traversal depth and the
	// wrapper query's nested-projection depth.
	MaxNeighbors = 3
	// MaxLimit bounds a wrapper query's row limit; also its default.
	MaxLimit = 1000
	// MinWordSize rejects keyword-search terms shorter than this after
	// normalisation.
	MinWordSize = 3
)

// defaultTreeEdges is the edge class used for ancestors/descendants when
// the caller does not name one (spec §4.5).
var defaultTreeEdges = []string{"SubClassOf"}

// similarToEdges is the fixed edge set similarTo's first disambiguation
// pass traverses (spec §4.5).
var similarToEdges = []string{
	"AliasOf", "ElementOf", "CrossReferenceOf", "DeprecatedBy", "GeneralizationOf", "Infers",
}
