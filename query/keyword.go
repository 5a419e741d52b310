package query

import (
	"fmt"
	"strings"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
)

// KeywordSearch builds the single-pass, multi-class text search over
// Ontology/Variant/Statement described in spec §4.7, favouring the
// query_builder-generation semantics named in Design Notes §9 over the
// older per-class text-match form.
type KeywordSearch struct {
	Keywords   []string
	ActiveOnly bool
}

// NewKeywordSearch normalises keywords (lowercase, dedupe, reject terms
// shorter than MinWordSize) and returns a KeywordSearch defaulting
// ActiveOnly to true per spec §4.7.
func NewKeywordSearch(keywords []string) (*KeywordSearch, error) {
	normalized, err := normalizeKeywords(keywords)
	if err != nil {
		return nil, err
	}
	return &KeywordSearch{Keywords: normalized, ActiveOnly: true}, nil
}

func normalizeKeywords(keywords []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, k := range keywords {
		lower := strings.ToLower(strings.TrimSpace(k))
		if len(lower) < MinWordSize {
			return nil, graphkb.NewValidationError("keyword", fmt.Sprintf("must be at least %d characters", MinWordSize), k)
		}
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	if len(out) == 0 {
		return nil, graphkb.NewValidationError("keyword", "at least one keyword is required", keywords)
	}
	return out, nil
}

// Render implements filter.Renderable. It emits one SELECT using LET
// bindings to compute $ont, $variants, $implicable, and the final
// Statement result set in a single pass (spec §4.7), wrapped in an
// active-only filter when ActiveOnly is set.
func (k *KeywordSearch) Render(ctx *filter.RenderContext) (string, error) {
	ontCondition := k.matchCondition(ctx, []string{"sourceId", "name"})

	inner := fmt.Sprintf(
		"SELECT expand($result) LET "+
			"$ont = (SELECT FROM Ontology WHERE %s), "+
			"$variants = (SELECT FROM Variant WHERE type IN $ont OR reference1 IN $ont OR reference2 IN $ont), "+
			"$implicable = unionall($ont, $variants), "+
			"$result = (SELECT FROM Statement WHERE impliedBy CONTAINSANY $implicable OR supportedBy CONTAINSANY $ont OR appliesTo IN $implicable OR relevance IN $ont)",
		ontCondition,
	)
	if !k.ActiveOnly {
		return inner, nil
	}
	return fmt.Sprintf("SELECT * FROM (%s) WHERE deletedAt IS NULL", inner), nil
}

// matchCondition ORs together a CONTAINSTEXT comparison against each of
// fields for every normalised keyword.
func (k *KeywordSearch) matchCondition(ctx *filter.RenderContext, fields []string) string {
	var clauses []string
	for _, word := range k.Keywords {
		placeholder := ctx.Bind(word)
		var fieldClauses []string
		for _, f := range fields {
			fieldClauses = append(fieldClauses, fmt.Sprintf("%s CONTAINSTEXT %s", f, placeholder))
		}
		clauses = append(clauses, "("+strings.Join(fieldClauses, " OR ")+")")
	}
	return strings.Join(clauses, " OR ")
}
