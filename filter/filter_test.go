package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/filter"
	"github.com/bcgsc/graphkb-core/schema"
)

func scalarProp() *schema.Property {
	return &schema.Property{Name: "name", Type: schema.TypeString}
}

func iterableProp() *schema.Property {
	return &schema.Property{Name: "aliases", Type: schema.TypeEmbeddedList}
}

func TestDefaultOperatorScalarEquals(t *testing.T) {
	c, err := filter.NewComparison("name", "thing", "", false, scalarProp())
	require.NoError(t, err)
	assert.Equal(t, filter.OpEQ, c.Operator)
}

func TestDefaultOperatorScalarListBecomesIN(t *testing.T) {
	c, err := filter.NewComparison("name", []any{"a", "b"}, "", false, scalarProp())
	require.NoError(t, err)
	assert.Equal(t, filter.OpIN, c.Operator)
}

func TestDefaultOperatorIterableScalarBecomesCONTAINS(t *testing.T) {
	c, err := filter.NewComparison("aliases", "x", "", false, iterableProp())
	require.NoError(t, err)
	assert.Equal(t, filter.OpCONTAINS, c.Operator)
}

func TestDefaultOperatorIterableListBecomesCONTAINSALL(t *testing.T) {
	c, err := filter.NewComparison("aliases", []any{"x", "y"}, "", false, iterableProp())
	require.NoError(t, err)
	assert.Equal(t, filter.OpCONTAINSALL, c.Operator)
}

func TestDefaultOperatorNullBecomesIS(t *testing.T) {
	c, err := filter.NewComparison("name", nil, "", false, &schema.Property{Name: "name", Type: schema.TypeString, Nullable: true})
	require.NoError(t, err)
	assert.Equal(t, filter.OpIS, c.Operator)
}

func TestValidateRejectsInequalityOnIterable(t *testing.T) {
	_, err := filter.NewComparison("aliases", "x", filter.OpGT, false, iterableProp())
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestValidateRejectsContainsOnScalar(t *testing.T) {
	_, err := filter.NewComparison("name", "x", filter.OpCONTAINS, false, scalarProp())
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestValidateRejectsISWithNonNull(t *testing.T) {
	_, err := filter.NewComparison("name", "x", filter.OpIS, false, scalarProp())
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestValidateChoices(t *testing.T) {
	prop := &schema.Property{Name: "status", Type: schema.TypeString, Choices: []any{"active", "retired"}}
	_, err := filter.NewComparison("status", "unknown", filter.OpEQ, false, prop)
	assert.ErrorIs(t, err, graphkb.ErrValidation)

	c, err := filter.NewComparison("status", "active", filter.OpEQ, false, prop)
	require.NoError(t, err)
	assert.Equal(t, "active", c.Value)
}

func TestRenderFlatComparison(t *testing.T) {
	c, err := filter.NewComparison("name", "thing", "", false, scalarProp())
	require.NoError(t, err)

	ctx := filter.NewRenderContext()
	sql, err := c.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, "name = :p0", sql)
	assert.Equal(t, "thing", ctx.Params["p0"])
}

func TestRenderNestedAndOr(t *testing.T) {
	name, err := filter.NewComparison("name", "thing", "", false, scalarProp())
	require.NoError(t, err)
	sourceA, err := filter.NewComparison("sourceId", "1234", "", false, scalarProp())
	require.NoError(t, err)
	sourceB, err := filter.NewComparison("sourceId", "12345", "", false, scalarProp())
	require.NoError(t, err)

	tree := filter.And(name, filter.Or(sourceA, sourceB))

	ctx := filter.NewRenderContext()
	sql, err := tree.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, "name = :p0 AND (sourceId = :p1 OR sourceId = :p2)", sql)
}

func TestRenderNegation(t *testing.T) {
	c, err := filter.NewComparison("name", "thing", "", true, scalarProp())
	require.NoError(t, err)

	ctx := filter.NewRenderContext()
	sql, err := c.Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NOT (name = :p0)", sql)
}

func TestRenderNeverInterpolatesScalars(t *testing.T) {
	c, err := filter.NewComparison("name", "'; DROP TABLE Disease; --", "", false, scalarProp())
	require.NoError(t, err)

	ctx := filter.NewRenderContext()
	sql, err := c.Render(ctx)
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP TABLE")
	assert.Equal(t, "'; DROP TABLE Disease; --", ctx.Params["p0"])
}
