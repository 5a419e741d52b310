package traversal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/schema"
	"github.com/bcgsc/graphkb-core/traversal"
)

func statementRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load([]*schema.Class{
		{Name: "AliasOf", IsEdge: true},
		{Name: "ImpliedBy", IsEdge: true},
		{
			Name: "Disease",
			Properties: map[string]*schema.Property{
				"name":      {Name: "name", Type: schema.TypeString},
				"reference": {Name: "reference", Type: schema.TypeLink, LinkedClass: "Source"},
				"aliases":   {Name: "aliases", Type: schema.TypeLinkSet, LinkedClass: "Disease"},
			},
		},
		{Name: "Source", Properties: map[string]*schema.Property{
			"name": {Name: "name", Type: schema.TypeString},
		}},
	})
	require.NoError(t, err)
	return reg
}

func TestValidateDirectProperty(t *testing.T) {
	reg := statementRegistry(t)
	path, err := traversal.ParseString("name")
	require.NoError(t, err)

	typ, err := traversal.Validate(reg, "Disease", path)
	require.NoError(t, err)
	assert.Equal(t, schema.TypeString, typ)
}

func TestValidateDescendsThroughLink(t *testing.T) {
	reg := statementRegistry(t)
	path, err := traversal.ParseString("reference.name")
	require.NoError(t, err)

	typ, err := traversal.Validate(reg, "Disease", path)
	require.NoError(t, err)
	assert.Equal(t, schema.TypeString, typ)
}

func TestValidateRejectsUnknownEdgeClass(t *testing.T) {
	reg := statementRegistry(t)
	path, err := traversal.ParseString("out(NotAnEdge)")
	require.NoError(t, err)

	_, err = traversal.Validate(reg, "Disease", path)
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestValidateRejectsUnknownProperty(t *testing.T) {
	reg := statementRegistry(t)
	path, err := traversal.ParseString("bogus")
	require.NoError(t, err)

	_, err = traversal.Validate(reg, "Disease", path)
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestValidateSizeResolvesToInteger(t *testing.T) {
	reg := statementRegistry(t)
	path, err := traversal.ParseString("aliases.size()")
	require.NoError(t, err)

	typ, err := traversal.Validate(reg, "Disease", path)
	require.NoError(t, err)
	assert.Equal(t, schema.TypeInteger, typ)
}
