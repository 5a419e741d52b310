package traversal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/traversal"
)

func TestParseObjectDirect(t *testing.T) {
	path, err := traversal.ParseObject(map[string]any{
		"type": "DIRECT",
		"attr": "name",
	})
	require.NoError(t, err)
	assert.Equal(t, "name", path.Root.Attr)
}

func TestParseObjectLinkRequiresChild(t *testing.T) {
	_, err := traversal.ParseObject(map[string]any{
		"type": "LINK",
		"attr": "source",
	})
	assert.NoError(t, err) // structural parse succeeds; registry-aware Validate enforces the child requirement

	path, err := traversal.ParseObject(map[string]any{
		"type": "LINK",
		"attr": "source",
		"child": map[string]any{
			"type": "DIRECT",
			"attr": "name",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, traversal.NodeLink, path.Root.Type)
	assert.Equal(t, "name", path.Terminal.Attr)
}

func TestParseObjectEdgeForbidsAttr(t *testing.T) {
	_, err := traversal.ParseObject(map[string]any{
		"type": "EDGE",
		"attr": "name",
	})
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestParseObjectEdgeWithDirectionAndEdges(t *testing.T) {
	path, err := traversal.ParseObject(map[string]any{
		"type":      "EDGE",
		"direction": "out",
		"edges":     []any{"AliasOf"},
	})
	require.NoError(t, err)
	assert.Equal(t, traversal.DirectionOut, path.Root.Direction)
	assert.Equal(t, []string{"AliasOf"}, path.Root.Edges)
}
