package cast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/cast"
)

func TestInteger(t *testing.T) {
	n, err := cast.Integer(42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = cast.Integer("7")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = cast.Integer(3.0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = cast.Integer(3.5)
	assert.ErrorIs(t, err, graphkb.ErrValidation)

	_, err = cast.Integer("not a number")
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

// TestBoolean verifies castBoolean is total over {t,true,1,f,false,0,null}
// in any case, and rejects everything else -- spec §8.
func TestBoolean(t *testing.T) {
	trueCases := []any{true, "t", "T", "true", "TRUE", "True", "1"}
	for _, v := range trueCases {
		got, err := cast.Boolean(v)
		require.NoError(t, err, "value %v", v)
		assert.True(t, got)
	}

	falseCases := []any{false, "f", "F", "false", "FALSE", "0", "null", "NULL", nil}
	for _, v := range falseCases {
		got, err := cast.Boolean(v)
		require.NoError(t, err, "value %v", v)
		assert.False(t, got)
	}

	rejected := []any{"yes", "no", 2, "", "2"}
	for _, v := range rejected {
		_, err := cast.Boolean(v)
		assert.ErrorIsf(t, err, graphkb.ErrValidation, "value %v should be rejected", v)
	}
}

func TestToRID(t *testing.T) {
	rid, err := cast.ToRID("#12:34")
	require.NoError(t, err)
	assert.Equal(t, "12:34", rid)

	rid, err = cast.ToRID("12:34")
	require.NoError(t, err)
	assert.Equal(t, "12:34", rid)

	rid, err = cast.ToRID(map[string]any{"recordId": "#1:1"})
	require.NoError(t, err)
	assert.Equal(t, "1:1", rid)

	_, err = cast.ToRID("not-a-rid")
	assert.ErrorIs(t, err, graphkb.ErrValidation)

	_, err = cast.ToRID(map[string]any{"name": "thing"})
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestRangeInt(t *testing.T) {
	n, err := cast.RangeInt(5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = cast.RangeInt(11, 1, 10)
	assert.ErrorIs(t, err, graphkb.ErrValidation)

	_, err = cast.RangeInt(0, 1, 10)
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}

func TestDecimalInteger(t *testing.T) {
	n, err := cast.DecimalInteger("12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = cast.DecimalInteger("12.5")
	assert.ErrorIs(t, err, graphkb.ErrValidation)
}
