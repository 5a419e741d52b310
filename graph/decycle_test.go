package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
)

func TestDecycleStubsSelfReference(t *testing.T) {
	rec := graphkb.Record{graphkb.KeyRID: "10:1", "name": "glioma"}
	rec["alias"] = rec

	out, ok := Decycle(rec).(graphkb.Record)
	require.True(t, ok)
	assert.Equal(t, "glioma", out["name"])

	alias, ok := out["alias"].(graphkb.Record)
	require.True(t, ok)
	assert.Equal(t, graphkb.Record{graphkb.KeyRID: "10:1"}, alias)
}

func TestDecycleLeavesDiamondSharedRecordIntact(t *testing.T) {
	shared := graphkb.Record{graphkb.KeyRID: "11:1", "name": "shared"}
	rec := graphkb.Record{
		graphkb.KeyRID: "10:1",
		"left":         shared,
		"right":        shared,
	}

	out, ok := Decycle(rec).(graphkb.Record)
	require.True(t, ok)
	left := out["left"].(graphkb.Record)
	right := out["right"].(graphkb.Record)
	assert.Equal(t, "shared", left["name"])
	assert.Equal(t, "shared", right["name"])
}

func TestDecycleIsIdempotentOnAcyclicInput(t *testing.T) {
	rec := graphkb.Record{
		graphkb.KeyRID: "10:1",
		"name":         "glioma",
		"linked": []any{
			graphkb.Record{graphkb.KeyRID: "11:1", "name": "child"},
		},
	}

	once := Decycle(rec)
	twice := Decycle(once)
	assert.Equal(t, once, twice)
}
