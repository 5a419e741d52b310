package record

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bcgsc/graphkb-core/dialect"
	sqldialect "github.com/bcgsc/graphkb-core/dialect/sql"
	"github.com/bcgsc/graphkb-core/permission"
	"github.com/bcgsc/graphkb-core/schema"
	"github.com/bcgsc/graphkb-core/session"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func withFixedClock(t *testing.T) {
	t.Helper()
	original := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = original })
}

func newTestSession(t *testing.T) (*session.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sqldialect.OpenDB(dialect.Postgres, db)
	return session.New(drv, dialect.Postgres), mock
}

// testRegistry loads a small class graph exercising an active-uniqueness
// index (Disease), a DisplayNameFunc hook (Variant), and an edge class
// (AliasOf) whose endpoints are Diseases.
func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load([]*schema.Class{
		{
			Name:             "Disease",
			ActiveProperties: []string{"name"},
			Properties: map[string]*schema.Property{
				"name":        {Name: "name", Type: schema.TypeString, Mandatory: true},
				"displayName": {Name: "displayName", Type: schema.TypeString},
			},
		},
		{
			Name:             "Variant",
			ActiveProperties: []string{"reference1"},
			Properties: map[string]*schema.Property{
				"reference1":  {Name: "reference1", Type: schema.TypeString, Mandatory: true},
				"displayName": {Name: "displayName", Type: schema.TypeString},
			},
			DisplayNameFunc: func(rec schema.Record) (string, error) {
				ref, _ := rec["reference1"].(string)
				return ref + "-variant", nil
			},
		},
		{
			Name:       "AliasOf",
			IsEdge:     true,
			Properties: map[string]*schema.Property{},
		},
	})
	require.NoError(t, err)
	return reg
}

func allowAllGate() *permission.Gate {
	return permission.NewGate(nil).WithRules(permission.AlwaysAllowRule())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testRegistry(t), allowAllGate())
}
