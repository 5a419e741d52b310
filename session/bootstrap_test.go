package session

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/dialect"
	sqldialect "github.com/bcgsc/graphkb-core/dialect/sql"
	"github.com/bcgsc/graphkb-core/schema"
)

func newTestPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	drv := sqldialect.OpenDB(dialect.Postgres, db)
	statsDrv := sqldialect.NewStatsDriver(drv)
	tokens := make(chan *Session, 1)
	tokens <- &Session{drv: statsDrv, dialect: dialect.Postgres}
	return &Pool{driver: statsDrv, tokens: tokens}, mock
}

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.Load([]*schema.Class{
		{Name: "User", Properties: map[string]*schema.Property{
			"name": {Name: "name", Type: schema.TypeString},
		}},
	})
	require.NoError(t, err)
	return reg
}

func TestBootstrapRunsCreateAndMigrationStatements(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectExec("CREATE DATABASE graphkb").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS User").WillReturnResult(sqlmock.NewResult(0, 0))

	err := Bootstrap(context.Background(), pool, testRegistry(t), BootstrapOptions{
		CreateDatabaseSQL: "CREATE DATABASE graphkb",
		MigrationSQL:      []string{"CREATE TABLE IF NOT EXISTS User (name text)"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrapSeedsAdminUserWhenAbsent(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectQuery(`SELECT \* FROM \(SELECT \* FROM User WHERE name = \$1\) WHERE deletedAt IS NULL`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"@rid"}))
	mock.ExpectExec("INSERT INTO User").WillReturnResult(sqlmock.NewResult(1, 1))

	err := Bootstrap(context.Background(), pool, testRegistry(t), BootstrapOptions{
		AdminUser: &AdminUserSeed{
			Class:         "User",
			Content:       graphkb.Record{"name": "admin"},
			ActiveColumns: []string{"name"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrapSkipsAdminSeedWhenPresent(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectQuery(`SELECT \* FROM \(SELECT \* FROM User WHERE name = \$1\) WHERE deletedAt IS NULL`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"@rid"}).AddRow("1:1"))

	err := Bootstrap(context.Background(), pool, testRegistry(t), BootstrapOptions{
		AdminUser: &AdminUserSeed{
			Class:         "User",
			Content:       graphkb.Record{"name": "admin"},
			ActiveColumns: []string{"name"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
