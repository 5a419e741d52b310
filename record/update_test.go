package record

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/query"
)

var origTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func selectByRIDQuery(rid string) *query.WrapperQuery {
	return &query.WrapperQuery{
		Inner:       &query.Subquery{Target: query.RecordIDsTarget([]string{rid}), History: true},
		TargetClass: "Disease",
	}
}

func TestUpdateAppliesChangesAndSetsHistory(t *testing.T) {
	withFixedClock(t)
	store := newTestStore(t)
	sess, mock := newTestSession(t)
	user := graphkb.User{RecordID: "9:1"}

	mock.ExpectQuery(`SELECT \* FROM \[\$1\]`).
		WithArgs("10:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "name", "createdAt", "createdBy"}).
			AddRow("10:1", "oldname", origTime, "8:1"))

	mock.ExpectQuery(`INSERT INTO Disease SET`).
		WithArgs(origTime, "8:1", fixedNow, "9:1", "oldname").
		WillReturnRows(sqlmock.NewRows([]string{"@rid"}).AddRow("15:1"))

	mock.ExpectQuery(`UPDATE Disease SET history = \$1, name = \$2 WHERE @rid IN \[\$3\] RETURN AFTER`).
		WithArgs("15:1", "newname", "10:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "name", "history"}).AddRow("10:1", "newname", "15:1"))

	w := selectByRIDQuery("10:1")
	rec, err := store.Update(context.Background(), sess, "Disease", w, graphkb.Record{"name": "newname"}, user)
	require.NoError(t, err)
	assert.Equal(t, "newname", rec["name"])
	assert.Equal(t, "15:1", rec["history"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsEdgeClass(t *testing.T) {
	store := newTestStore(t)
	sess, mock := newTestSession(t)
	user := graphkb.User{RecordID: "9:1"}

	w := &query.WrapperQuery{Inner: &query.Subquery{Target: query.RecordIDsTarget([]string{"12:1"}), History: true}}
	_, err := store.Update(context.Background(), sess, "AliasOf", w, graphkb.Record{}, user)
	assert.ErrorIs(t, err, graphkb.ErrNotImplemented)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSoftDeletesVertex(t *testing.T) {
	withFixedClock(t)
	store := newTestStore(t)
	sess, mock := newTestSession(t)
	user := graphkb.User{RecordID: "9:1"}

	mock.ExpectQuery(`SELECT \* FROM \[\$1\]`).
		WithArgs("10:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "name", "createdAt", "createdBy"}).
			AddRow("10:1", "glioma", origTime, "8:1"))

	mock.ExpectQuery(`UPDATE Disease SET deletedAt = \$1, deletedBy = \$2 WHERE @rid IN \[\$3\] RETURN AFTER`).
		WithArgs(fixedNow, "9:1", "10:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "deletedAt", "deletedBy"}).AddRow("10:1", fixedNow, "9:1"))

	w := selectByRIDQuery("10:1")
	rec, err := store.Remove(context.Background(), sess, "Disease", w, user)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, rec["deletedAt"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveRepointsEdgeEndpoints(t *testing.T) {
	withFixedClock(t)
	store := newTestStore(t)
	sess, mock := newTestSession(t)
	user := graphkb.User{RecordID: "9:1"}

	mock.ExpectQuery(`SELECT \* FROM \[\$1\]`).
		WithArgs("12:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "out", "in", "createdAt", "createdBy"}).
			AddRow("12:1", "10:1", "10:2", origTime, "8:1"))

	mock.ExpectQuery(`SELECT \* FROM \(SELECT \* FROM \[\$1\]\) LIMIT 1`).
		WithArgs("10:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "@class", "name", "createdAt", "createdBy"}).
			AddRow("10:1", "Disease", "A", origTime, "8:1"))
	mock.ExpectQuery(`INSERT INTO Disease SET`).
		WithArgs(origTime, "8:1", fixedNow, "9:1", "A").
		WillReturnRows(sqlmock.NewRows([]string{"@rid"}).AddRow("20:1"))

	mock.ExpectQuery(`SELECT \* FROM \(SELECT \* FROM \[\$1\]\) LIMIT 1`).
		WithArgs("10:2").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "@class", "name", "createdAt", "createdBy"}).
			AddRow("10:2", "Disease", "B", origTime, "8:1"))
	mock.ExpectQuery(`INSERT INTO Disease SET`).
		WithArgs(origTime, "8:1", fixedNow, "9:1", "B").
		WillReturnRows(sqlmock.NewRows([]string{"@rid"}).AddRow("21:1"))

	mock.ExpectQuery(`UPDATE AliasOf SET deletedAt = \$1, deletedBy = \$2, in = \$3, out = \$4 WHERE @rid IN \[\$5\] RETURN AFTER`).
		WithArgs(fixedNow, "9:1", "21:1", "20:1", "12:1").
		WillReturnRows(sqlmock.NewRows([]string{"@rid", "out", "in"}).AddRow("12:1", "20:1", "21:1"))

	w := &query.WrapperQuery{Inner: &query.Subquery{Target: query.RecordIDsTarget([]string{"12:1"}), History: true}}
	rec, err := store.Remove(context.Background(), sess, "AliasOf", w, user)
	require.NoError(t, err)
	assert.Equal(t, "20:1", rec["out"])
	assert.Equal(t, "21:1", rec["in"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
