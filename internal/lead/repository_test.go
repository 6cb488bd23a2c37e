// AngelaMos | 2026
// repository_test.go

package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestClaimOnlyWinsUnassigned(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(`(?s)UPDATE leads\s+SET assigned_to = \$3.*WHERE id = \$1 AND uploaded_by = \$2 AND assigned_to IS NULL`).
		WithArgs("l1", "m1", "t1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE leads`).
		WithArgs("l1", "m1", "t2", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.Claim(context.Background(), "l1", "m1", "t1", at)
	require.NoError(t, err)
	require.True(t, won)

	won, err = repo.Claim(context.Background(), "l1", "m1", "t2", at)
	require.NoError(t, err)
	require.False(t, won)
}

func TestReassignForeignLead(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now()

	mock.ExpectExec(`(?s)UPDATE leads\s+SET assigned_to = \$3.*WHERE id = \$1 AND uploaded_by = \$2`).
		WithArgs("l1", "m2", "t1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Reassign(context.Background(), "l1", "m2", "t1", at)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestInsertBatchRunsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads \(id, name, phone, uploaded_by, source_file_name\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\),\s*\(\$6`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.InsertBatch(context.Background(), "m1", "july.xlsx", []NewRow{
		{Name: "Asha", Phone: "1"},
		{Name: "Ravi", Phone: "2"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestInsertBatchRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.InsertBatch(context.Background(), "m1", "july.xlsx", []NewRow{{Name: "Asha", Phone: "1"}})
	require.Error(t, err)
}

func TestDeleteManyScopesToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id IN \(\$1, \$2\) AND uploaded_by = \$3`).
		WithArgs("a", "b", "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteMany(context.Background(), []string{"a", "b"}, "m1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestGetByIDScansJoinedPeople(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "seq", "name", "phone", "uploaded_by", "assigned_to", "assigned_at",
		"status", "first_call_date", "next_followup_date", "notes", "call_count",
		"last_contacted_at", "source_file_name", "tvr_form_id", "created_at",
		"updated_at",
		"assignee.first_name", "assignee.last_name", "assignee.user_name",
		"uploader.first_name", "uploader.last_name", "uploader.user_name",
	}).AddRow(
		"l1", int64(7), "Asha", "9000000001", "m1", nil, nil,
		"Not Called", nil, nil, "", 0,
		nil, "july.xlsx", nil, created,
		created,
		nil, nil, nil,
		"Mona", "Rao", "mona",
	)

	mock.ExpectQuery(`(?s)SELECT .*\s+FROM leads l\s+LEFT JOIN users a ON a.id = l.assigned_to\s+LEFT JOIN users u ON u.id = l.uploaded_by\s+WHERE l.id = \$1`).
		WithArgs("l1").
		WillReturnRows(rows)

	lead, err := repo.GetByID(context.Background(), "l1")
	require.NoError(t, err)
	require.False(t, lead.IsAssigned())
	require.Equal(t, StatusNotCalled, lead.Status)
	require.Equal(t, "Mona Rao", lead.Uploader.FullName())
	require.Equal(t, "", lead.Assignee.FullName())
}

func TestListBuildsScopedQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE l.uploaded_by = \$1 AND l.assigned_to IS NULL AND l.status = \$2 ORDER BY l.created_at DESC, l.seq DESC`).
		WithArgs("m1", string(StatusJunk)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	leads, err := repo.List(context.Background(), ListFilter{
		Scope:      access.LeadScope{UploadedBy: "m1"},
		Assignment: AssignmentUnassigned,
		Status:     StatusJunk,
	})
	require.NoError(t, err)
	require.Empty(t, leads)

	leads, err = repo.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Empty(t, leads, "an empty scope matches nothing")
}

func TestCountByStatusFillsZeros(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM leads GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("Converted", 4))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, len(AllStatuses))
	require.Equal(t, 4, counts[StatusConverted])
	require.Equal(t, 0, counts[StatusJunk])
}
