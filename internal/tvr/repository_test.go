// AngelaMos | 2026
// repository_test.go

package tvr

import (
	"context"
	"net/http"
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

var leadRowColumns = []string{"name", "phone", "uploaded_by", "assigned_to", "tvr_form_id"}

func TestCreateLinksLeadInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT name, phone, uploaded_by, assigned_to, tvr_form_id\s+FROM leads WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(leadRowColumns).AddRow("Asha", "900", "m1", "t1", nil))
	mock.ExpectQuery(`(?s)INSERT INTO tvr_forms \(id, lead_id,.*\) VALUES \(\$1, \$2,.*RETURNING created_at, updated_at`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE leads SET tvr_form_id = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(sqlmock.AnyArg(), "lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	form := &Form{LeadID: "lead-1", CustomerName: "Asha", HouseType: HouseOwned}
	var seen LeadRef
	err := repo.Create(context.Background(), form, func(l LeadRef) error {
		seen = l
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, form.ID)
	require.Equal(t, now, form.CreatedAt)
	require.Equal(t, "m1", seen.UploadedBy)
	require.Equal(t, "t1", seen.AssignedToID())
	require.Equal(t, "Asha", form.Lead.Name)
}

func TestCreateConflictRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(leadRowColumns).AddRow("Asha", "900", "m1", nil, "form-0"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Form{LeadID: "lead-1"}, nil)
	require.Equal(t, http.StatusConflict, core.AsAppError(err).StatusCode)
}

func TestCreateGuardRejects(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(leadRowColumns).AddRow("Asha", "900", "m1", nil, nil))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Form{LeadID: "lead-1"}, func(LeadRef) error {
		return core.ForbiddenError("nope")
	})
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestCreateMissingLead(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM leads WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(leadRowColumns))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Form{LeadID: "ghost"}, nil)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteClearsLeadReference(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT lead_id FROM tvr_forms WHERE id = \$1 FOR UPDATE`).
		WithArgs("form-1").
		WillReturnRows(sqlmock.NewRows([]string{"lead_id"}).AddRow("lead-1"))
	mock.ExpectExec(`UPDATE leads SET tvr_form_id = NULL`).
		WithArgs("lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tvr_forms WHERE id = \$1`).
		WithArgs("form-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "form-1"))
}

func TestDeleteUnknownForm(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT lead_id FROM tvr_forms`).
		WithArgs("form-9").
		WillReturnRows(sqlmock.NewRows([]string{"lead_id"}))
	mock.ExpectRollback()

	require.ErrorIs(t, repo.Delete(context.Background(), "form-9"), core.ErrNotFound)
}

func TestListScopesThroughLead(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM tvr_forms f\s+JOIN leads l ON l.id = f.lead_id WHERE l.assigned_to = \$1`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`WHERE l.assigned_to = \$1 ORDER BY f.created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("t1", int64(10), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	forms, total, err := repo.List(context.Background(), access.LeadScope{AssignedTo: "t1"}, ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, forms)
}

func TestJSONListScan(t *testing.T) {
	var refs JSONList[Reference]
	require.NoError(t, refs.Scan([]byte(`[{"name":"Ravi","mobile":"1","address":"Pune"}]`)))
	require.Equal(t, "Ravi", refs[0].Name)

	var empty JSONList[string]
	require.NoError(t, empty.Scan(nil))
	require.NotNil(t, empty)

	v, err := JSONList[string](nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	require.Error(t, empty.Scan(42))
}
