// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestConsumeOTPIsConditional(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`(?s)UPDATE users\s+SET otp_hash = NULL.*WHERE id = \$1 AND otp_hash = \$2`).
		WithArgs("u1", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users\s+SET otp_hash = NULL`).
		WithArgs("u1", "hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ConsumeOTP(ctx, "u1", "hash")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ConsumeOTP(ctx, "u1", "hash")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetOTPUnknownUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	exp := time.Now().Add(10 * time.Minute)

	mock.ExpectExec(`UPDATE users\s+SET otp_hash = \$2, otp_expires_at = \$3`).
		WithArgs("ghost", "hash", exp).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetOTP(context.Background(), "ghost", "hash", exp)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT .*\s+FROM users u\s+LEFT JOIN users m ON m.id = u.manager_id\s+WHERE u.id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		ID:     "u1",
		Role:   access.RoleManager,
		Status: StatusActive,
	})
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 409, appErr.StatusCode)
}

func TestListTeamsExpandsAndRebinds(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE u.manager_id IN \(\$1, \$2\) AND u.role IN \(\$3\)`).
		WithArgs("m1", "m2", "TELECALLER").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "role", "manager_id"}).
			AddRow("t1", "t1", "TELECALLER", "m1"))

	users, err := repo.ListTeams(
		context.Background(),
		[]string{"m1", "m2"},
		[]access.Role{access.RoleTelecaller},
	)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, access.RoleTelecaller, users[0].Role)
	require.Equal(t, "m1", *users[0].ManagerID)
}

func TestListTeamsEmptyInputSkipsQuery(t *testing.T) {
	repo, _ := newMockRepo(t)

	users, err := repo.ListTeams(context.Background(), nil, []access.Role{access.RoleBackend})
	require.NoError(t, err)
	require.Empty(t, users)
}
