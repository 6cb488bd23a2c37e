// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

var (
	errUserNotFound = core.NotFoundError("user")
	errIdentityUsed = core.DuplicateError("email or username")
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	ExistsByIdentity(ctx context.Context, email, userName string) (bool, error)
	Update(ctx context.Context, user *User) error
	SetOTP(ctx context.Context, userID, otpHash string, expiresAt time.Time) error
	ConsumeOTP(ctx context.Context, userID, otpHash string) (bool, error)
	ListManagers(ctx context.Context, managerID string) ([]User, error)
	ListTeams(ctx context.Context, managerIDs []string, roles []access.Role) ([]User, error)
	CountByRole(ctx context.Context, role access.Role) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	u.id, u.first_name, u.last_name, u.user_name, u.email, u.phone, u.role,
	u.manager_id, u.is_active, u.is_verified, u.status, u.otp_hash,
	u.otp_expires_at, u.created_at, u.updated_at,
	m.first_name AS manager_first_name, m.last_name AS manager_last_name`

const userFrom = `
	FROM users u
	LEFT JOIN users m ON m.id = u.manager_id`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, user_name, email, phone,
		                   role, manager_id, is_active, is_verified, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.UserName,
		user.Email,
		user.Phone,
		user.Role,
		user.ManagerID,
		user.IsActive,
		user.IsVerified,
		user.Status,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", errIdentityUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(ctx context.Context, op, where string, arg any) (*User, error) {
	query := "SELECT " + userColumns + userFrom + " WHERE " + where

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "u.id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "u.email = $1", email)
}

func (r *repository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	return r.getOne(ctx, "get user by username", "u.user_name = $1", userName)
}

func (r *repository) ExistsByIdentity(
	ctx context.Context,
	email, userName string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR user_name = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, userName); err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, user_name = $4, email = $5,
		    phone = $6, role = $7, manager_id = $8, is_active = $9,
		    status = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.UserName,
		user.Email,
		user.Phone,
		user.Role,
		user.ManagerID,
		user.IsActive,
		user.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", errUserNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", errIdentityUsed)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) SetOTP(
	ctx context.Context,
	userID, otpHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET otp_hash = $2, otp_expires_at = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, otpHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set otp: %w", errUserNotFound)
	}

	return nil
}

func (r *repository) ConsumeOTP(
	ctx context.Context,
	userID, otpHash string,
) (bool, error) {
	query := `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL, is_verified = TRUE,
		    updated_at = NOW()
		WHERE id = $1 AND otp_hash = $2`

	result, err := r.db.ExecContext(ctx, query, userID, otpHash)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	return rows == 1, nil
}

// ListManagers returns every MANAGER, or just the one with managerID when it
// is set.
func (r *repository) ListManagers(
	ctx context.Context,
	managerID string,
) ([]User, error) {
	query := "SELECT " + userColumns + userFrom + " WHERE u.role = $1"
	args := []any{access.RoleManager}

	if managerID != "" {
		query += " AND u.id = $2"
		args = append(args, managerID)
	}
	query += " ORDER BY u.created_at"

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	return users, nil
}

func (r *repository) ListTeams(
	ctx context.Context,
	managerIDs []string,
	roles []access.Role,
) ([]User, error) {
	if len(managerIDs) == 0 || len(roles) == 0 {
		return []User{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT "+userColumns+userFrom+
			" WHERE u.manager_id IN (?) AND u.role IN (?) ORDER BY u.created_at",
		managerIDs,
		roles,
	)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return users, nil
}

func (r *repository) CountByRole(ctx context.Context, role access.Role) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, role); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
