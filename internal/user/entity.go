// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/finyara/leadflow/internal/access"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type User struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	UserName     string      `db:"user_name"`
	Email        string      `db:"email"`
	Phone        *string     `db:"phone"`
	Role         access.Role `db:"role"`
	ManagerID    *string     `db:"manager_id"`
	IsActive     bool        `db:"is_active"`
	IsVerified   bool        `db:"is_verified"`
	Status       string      `db:"status"`
	OTPHash      *string     `db:"otp_hash"`
	OTPExpiresAt *time.Time  `db:"otp_expires_at"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`

	ManagerFirstName *string `db:"manager_first_name"`
	ManagerLastName  *string `db:"manager_last_name"`
}

func (u *User) Subject() access.Subject {
	s := access.Subject{ID: u.ID, Role: u.Role}
	if u.ManagerID != nil {
		s.ManagerID = *u.ManagerID
	}
	return s
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
