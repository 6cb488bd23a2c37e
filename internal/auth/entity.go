// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/finyara/leadflow/internal/access"
)

// UserInfo is the slice of a user record authentication works with.
type UserInfo struct {
	ID           string
	FirstName    string
	LastName     string
	UserName     string
	Email        string
	Phone        *string
	Role         access.Role
	ManagerID    *string
	IsActive     bool
	IsVerified   bool
	Status       string
	OTPHash      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const StatusActive = "ACTIVE"

func (u *UserInfo) CanSignIn() bool {
	return u.IsActive && u.Status == StatusActive
}

func (u *UserInfo) HasPendingOTP() bool {
	return u.OTPHash != nil && *u.OTPHash != "" && u.OTPExpiresAt != nil
}
