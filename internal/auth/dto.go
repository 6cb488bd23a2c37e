// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

// Identity names a user by email or, failing that, by username.
type Identity struct {
	Email    string `json:"email"    validate:"omitempty,email,max=255"`
	UserName string `json:"userName" validate:"omitempty,max=64"`
}

func (i Identity) Empty() bool {
	return i.Email == "" && i.UserName == ""
}

type SendOTPRequest struct {
	Identity
}

type VerifyOTPRequest struct {
	Identity
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type SessionUser struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	Role       string    `json:"role"`
	ManagerID  *string   `json:"manager"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type LoginResponse struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// ToSessionUser never copies the one-time code or its expiry.
func ToSessionUser(u *UserInfo) SessionUser {
	return SessionUser{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		UserName:   u.UserName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       string(u.Role),
		ManagerID:  u.ManagerID,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
