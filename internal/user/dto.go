// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/finyara/leadflow/internal/access"
)

type CreateUserRequest struct {
	FirstName string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string  `json:"lastName"  validate:"required,min=1,max=100"`
	UserName  string  `json:"userName"  validate:"required,min=3,max=64"`
	Email     string  `json:"email"     validate:"required,email,max=255"`
	Phone     *string `json:"phone"     validate:"omitempty,max=20"`
	Role      string  `json:"role"      validate:"required,oneof=ADMIN MANAGER BACKEND TELECALLER"`
}

// UpdateUserRequest is a patch: nil fields are left unchanged. Role and
// status are checked by the service once the caller may set them.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1,max=100"`
	UserName  *string `json:"userName"  validate:"omitempty,min=3,max=64"`
	Email     *string `json:"email"     validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone"     validate:"omitempty,max=20"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
	Status    *string `json:"status"`
}

type CreatedUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ManagerRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type UserResponse struct {
	ID         string      `json:"id"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	UserName   string      `json:"userName"`
	Email      string      `json:"email"`
	Phone      *string     `json:"phone"`
	Role       string      `json:"role"`
	Manager    *ManagerRef `json:"manager"`
	IsActive   bool        `json:"isActive"`
	IsVerified bool        `json:"isVerified"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type UserSummary struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	UserName  string  `json:"userName"`
	Phone     *string `json:"phone"`
	Role      string  `json:"role"`
}

// ManagerTree is one manager together with the TELECALLER and BACKEND users
// reporting to them.
type ManagerTree struct {
	UserSummary
	Team []UserSummary `json:"team"`
}

type UserTreeResponse struct {
	Users []ManagerTree `json:"users"`
}

type TeamMember struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	UserName string  `json:"userName"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

type TeamResponse struct {
	Users []TeamMember `json:"users"`
}

func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		UserName:   u.UserName,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}

	if u.ManagerID != nil {
		ref := &ManagerRef{ID: *u.ManagerID}
		if u.ManagerFirstName != nil {
			ref.FirstName = *u.ManagerFirstName
		}
		if u.ManagerLastName != nil {
			ref.LastName = *u.ManagerLastName
		}
		resp.Manager = ref
	}

	return resp
}

func toSummary(u *User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Phone:     u.Phone,
		Role:      string(u.Role),
	}
}

func toTeamMember(u *User) TeamMember {
	return TeamMember{
		ID:       u.ID,
		FullName: u.FullName(),
		UserName: u.UserName,
		Phone:    u.Phone,
		Role:     string(u.Role),
	}
}

// buildTrees groups team members under their manager, preserving the
// manager order.
func buildTrees(managers, members []User) []ManagerTree {
	byManager := make(map[string][]UserSummary, len(managers))
	for i := range members {
		m := &members[i]
		if m.ManagerID == nil {
			continue
		}
		byManager[*m.ManagerID] = append(byManager[*m.ManagerID], toSummary(m))
	}

	trees := make([]ManagerTree, 0, len(managers))
	for i := range managers {
		team := byManager[managers[i].ID]
		if team == nil {
			team = []UserSummary{}
		}
		trees = append(trees, ManagerTree{
			UserSummary: toSummary(&managers[i]),
			Team:        team,
		})
	}
	return trees
}

func teamRoles(filter access.Role) []access.Role {
	if filter != "" {
		return []access.Role{filter}
	}
	return []access.Role{access.RoleTelecaller, access.RoleBackend}
}
