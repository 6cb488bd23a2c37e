// AngelaMos | 2026
// role.go

package access

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleBackend    Role = "BACKEND"
	RoleTelecaller Role = "TELECALLER"
)

var AllRoles = []Role{RoleAdmin, RoleManager, RoleBackend, RoleTelecaller}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBackend, RoleTelecaller:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RequiresManager reports whether users of this role must belong to a MANAGER.
func (r Role) RequiresManager() bool {
	return r == RoleTelecaller || r == RoleBackend
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Actor is the authenticated principal a decision is made for.
type Actor struct {
	ID   string
	Role Role
}

// Subject is the minimal view of a user that policy decisions need.
type Subject struct {
	ID        string
	Role      Role
	ManagerID string
}

// allowedToCreate maps a creator role to the roles it may instantiate.
var allowedToCreate = map[Role]map[Role]struct{}{
	RoleAdmin:      {RoleManager: {}},
	RoleManager:    {RoleTelecaller: {}, RoleBackend: {}},
	RoleBackend:    {},
	RoleTelecaller: {},
}

func CreatableRoles(creator Role) []Role {
	out := make([]Role, 0, len(allowedToCreate[creator]))
	for _, r := range AllRoles {
		if _, ok := allowedToCreate[creator][r]; ok {
			out = append(out, r)
		}
	}
	return out
}
