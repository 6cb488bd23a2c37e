// AngelaMos | 2026
// policy.go

package access

import (
	"fmt"
	"slices"

	"github.com/finyara/leadflow/internal/core"
)

// CanCreate decides whether creator may create a user with the target role.
// It returns the manager id the new user must be stamped with, if any.
func CanCreate(creator Actor, target Role) (string, error) {
	if !target.Valid() {
		return "", core.BadRequestError(fmt.Sprintf("invalid role %q", target))
	}

	if _, ok := allowedToCreate[creator.Role][target]; !ok {
		return "", core.ForbiddenError(fmt.Sprintf(
			"%s is not allowed to create %s users",
			creator.Role,
			target,
		))
	}

	if target.RequiresManager() {
		if creator.Role != RoleManager {
			return "", core.ForbiddenError(fmt.Sprintf(
				"only a MANAGER can create %s users",
				target,
			))
		}
		return creator.ID, nil
	}

	return "", nil
}

// LeadScope is a visibility filter over leads. Empty fields do not restrict.
type LeadScope struct {
	All        bool
	UploadedBy string
	AssignedTo string
}

func (s LeadScope) Permits(uploadedBy, assignedTo string) bool {
	if s.All {
		return true
	}
	if s.UploadedBy != "" && s.UploadedBy != uploadedBy {
		return false
	}
	if s.AssignedTo != "" && s.AssignedTo != assignedTo {
		return false
	}
	return s.UploadedBy != "" || s.AssignedTo != ""
}

var leadScopes = map[Role]func(Actor) LeadScope{
	RoleAdmin:      func(Actor) LeadScope { return LeadScope{All: true} },
	RoleManager:    func(a Actor) LeadScope { return LeadScope{UploadedBy: a.ID} },
	RoleTelecaller: func(a Actor) LeadScope { return LeadScope{AssignedTo: a.ID} },
}

// LeadScopeFor fails closed for any role without an explicit scope.
func LeadScopeFor(a Actor) (LeadScope, error) {
	scope, ok := leadScopes[a.Role]
	if !ok {
		return LeadScope{}, core.ForbiddenError("your role has no access to leads")
	}
	return scope(a), nil
}

// VerificationScopeFor scopes TVR forms through their lead. BACKEND is the
// verification desk and sees every form.
func VerificationScopeFor(a Actor) (LeadScope, error) {
	if a.Role == RoleBackend {
		return LeadScope{All: true}, nil
	}
	return LeadScopeFor(a)
}

func ExportScopeFor(a Actor) (LeadScope, error) {
	switch a.Role {
	case RoleAdmin, RoleManager:
		return LeadScopeFor(a)
	}
	return LeadScope{}, core.ForbiddenError("only managers and admins can export leads")
}

// UserScope selects which manager subtrees a user listing covers.
type UserScope struct {
	AllManagers bool
	ManagerID   string
}

func UserScopeFor(a Actor, managerFilter string) (UserScope, error) {
	switch a.Role {
	case RoleAdmin:
		if managerFilter != "" {
			return UserScope{ManagerID: managerFilter}, nil
		}
		return UserScope{AllManagers: true}, nil
	case RoleManager:
		return UserScope{ManagerID: a.ID}, nil
	}
	return UserScope{}, core.ForbiddenError("you are not allowed to list users")
}

// TeamManagerFor resolves whose team self may list.
func TeamManagerFor(self Subject) (string, error) {
	switch self.Role {
	case RoleManager:
		return self.ID, nil
	case RoleTelecaller:
		if self.ManagerID == "" {
			return "", core.ForbiddenError("you are not assigned to a manager")
		}
		return self.ManagerID, nil
	}
	return "", core.ForbiddenError("you are not allowed to list team members")
}

func ownsTeamMember(a Actor, target Subject) bool {
	return a.Role == RoleManager &&
		target.Role.RequiresManager() &&
		target.ManagerID == a.ID
}

func CanView(a Actor, target Subject) error {
	switch {
	case a.Role == RoleAdmin:
		return nil
	case a.ID == target.ID:
		return nil
	case ownsTeamMember(a, target):
		return nil
	}
	return core.ForbiddenError("you are not allowed to view this user")
}

type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldUserName  Field = "userName"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldRole      Field = "role"
	FieldIsActive  Field = "isActive"
	FieldStatus    Field = "status"
)

type FieldSet map[Field]struct{}

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func fieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

var baseFields = []Field{FieldFirstName, FieldLastName, FieldUserName, FieldEmail, FieldPhone}

// UpdatableFields returns the fields a may change on target. Anything outside
// the set is dropped by the caller, not rejected.
func UpdatableFields(a Actor, target Subject) (FieldSet, error) {
	switch {
	case a.Role == RoleAdmin:
		return fieldSet(slices.Concat(baseFields, []Field{FieldRole, FieldIsActive, FieldStatus})...), nil
	case ownsTeamMember(a, target):
		return fieldSet(slices.Concat(baseFields, []Field{FieldRole})...), nil
	case a.ID == target.ID:
		return fieldSet(baseFields...), nil
	}
	return nil, core.ForbiddenError("you are not allowed to update this user")
}

// CanAssignRole checks the value of a role change that UpdatableFields allowed.
// An ADMIN cannot step down themselves, so the last ADMIN always remains.
func CanAssignRole(a Actor, target Subject, newRole Role) error {
	if !newRole.Valid() {
		return core.BadRequestError(fmt.Sprintf("invalid role %q", newRole))
	}
	if a.Role == RoleManager && !newRole.RequiresManager() {
		return core.ForbiddenError("managers can only assign TELECALLER or BACKEND roles")
	}
	if a.Role == RoleAdmin && target.ID == a.ID && newRole != RoleAdmin {
		return core.ForbiddenError("admins cannot change their own role")
	}
	return nil
}

// CanDirectTelecaller is the assignment guard: a manager may only hand leads
// to a TELECALLER on their own team.
func CanDirectTelecaller(a Actor, telecaller Subject) error {
	if a.Role != RoleManager {
		return core.ForbiddenError("only managers can assign leads")
	}
	if telecaller.Role != RoleTelecaller {
		return core.BadRequestError("leads can only be assigned to a TELECALLER")
	}
	if telecaller.ManagerID != a.ID {
		return core.ForbiddenError("telecaller does not belong to your team")
	}
	return nil
}

func CanUpdateLeadProgress(a Actor, assignedTo string) error {
	if a.Role != RoleTelecaller || assignedTo == "" || assignedTo != a.ID {
		return core.ForbiddenError("only the assigned telecaller can update this lead")
	}
	return nil
}
