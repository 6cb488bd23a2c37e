// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/auth"
	"github.com/finyara/leadflow/internal/config"
	"github.com/finyara/leadflow/internal/core"
)

// OTPIssuer is satisfied by *auth.OTPIssuer.
type OTPIssuer interface {
	Issue(ctx context.Context, userID, email string) error
}

type Service struct {
	repo   Repository
	otp    OTPIssuer
	logger *slog.Logger
}

func NewService(repo Repository, otp OTPIssuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, otp: otp, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseUserID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return core.BadRequestError("invalid user id")
	}
	return nil
}

// Create adds a user on behalf of creator. New users start active and
// unverified, with a login code mailed to them. A failed code leaves the user
// in place; send-otp issues a new one.
func (s *Service) Create(
	ctx context.Context,
	creator access.Actor,
	req CreateUserRequest,
) (*User, error) {
	role := access.Role(req.Role)

	managerID, err := access.CanCreate(creator, role)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	userName := strings.TrimSpace(req.UserName)

	exists, err := s.repo.ExistsByIdentity(ctx, email, userName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("create user: %w", errIdentityUsed)
	}

	user := &User{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		UserName:  userName,
		Email:     email,
		Phone:     req.Phone,
		Role:      role,
		IsActive:  true,
		Status:    StatusActive,
	}
	if managerID != "" {
		user.ManagerID = &managerID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.otp.Issue(ctx, user.ID, user.Email); err != nil {
		s.logger.WarnContext(ctx, "initial login code not issued",
			"user_id", user.ID,
			"error", err,
		)
	}

	return user, nil
}

// List returns manager trees: every manager for ADMIN (or one, when
// managerFilter is set), and the caller's own tree for a MANAGER.
func (s *Service) List(
	ctx context.Context,
	actor access.Actor,
	managerFilter string,
) ([]ManagerTree, error) {
	scope, err := access.UserScopeFor(actor, managerFilter)
	if err != nil {
		return nil, err
	}

	if !scope.AllManagers {
		if err := parseUserID(scope.ManagerID); err != nil {
			return nil, err
		}
	}

	managers, err := s.repo.ListManagers(ctx, scope.ManagerID)
	if err != nil {
		return nil, err
	}

	if actor.Role == access.RoleManager && len(managers) == 0 {
		return nil, core.NotFoundError("manager")
	}

	ids := make([]string, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}

	members, err := s.repo.ListTeams(ctx, ids, teamRoles(""))
	if err != nil {
		return nil, err
	}

	return buildTrees(managers, members), nil
}

// Team lists the users who share a manager with the caller. A MANAGER sees
// their own team.
func (s *Service) Team(
	ctx context.Context,
	actor access.Actor,
	roleFilter string,
) ([]TeamMember, error) {
	var role access.Role
	if roleFilter != "" {
		parsed, err := access.ParseRole(roleFilter)
		if err != nil || !parsed.RequiresManager() {
			return nil, core.BadRequestError("role must be TELECALLER or BACKEND")
		}
		role = parsed
	}

	self, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	managerID, err := access.TeamManagerFor(self.Subject())
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListTeams(ctx, []string{managerID}, teamRoles(role))
	if err != nil {
		return nil, err
	}

	team := make([]TeamMember, 0, len(members))
	for i := range members {
		team = append(team, toTeamMember(&members[i]))
	}
	return team, nil
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id string) (*User, error) {
	if err := parseUserID(id); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.CanView(actor, user.Subject()); err != nil {
		return nil, err
	}

	return user, nil
}

// Update applies the fields of req that actor may change on the target.
// Fields outside that set are ignored.
func (s *Service) Update(
	ctx context.Context,
	actor access.Actor,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	if err := parseUserID(id); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := access.UpdatableFields(actor, user.Subject())
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil && fields.Has(access.FieldFirstName) {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil && fields.Has(access.FieldLastName) {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.UserName != nil && fields.Has(access.FieldUserName) {
		user.UserName = strings.TrimSpace(*req.UserName)
	}
	if req.Email != nil && fields.Has(access.FieldEmail) {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil && fields.Has(access.FieldPhone) {
		user.Phone = req.Phone
	}
	if req.IsActive != nil && fields.Has(access.FieldIsActive) {
		user.IsActive = *req.IsActive
	}
	if req.Status != nil && fields.Has(access.FieldStatus) {
		if *req.Status != StatusActive && *req.Status != StatusInactive {
			return nil, core.BadRequestError("status must be one of [ACTIVE INACTIVE]")
		}
		user.Status = *req.Status
	}

	if req.Role != nil && fields.Has(access.FieldRole) {
		if err := s.changeRole(ctx, actor, user, access.Role(*req.Role)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// changeRole keeps manager_id consistent with the new role. A MANAGER who
// still owns a team keeps the role until the team is empty.
func (s *Service) changeRole(
	ctx context.Context,
	actor access.Actor,
	user *User,
	role access.Role,
) error {
	if err := access.CanAssignRole(actor, user.Subject(), role); err != nil {
		return err
	}

	if user.Role == access.RoleManager && role != access.RoleManager {
		team, err := s.repo.ListTeams(ctx, []string{user.ID}, teamRoles(""))
		if err != nil {
			return err
		}
		if len(team) > 0 {
			return core.NewAppError(
				core.ErrInvalidInput,
				fmt.Sprintf("manager still owns %d team members", len(team)),
				http.StatusConflict,
				"CONFLICT",
			)
		}
	}

	if role.RequiresManager() {
		if user.ManagerID == nil {
			return core.BadRequestError(fmt.Sprintf(
				"%s users must belong to a manager",
				role,
			))
		}
	} else {
		user.ManagerID = nil
		user.ManagerFirstName = nil
		user.ManagerLastName = nil
	}

	user.Role = role
	return nil
}

func (s *Service) RoleCounts(ctx context.Context) (map[access.Role]int, error) {
	counts := make(map[access.Role]int, len(access.AllRoles))
	for _, role := range access.AllRoles {
		n, err := s.repo.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, nil
}

// EnsureAdmin creates the configured bootstrap ADMIN when no ADMIN exists.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	cfg config.BootstrapConfig,
	logger *slog.Logger,
) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	admins, err := s.repo.CountByRole(ctx, access.RoleAdmin)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	admin := &User{
		ID:        uuid.New().String(),
		FirstName: cfg.AdminFirstName,
		LastName:  cfg.AdminLastName,
		UserName:  cfg.AdminUserName,
		Email:     normalizeEmail(cfg.AdminEmail),
		Role:      access.RoleAdmin,
		IsActive:  true,
		Status:    StatusActive,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	logger.Info("bootstrap admin created",
		"user_id", admin.ID,
		"user_name", admin.UserName,
	)
	return nil
}

func (s *Service) GetByIdentity(
	ctx context.Context,
	email, userName string,
) (*auth.UserInfo, error) {
	var (
		user *User
		err  error
	)
	if email != "" {
		user, err = s.repo.GetByEmail(ctx, normalizeEmail(email))
	} else {
		user, err = s.repo.GetByUserName(ctx, strings.TrimSpace(userName))
	}
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get user: %w", errUserNotFound)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) ConsumeOTP(ctx context.Context, userID, otpHash string) (bool, error) {
	return s.repo.ConsumeOTP(ctx, userID, otpHash)
}

// Subject loads the policy view of a user, used by other packages to check
// team ownership.
func (s *Service) Subject(ctx context.Context, id string) (access.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return access.Subject{}, core.BadRequestError("invalid user id")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return access.Subject{}, err
	}

	return user.Subject(), nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		UserName:     u.UserName,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		ManagerID:    u.ManagerID,
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		Status:       u.Status,
		OTPHash:      u.OTPHash,
		OTPExpiresAt: u.OTPExpiresAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var (
	_ auth.UserProvider = (*Service)(nil)
	_ auth.OTPStore     = (Repository)(nil)
)
