// AngelaMos | 2026
// service.go

package lead

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

// maxClaimRounds bounds how often Assign re-reads candidates after losing
// races to concurrent assigners.
const maxClaimRounds = 5

var errNoUnassigned = core.NewAppError(
	core.ErrNotFound,
	"no unassigned leads available",
	http.StatusNotFound,
	"NOT_FOUND",
)

// Directory resolves users for ownership checks; *user.Service implements it.
type Directory interface {
	Subject(ctx context.Context, id string) (access.Subject, error)
}

type Service struct {
	repo   Repository
	users  Directory
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func requireManager(actor access.Actor) error {
	if actor.Role != access.RoleManager {
		return core.ForbiddenError("only managers can manage leads")
	}
	return nil
}

func parseLeadID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return core.BadRequestError("invalid lead id")
	}
	return nil
}

// Upload stores the rows as new unassigned leads owned by the manager.
func (s *Service) Upload(
	ctx context.Context,
	actor access.Actor,
	fileName string,
	rows []NewRow,
) (int, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, core.BadRequestError("no valid leads found in the uploaded file")
	}

	count, err := s.repo.InsertBatch(ctx, actor.ID, fileName, rows)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "leads uploaded",
		"manager_id", actor.ID,
		"file", fileName,
		"count", count,
	)
	return count, nil
}

// telecallerFor loads the target and checks that actor may hand it leads.
func (s *Service) telecallerFor(
	ctx context.Context,
	actor access.Actor,
	telecallerID string,
) error {
	if err := requireManager(actor); err != nil {
		return err
	}

	telecaller, err := s.users.Subject(ctx, telecallerID)
	if err != nil {
		return err
	}

	return access.CanDirectTelecaller(actor, telecaller)
}

// Assign claims up to count of the manager's unassigned leads for the
// telecaller, oldest first. Each lead is claimed by its own conditional
// update, so concurrent calls never hand the same lead out twice.
func (s *Service) Assign(
	ctx context.Context,
	actor access.Actor,
	req AssignRequest,
) (int, error) {
	if req.Count < 1 {
		return 0, core.BadRequestError("count must be at least 1")
	}

	if err := s.telecallerFor(ctx, actor, req.TelecallerID); err != nil {
		return 0, err
	}

	ctx, span := core.StartSpan(ctx, "lead.assign",
		attribute.String("manager.id", actor.ID),
		attribute.String("telecaller.id", req.TelecallerID),
		attribute.Int("lead.requested", req.Count),
	)
	defer span.End()

	now := s.now()
	claimed := 0

	for round := 0; claimed < req.Count && round < maxClaimRounds; round++ {
		ids, err := s.repo.UnassignedIDs(ctx, actor.ID, req.Count-claimed)
		if err != nil {
			core.SetSpanError(ctx, err)
			return claimed, err
		}

		if len(ids) == 0 {
			if round == 0 {
				return 0, errNoUnassigned
			}
			break
		}

		won := 0
		for _, id := range ids {
			ok, err := s.repo.Claim(ctx, id, actor.ID, req.TelecallerID, now)
			if err != nil {
				core.SetSpanError(ctx, err)
				return claimed, err
			}
			if ok {
				won++
			}
		}
		claimed += won

		core.AddSpanEvent(ctx, "claim round",
			attribute.Int("round", round),
			attribute.Int("candidates", len(ids)),
			attribute.Int("claimed", won),
		)
	}

	span.SetAttributes(attribute.Int("lead.assigned", claimed))
	s.logger.InfoContext(ctx, "leads assigned",
		"manager_id", actor.ID,
		"telecaller_id", req.TelecallerID,
		"requested", req.Count,
		"assigned", claimed,
	)

	return claimed, nil
}

func (s *Service) Reassign(
	ctx context.Context,
	actor access.Actor,
	leadID, telecallerID string,
) (*Lead, error) {
	if err := parseLeadID(leadID); err != nil {
		return nil, err
	}

	if err := s.telecallerFor(ctx, actor, telecallerID); err != nil {
		return nil, err
	}

	if err := s.repo.Reassign(ctx, leadID, actor.ID, telecallerID, s.now()); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, leadID)
}

func (s *Service) ManagerLeads(
	ctx context.Context,
	actor access.Actor,
	listType string,
) ([]Lead, Assignment, error) {
	if err := requireManager(actor); err != nil {
		return nil, "", err
	}

	assignment, err := ParseAssignment(listType)
	if err != nil {
		return nil, "", core.BadRequestError(
			"invalid type, use 'assigned', 'unassigned' or omit for all",
		)
	}

	leads, err := s.repo.List(ctx, ListFilter{
		Scope:      access.LeadScope{UploadedBy: actor.ID},
		Assignment: assignment,
	})
	return leads, assignment, err
}

func (s *Service) ByStatus(
	ctx context.Context,
	actor access.Actor,
	value string,
) ([]Lead, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	if value == "" {
		return nil, core.BadRequestError("status value is required")
	}
	status := Status(value)
	if !status.Valid() {
		return nil, core.BadRequestError(fmt.Sprintf("invalid status %q", value))
	}

	return s.repo.List(ctx, ListFilter{
		Scope:  access.LeadScope{UploadedBy: actor.ID},
		Status: status,
	})
}

func (s *Service) MyLeads(ctx context.Context, actor access.Actor) ([]Lead, error) {
	scope, err := access.LeadScopeFor(actor)
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, ListFilter{Scope: scope})
}

// Get returns a lead inside the caller's scope; leads outside it are
// reported as missing.
func (s *Service) Get(ctx context.Context, actor access.Actor, id string) (*Lead, error) {
	scope, err := access.LeadScopeFor(actor)
	if err != nil {
		return nil, err
	}

	if err := parseLeadID(id); err != nil {
		return nil, err
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Permits(lead.UploadedBy, lead.AssignedToID()) {
		return nil, fmt.Errorf("get lead: %w", errLeadNotFound)
	}

	return lead, nil
}

// UpdateProgress records a call outcome. A status change counts as a contact.
func (s *Service) UpdateProgress(
	ctx context.Context,
	actor access.Actor,
	id string,
	req UpdateLeadRequest,
) (*Lead, error) {
	if err := parseLeadID(id); err != nil {
		return nil, err
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := access.CanUpdateLeadProgress(actor, lead.AssignedToID()); err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := Status(*req.Status)
		if !status.Valid() {
			return nil, core.BadRequestError(fmt.Sprintf("invalid status %q", *req.Status))
		}
		if status != lead.Status {
			now := s.now()
			lead.Status = status
			lead.CallCount++
			lead.LastContactedAt = &now
		}
	}
	if req.FirstCallDate != nil {
		lead.FirstCallDate = req.FirstCallDate
	}
	if req.NextFollowupDate != nil {
		lead.NextFollowupDate = req.NextFollowupDate
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}

	if err := s.repo.UpdateProgress(ctx, lead); err != nil {
		return nil, err
	}

	return lead, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if err := parseLeadID(id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, actor.ID)
}

// DeleteMany deletes the ids the manager owns and silently skips the rest.
func (s *Service) DeleteMany(
	ctx context.Context,
	actor access.Actor,
	ids []string,
) (int64, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, core.BadRequestError("ids array is required")
	}
	for _, id := range ids {
		if err := parseLeadID(id); err != nil {
			return 0, err
		}
	}

	deleted, err := s.repo.DeleteMany(ctx, ids, actor.ID)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "leads deleted",
		"manager_id", actor.ID,
		"requested", len(ids),
		"deleted", deleted,
	)
	return deleted, nil
}

// Export returns the leads a caller may export: a manager's own leads, or
// every lead for an ADMIN.
func (s *Service) Export(
	ctx context.Context,
	actor access.Actor,
	listType string,
) ([]Lead, error) {
	scope, err := access.ExportScopeFor(actor)
	if err != nil {
		return nil, err
	}

	assignment, err := ParseAssignment(listType)
	if err != nil {
		return nil, core.BadRequestError(
			"invalid type, use 'assigned', 'unassigned' or omit for all",
		)
	}

	return s.repo.List(ctx, ListFilter{Scope: scope, Assignment: assignment})
}

// UpcomingFollowups lists the telecaller's leads with a follow-up from the
// start of today (UTC) on, soonest first.
func (s *Service) UpcomingFollowups(ctx context.Context, actor access.Actor) ([]Lead, error) {
	if actor.Role != access.RoleTelecaller {
		return nil, core.ForbiddenError("only telecallers have follow-ups")
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return s.repo.List(ctx, ListFilter{
		Scope:        access.LeadScope{AssignedTo: actor.ID},
		FollowupFrom: &today,
	})
}

func (s *Service) StatusCounts(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
