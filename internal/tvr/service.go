// AngelaMos | 2026
// service.go

package tvr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func parseID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return core.BadRequestError("invalid " + what + " id")
	}
	return nil
}

// scopedGuard hides leads outside the caller's scope as missing.
func scopedGuard(scope access.LeadScope) LeadGuard {
	return func(lead LeadRef) error {
		if !scope.Permits(lead.UploadedBy, lead.AssignedToID()) {
			return errLeadNotFound
		}
		return nil
	}
}

// Create attaches a new form to the lead. A lead holds at most one form.
func (s *Service) Create(
	ctx context.Context,
	actor access.Actor,
	leadID string,
	req FormRequest,
) (*Form, error) {
	scope, err := access.VerificationScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if err := parseID(leadID, "lead"); err != nil {
		return nil, err
	}

	form := &Form{LeadID: leadID}
	req.apply(form)

	if err := s.repo.Create(ctx, form, scopedGuard(scope)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "TVR form created",
		"tvr_id", form.ID,
		"lead_id", leadID,
		"user_id", actor.ID,
	)
	return form, nil
}

func (s *Service) List(
	ctx context.Context,
	actor access.Actor,
	params ListParams,
) ([]Form, int, error) {
	scope, err := access.VerificationScopeFor(actor)
	if err != nil {
		return nil, 0, err
	}

	params.Normalize()
	return s.repo.List(ctx, scope, params)
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id string) (*Form, error) {
	scope, err := access.VerificationScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if err := parseID(id, "TVR"); err != nil {
		return nil, err
	}

	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !scope.Permits(form.Lead.UploadedBy, form.Lead.AssignedToID()) {
		return nil, fmt.Errorf("get TVR form: %w", errFormNotFound)
	}

	return form, nil
}

// Update replaces every field of the form with req.
func (s *Service) Update(
	ctx context.Context,
	actor access.Actor,
	id string,
	req FormRequest,
) (*Form, error) {
	form, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	req.apply(form)
	if err := s.repo.Update(ctx, form); err != nil {
		return nil, err
	}

	return form, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id string) error {
	form, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, form.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "TVR form deleted",
		"tvr_id", form.ID,
		"lead_id", form.LeadID,
		"user_id", actor.ID,
	)
	return nil
}
