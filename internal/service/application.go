package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"freelance-market/internal/domain"
)

type ApplicationService struct{ deps Deps }

func NewApplicationService(d Deps) *ApplicationService { return &ApplicationService{deps: d} }

type ApplyInput struct {
	ProposalText  string
	ProposedPrice float64
}

func checkProposal(text string, price float64) error {
	if strings.TrimSpace(text) == "" {
		return domain.BadRequest("proposal text is required")
	}
	if price <= 0 {
		return domain.BadRequest("proposed price must be greater than 0")
	}
	return nil
}

// Apply files a pending application from the caller to an open project.
func (s *ApplicationService) Apply(ctx context.Context, caller *domain.User, projectID uint, in ApplyInput) (*domain.Application, error) {
	if _, err := domain.RequireRole(caller, domain.RoleFreelancer); err != nil {
		return nil, domain.Forbidden("only freelancers can apply to projects")
	}
	if err := checkProposal(in.ProposalText, in.ProposedPrice); err != nil {
		return nil, err
	}
	a := &domain.Application{
		ProjectID:     projectID,
		FreelancerID:  caller.ID,
		ProposalText:  strings.TrimSpace(in.ProposalText),
		ProposedPrice: in.ProposedPrice,
		Status:        domain.ApplicationPending,
	}
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		p, err := r.Projects().FindByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProjectNotFound
		}
		if p.Status != domain.ProjectOpen {
			return domain.ErrProjectNotOpen
		}
		prev, err := r.Applications().FindByProjectAndFreelancer(ctx, projectID, caller.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			return domain.ErrDuplicateApplication
		}
		if err := r.Applications().Create(ctx, a); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrDuplicateApplication
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("apply", err)
	}
	invalidate(ctx, s.deps.Cache, projectStatsKey(projectID))
	s.deps.logger().Info("application filed",
		zap.Uint("application_id", a.ID), zap.Uint("project_id", projectID), zap.Uint("freelancer_id", caller.ID))
	return a, nil
}

func (s *ApplicationService) ListForProject(ctx context.Context, caller *domain.User, projectID uint) ([]domain.Application, error) {
	p, err := s.deps.UoW.Projects().FindByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("find project", err)
	}
	if p == nil {
		return nil, domain.ErrProjectNotFound
	}
	if !domain.CanManageProject(caller, p) {
		return nil, domain.ErrForbidden
	}
	as, err := s.deps.UoW.Applications().ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("list applications", err)
	}
	return as, nil
}

// Mine returns the caller's own application to the project.
func (s *ApplicationService) Mine(ctx context.Context, caller *domain.User, projectID uint) (*domain.Application, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	a, err := s.deps.UoW.Applications().FindByProjectAndFreelancer(ctx, projectID, caller.ID)
	if err != nil {
		return nil, storeErr("find application", err)
	}
	if a == nil {
		return nil, domain.ErrApplicationNotFound
	}
	return a, nil
}

func (s *ApplicationService) Get(ctx context.Context, caller *domain.User, id uint) (*domain.Application, error) {
	a, p, err := s.load(ctx, s.deps.UoW, id)
	if err != nil {
		return nil, storeErr("find application", err)
	}
	if !domain.CanViewApplication(caller, a, p) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

// load fetches an application with its project.
func (s *ApplicationService) load(ctx context.Context, r domain.Repos, id uint) (*domain.Application, *domain.Project, error) {
	a, err := r.Applications().FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.ErrApplicationNotFound
	}
	p, err := r.Projects().FindByID(ctx, a.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrProjectNotFound
	}
	return a, p, nil
}

func (s *ApplicationService) ListAll(ctx context.Context, caller *domain.User, offset, limit int) ([]domain.Application, int64, error) {
	if _, err := domain.RequireRole(caller, domain.RoleAdmin); err != nil {
		return nil, 0, err
	}
	offset, limit = Page(offset, limit)
	as, total, err := s.deps.UoW.Applications().List(ctx, offset, limit)
	if err != nil {
		return nil, 0, storeErr("list applications", err)
	}
	return as, total, nil
}

// Update lets the applicant edit the proposal and lets the project owner or an
// admin decide the status. A status sent by the applicant is ignored.
func (s *ApplicationService) Update(ctx context.Context, caller *domain.User, id uint, patch domain.ApplicationPatch) (*domain.Application, error) {
	var out *domain.Application
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		a, p, err := s.load(ctx, r, id)
		if err != nil {
			return err
		}
		switch {
		case domain.IsApplicant(caller, a):
			if patch.ProposalText != nil {
				a.ProposalText = strings.TrimSpace(*patch.ProposalText)
			}
			if patch.ProposedPrice != nil {
				a.ProposedPrice = *patch.ProposedPrice
			}
			if err := checkProposal(a.ProposalText, a.ProposedPrice); err != nil {
				return err
			}
		case domain.CanManageProject(caller, p):
			if patch.Status == nil {
				return domain.ErrNoStatusProvided
			}
			if !patch.Status.Valid() {
				return domain.BadRequest("status must be pending, accepted or rejected")
			}
			if !a.Status.CanTransition(*patch.Status) {
				return domain.ErrInvalidTransition
			}
			a.Status = *patch.Status
		default:
			return domain.ErrForbidden
		}
		if err := r.Applications().Update(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, storeErr("update application", err)
	}
	invalidate(ctx, s.deps.Cache, projectStatsKey(out.ProjectID))
	return out, nil
}

func (s *ApplicationService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	var projectID uint
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		a, err := r.Applications().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrApplicationNotFound
		}
		if !domain.CanDeleteApplication(caller, a) {
			return domain.ErrForbidden
		}
		ok, err := r.Applications().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrApplicationNotFound
		}
		projectID = a.ProjectID
		return nil
	})
	if err != nil {
		return storeErr("delete application", err)
	}
	invalidate(ctx, s.deps.Cache, projectStatsKey(projectID))
	s.deps.logger().Info("application deleted", zap.Uint("application_id", id), zap.Uint("by", caller.ID))
	return nil
}
