package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"freelance-market/internal/core/cache"
	"freelance-market/internal/domain"
)

const maxTitleLen = 255

type ProjectService struct{ deps Deps }

func NewProjectService(d Deps) *ProjectService { return &ProjectService{deps: d} }

type CreateProjectInput struct {
	Title       string
	Description string
	Budget      float64
	Status      domain.ProjectStatus // empty means open
}

func validTitle(t string) (string, error) {
	t = strings.TrimSpace(t)
	if t == "" || utf8.RuneCountInString(t) > maxTitleLen {
		return "", domain.BadRequest("title must be 1 to 255 characters")
	}
	return t, nil
}

func (s *ProjectService) Create(ctx context.Context, caller *domain.User, in CreateProjectInput) (*domain.Project, error) {
	if _, err := domain.RequireRole(caller, domain.RoleEmployer); err != nil {
		return nil, domain.Forbidden("only employers can create projects")
	}
	title, err := validTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Budget <= 0 {
		return nil, domain.BadRequest("budget must be greater than 0")
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectOpen
	}
	if !status.Valid() {
		return nil, domain.BadRequest("status must be open, in_progress or closed")
	}
	p := &domain.Project{
		Title:       title,
		Description: in.Description,
		Budget:      in.Budget,
		Status:      status,
		EmployerID:  caller.ID,
	}
	if err := s.deps.UoW.Projects().Create(ctx, p); err != nil {
		return nil, storeErr("create project", err)
	}
	s.deps.logger().Info("project created", zap.Uint("project_id", p.ID), zap.Uint("employer_id", caller.ID))
	return p, nil
}

// List applies the caller's visibility scope before the user-supplied filter:
// freelancers and anonymous callers see open projects, employers their own,
// admins everything. Newest first.
func (s *ProjectService) List(ctx context.Context, caller *domain.User, f domain.ProjectFilter) ([]domain.Project, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.BadRequest("status must be open, in_progress or closed")
	}
	f = domain.ProjectScope(caller, f)
	f.Offset, f.Limit = Page(f.Offset, f.Limit)
	ps, err := s.deps.UoW.Projects().List(ctx, f)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	return ps, nil
}

func (s *ProjectService) Get(ctx context.Context, id uint) (*domain.Project, error) {
	p, err := s.deps.UoW.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find project", err)
	}
	if p == nil {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, caller *domain.User, id uint, patch domain.ProjectPatch) (*domain.Project, error) {
	if patch.Title != nil {
		t, err := validTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &t
	}
	if patch.Budget != nil && *patch.Budget <= 0 {
		return nil, domain.BadRequest("budget must be greater than 0")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.BadRequest("status must be open, in_progress or closed")
	}
	var out *domain.Project
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		p, err := r.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProjectNotFound
		}
		if !domain.CanManageProject(caller, p) {
			return domain.ErrForbidden
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Budget != nil {
			p.Budget = *patch.Budget
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if err := r.Projects().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, storeErr("update project", err)
	}
	return out, nil
}

// Delete removes the project, its applications and their reviews.
func (s *ProjectService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	err := s.deps.UoW.Transaction(ctx, func(r domain.Repos) error {
		p, err := r.Projects().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProjectNotFound
		}
		if !domain.CanManageProject(caller, p) {
			return domain.ErrForbidden
		}
		ok, err := r.Projects().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		return storeErr("delete project", err)
	}
	invalidate(ctx, s.deps.Cache, projectStatsKey(id))
	s.deps.logger().Info("project deleted", zap.Uint("project_id", id), zap.Uint("by", caller.ID))
	return nil
}

// Stats is visible to the owner and admins. No applications yields zeros.
func (s *ProjectService) Stats(ctx context.Context, caller *domain.User, id uint) (*domain.ProjectStats, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageProject(caller, p) {
		return nil, domain.ErrForbidden
	}
	st, err := cache.GetOrLoadJSON(s.deps.Cache, ctx, projectStatsKey(id), s.deps.TTL.Stats,
		func(ctx context.Context) (*domain.ProjectStats, error) {
			st, err := s.deps.UoW.Projects().Stats(ctx, id)
			if err != nil {
				return nil, err
			}
			return &st, nil
		})
	if err != nil {
		return nil, storeErr("project stats", err)
	}
	return st, nil
}
