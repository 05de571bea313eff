package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	"freelance-market/internal/service"
	httpez "freelance-market/internal/transport/http/ez"
)

// ProjectHandler serves projects and the applications filed against them.
type ProjectHandler struct {
	Projects     *service.ProjectService
	Applications *service.ApplicationService
}

func (ProjectHandler) Priority() int { return 20 }

type projectIn struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
}

type projectPatchIn struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Budget      *float64              `json:"budget"`
	Status      *domain.ProjectStatus `json:"status"`
}

type projectListQ struct {
	Search string `form:"search"`
	Status string `form:"status"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type applyIn struct {
	ProposalText  string  `json:"proposal_text"`
	ProposedPrice float64 `json:"proposed_price"`
}

func (h ProjectHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[projectIn, *domain.Project]{
		Method: http.MethodPost,
		Path:   "/projects",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller *domain.User, in *projectIn) (*domain.Project, error) {
			return h.Projects.Create(c.Request.Context(), caller, service.CreateProjectInput{
				Title: in.Title, Description: in.Description, Budget: in.Budget, Status: domain.ProjectStatus(in.Status),
			})
		},
	})

	// Anonymous callers see what a freelancer sees.
	httpez.RegisterAction(ez, httpez.Action[projectListQ, []domain.Project]{
		Method: http.MethodGet,
		Path:   "/projects",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, caller *domain.User, in *projectListQ) ([]domain.Project, error) {
			if caller != nil {
				if _, err := domain.RequireActive(caller); err != nil {
					return nil, err
				}
			}
			return h.Projects.List(c.Request.Context(), caller, domain.ProjectFilter{
				Search: in.Search, Status: domain.ProjectStatus(in.Status), Offset: in.Offset, Limit: in.Limit,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Project]{
		Method: http.MethodGet,
		Path:   "/projects/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *domain.User, _ *struct{}) (*domain.Project, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Projects.Get(c.Request.Context(), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[projectPatchIn, *domain.Project]{
		Method: http.MethodPut,
		Path:   "/projects/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, in *projectPatchIn) (*domain.Project, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Projects.Update(c.Request.Context(), caller, id, domain.ProjectPatch{
				Title: in.Title, Description: in.Description, Budget: in.Budget, Status: in.Status,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/projects/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (struct{}, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Projects.Delete(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.ProjectStats]{
		Method: http.MethodGet,
		Path:   "/projects/:id/stats",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (*domain.ProjectStats, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Projects.Stats(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[applyIn, *domain.Application]{
		Method: http.MethodPost,
		Path:   "/projects/:id/applications",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller *domain.User, in *applyIn) (*domain.Application, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Applications.Apply(c.Request.Context(), caller, id, service.ApplyInput{
				ProposalText: in.ProposalText, ProposedPrice: in.ProposedPrice,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Application]{
		Method: http.MethodGet,
		Path:   "/projects/:id/applications",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) ([]domain.Application, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Applications.ListForProject(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Application]{
		Method: http.MethodGet,
		Path:   "/projects/:id/applications/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (*domain.Application, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Applications.Mine(c.Request.Context(), caller, id)
		},
	})
}
