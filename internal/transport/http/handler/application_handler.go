package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	"freelance-market/internal/service"
	httpez "freelance-market/internal/transport/http/ez"
)

type ApplicationHandler struct {
	Applications *service.ApplicationService
	Reviews      *service.ReviewService
}

func (ApplicationHandler) Priority() int { return 30 }

type applicationPatchIn struct {
	ProposalText  *string                   `json:"proposal_text"`
	ProposedPrice *float64                  `json:"proposed_price"`
	Status        *domain.ApplicationStatus `json:"status"`
}

func (h ApplicationHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Application]{
		Method: http.MethodGet,
		Path:   "/applications/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (*domain.Application, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Applications.Get(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[applicationPatchIn, *domain.Application]{
		Method: http.MethodPut,
		Path:   "/applications/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, in *applicationPatchIn) (*domain.Application, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Applications.Update(c.Request.Context(), caller, id, domain.ApplicationPatch{
				ProposalText: in.ProposalText, ProposedPrice: in.ProposedPrice, Status: in.Status,
			})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/applications/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (struct{}, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Applications.Delete(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[reviewIn, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/applications/:id/review",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller *domain.User, in *reviewIn) (*domain.Review, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Reviews.Create(c.Request.Context(), caller, id, service.ReviewInput{Rating: in.Rating, Comment: in.Comment})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodGet,
		Path:   "/applications/:id/review",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *domain.User, _ *struct{}) (*domain.Review, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Reviews.Get(c.Request.Context(), id)
		},
	})
}
