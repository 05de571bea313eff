package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	"freelance-market/internal/service"
	httpez "freelance-market/internal/transport/http/ez"
)

// AdminHandler is mounted on /admin/v1, whose group already requires an
// active admin. The actions repeat the role so they stay safe if remounted.
type AdminHandler struct {
	Users        *service.UserService
	Applications *service.ApplicationService
}

type userListQ struct {
	Q      string `form:"q"`
	Role   string `form:"role"`
	Status string `form:"status"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

type pageQ struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

type listOut[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

type statusIn struct {
	Status string `json:"status" binding:"required"`
}

var adminOnly = []domain.Role{domain.RoleAdmin}

func (h AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, httpez.Action[userListQ, listOut[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, caller *domain.User, in *userListQ) (listOut[domain.User], error) {
			us, total, err := h.Users.List(c.Request.Context(), caller, domain.UserFilter{
				Q: in.Q, Role: domain.Role(in.Role), Status: domain.UserStatus(in.Status),
				Offset: in.Offset, Limit: in.Limit,
			})
			if err != nil {
				return listOut[domain.User]{}, err
			}
			if us == nil {
				us = []domain.User{}
			}
			return listOut[domain.User]{Total: total, Items: us}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[statusIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/status",
		Binder: httpez.BindJSON,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, caller *domain.User, in *statusIn) (*domain.User, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Users.SetStatus(c.Request.Context(), caller, id, domain.UserStatus(in.Status))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Roles:  adminOnly,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (struct{}, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.Users.Delete(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[pageQ, listOut[domain.Application]]{
		Method: http.MethodGet,
		Path:   "/applications",
		Binder: httpez.BindQuery,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, caller *domain.User, in *pageQ) (listOut[domain.Application], error) {
			as, total, err := h.Applications.ListAll(c.Request.Context(), caller, in.Offset, in.Limit)
			if err != nil {
				return listOut[domain.Application]{}, err
			}
			if as == nil {
				as = []domain.Application{}
			}
			return listOut[domain.Application]{Total: total, Items: as}, nil
		},
	})
}
