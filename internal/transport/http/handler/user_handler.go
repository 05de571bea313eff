package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	"freelance-market/internal/service"
	httpez "freelance-market/internal/transport/http/ez"
)

// UserHandler serves registration, login, profiles and user-to-user reviews.
type UserHandler struct {
	Users    *service.UserService
	Identity *service.IdentityService
	Reviews  *service.UserReviewService
}

func (UserHandler) Priority() int { return 10 }

type registerIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginIn struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginOut struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

type profileIn struct {
	About *string   `json:"about"`
	Tags  *[]string `json:"tags"`
}

type reviewIn struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type ratingOut struct {
	Items   []domain.UserReview  `json:"items"`
	Summary domain.RatingSummary `json:"summary"`
}

func (h UserHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[registerIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *domain.User, in *registerIn) (*domain.User, error) {
			return h.Users.Register(c.Request.Context(), service.RegisterInput{
				Email: in.Email, Password: in.Password, Role: domain.Role(in.Role),
			})
		},
	})

	// JSON body or an OAuth2 password form (username/password).
	httpez.RegisterAction(ez, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/users/login",
		Binder: httpez.BindAuto,
		Handler: func(c *gin.Context, _ *domain.User, in *loginIn) (loginOut, error) {
			tok, u, err := h.Identity.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{AccessToken: tok, TokenType: "bearer", User: u}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.UserProfile]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (*domain.UserProfile, error) {
			return h.Users.Profile(c.Request.Context(), caller.ID)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, in *profileIn) (*domain.User, error) {
			return h.Users.UpdateProfile(c.Request.Context(), caller, service.ProfilePatch{About: in.About, Tags: in.Tags})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.UserProfile]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *domain.User, _ *struct{}) (*domain.UserProfile, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Users.Profile(c.Request.Context(), id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, ratingOut]{
		Method: http.MethodGet,
		Path:   "/users/:id/reviews",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *domain.User, _ *struct{}) (ratingOut, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return ratingOut{}, err
			}
			items, err := h.Reviews.ListForUser(c.Request.Context(), id)
			if err != nil {
				return ratingOut{}, err
			}
			sum, err := h.Reviews.Summary(c.Request.Context(), id)
			if err != nil {
				return ratingOut{}, err
			}
			return ratingOut{Items: items, Summary: sum}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.UserReview]{
		Method: http.MethodGet,
		Path:   "/users/:id/reviews/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, caller *domain.User, _ *struct{}) (*domain.UserReview, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Reviews.Mine(c.Request.Context(), caller, id)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[reviewIn, *domain.UserReview]{
		Method: http.MethodPost,
		Path:   "/users/:id/reviews",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, caller *domain.User, in *reviewIn) (*domain.UserReview, error) {
			id, err := httpez.PathID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Reviews.Create(c.Request.Context(), caller, id, service.ReviewInput{Rating: in.Rating, Comment: in.Comment})
		},
	})
}
