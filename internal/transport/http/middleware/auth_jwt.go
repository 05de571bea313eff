package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	resp "freelance-market/internal/transport/http/response"
)

const keyCaller = "caller"

// CallerResolver turns a bearer token into the stored user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*domain.User, error)
}

// Auth resolves the bearer token when one is sent. Without an Authorization
// header the request continues anonymously; a bad token is rejected with 401.
func Auth(r CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(ah, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			resp.Fail(c, domain.ErrUnauthenticated)
			return
		}
		u, err := r.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		SetCaller(c, u)
		c.Next()
	}
}

// RequireRoles admits only active callers holding one of roles.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := domain.RequireActive(CallerFrom(c))
		if err == nil {
			_, err = domain.RequireRole(u, roles...)
		}
		if err != nil {
			resp.Fail(c, err)
			return
		}
		c.Next()
	}
}

func SetCaller(c *gin.Context, u *domain.User) { c.Set(keyCaller, u) }

// CallerFrom returns nil for anonymous requests.
func CallerFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(keyCaller); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
