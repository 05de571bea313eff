package router

import (
	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	mdw "freelance-market/internal/transport/http/middleware"
)

// NewAdminEngine serves /admin/v1 to active admins only.
func NewAdminEngine(o Options) *gin.Engine {
	r := base(o, "admin")
	admin := r.Group("/admin/v1")
	admin.Use(mdw.Auth(o.Resolver), mdw.RequireRoles(domain.RoleAdmin))
	o.Registry.MountAllAdmin(admin)
	return r
}
