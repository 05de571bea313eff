// Package ez registers typed actions on a gin group: bind the input, enforce
// caller requirements, run the handler, write the envelope.
package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
	mdw "freelance-market/internal/transport/http/middleware"
	resp "freelance-market/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindAuto  Binder = "auto"  // by Content-Type, JSON or form
	BindNone  Binder = "none"
)

// Action describes one endpoint. I is the bound input, O the response data.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Auth requires an active caller. Without it the caller may be nil.
	Auth  bool
	Roles []domain.Role
	// Status on success; 0 means 200. 204 writes no body.
	Status  int
	Handler func(c *gin.Context, caller *domain.User, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		caller := mdw.CallerFrom(c)
		if a.Auth || len(a.Roles) > 0 {
			u, err := domain.RequireActive(caller)
			if err == nil && len(a.Roles) > 0 {
				_, err = domain.RequireRole(u, a.Roles...)
			}
			if err != nil {
				resp.Fail(c, err)
				return
			}
		}

		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			resp.Abort(c, http.StatusBadRequest, err.Error())
			return
		}

		out, err := a.Handler(c, caller, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		switch a.Status {
		case http.StatusNoContent:
			c.Status(http.StatusNoContent)
			c.Writer.WriteHeaderNow()
		case 0:
			c.JSON(http.StatusOK, resp.OK(out))
		default:
			c.JSON(a.Status, resp.OK(out))
		}
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindAuto:
		return c.ShouldBind(in)
	}
	return nil
}

// PathID parses a positive numeric path parameter.
func PathID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, domain.BadRequest("invalid " + name)
	}
	return uint(v), nil
}
