package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-market/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data as null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; an empty msg falls back to the default text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// StatusOf maps an error to its HTTP status and client-facing message.
// Internal failures never expose their cause.
func StatusOf(err error) (int, string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, CodeMsgMap[CodeServerError]
	}
	switch de.Kind {
	case domain.KindBadRequest, domain.KindInvalidState, domain.KindInactiveAccount:
		return http.StatusBadRequest, de.Msg
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized, de.Msg
	case domain.KindForbidden:
		return http.StatusForbidden, de.Msg
	case domain.KindNotFound:
		return http.StatusNotFound, de.Msg
	case domain.KindConflict:
		return http.StatusConflict, de.Msg
	}
	return http.StatusInternalServerError, CodeMsgMap[CodeServerError]
}

// Abort stops the chain with a failure envelope sent under the same status.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}

// Fail aborts with the status mapped from err. 5xx causes are attached to
// the context so the access log records them.
func Fail(c *gin.Context, err error) {
	status, msg := StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Abort(c, status, msg)
}
