package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"department-graphql/internal/core/apperr"
)

const (
	msgInvalidLogin = "invalid username or password"
	msgInternal     = "internal server error"
)

// Extensions GraphQL error.extensions
type Extensions struct {
	Code    Code           `json:"code"`
	Status  int            `json:"status"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (e Extensions) Map() map[string]interface{} {
	m := map[string]interface{}{"code": string(e.Code), "status": e.Status}
	if e.Reason != "" {
		m["reason"] = e.Reason
	}
	if len(e.Details) > 0 {
		m["details"] = e.Details
	}
	return m
}

type Error struct {
	Message    string     `json:"message"`
	Extensions Extensions `json:"extensions"`
}

// Resp 与 GraphQL 响应同形：{data, errors}
type Resp struct {
	Data   interface{} `json:"data"`
	Errors []Error     `json:"errors,omitempty"`
}

// FromError 业务错误 → 对外错误；dev 为 true 时附带内部细节
func FromError(err error, dev bool) Error {
	ae := apperr.From(err)
	code := CodeOf(ae.Kind())
	reason := ae.Reason
	msg := ae.Message

	switch reason {
	case apperr.UserNotFound, apperr.InvalidCredentials:
		// 不暴露是用户名还是密码错误
		reason = apperr.InvalidCredentials
		msg = msgInvalidLogin
	case apperr.Internal:
		msg = msgInternal
	}
	if msg == "" {
		msg = string(reason)
	}

	ext := Extensions{Code: code, Status: code.Status(), Reason: string(reason)}
	if dev {
		details := make(map[string]any, len(ae.Details)+2)
		for k, v := range ae.Details {
			details[k] = v
		}
		if reason != ae.Reason {
			details["reason"] = string(ae.Reason)
		}
		if ae.Err != nil {
			details["cause"] = ae.Err.Error()
		}
		ext.Details = details
	}
	return Error{Message: msg, Extensions: ext}
}

// Failure 传输层错误（限流、超时、请求体过大等）
func Failure(code Code, msg string) Resp {
	return Resp{Errors: []Error{{
		Message:    msg,
		Extensions: Extensions{Code: code, Status: code.Status()},
	}}}
}

// Abort 以 GraphQL 错误形态中止请求（HTTP 状态固定 200，语义在 extensions.status）
func Abort(c *gin.Context, code Code, msg string) {
	c.AbortWithStatusJSON(http.StatusOK, Failure(code, msg))
}
