package response

import "department-graphql/internal/core/apperr"

// Code 对外错误码（extensions.code）
type Code string

const (
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL"
)

// CodeStatusMap code → HTTP 语义状态
var CodeStatusMap = map[Code]int{
	CodeBadRequest:      400,
	CodeUnauthorized:    401,
	CodeForbidden:       403,
	CodeNotFound:        404,
	CodeConflict:        409,
	CodeTooManyRequests: 429,
	CodeTimeout:         504,
	CodeInternal:        500,
}

// kindCodes 业务错误大类 → 对外错误码（唯一映射表）
var kindCodes = map[apperr.Kind]Code{
	apperr.KindAuthentication: CodeUnauthorized,
	apperr.KindAuthorization:  CodeForbidden,
	apperr.KindValidation:     CodeBadRequest,
	apperr.KindConflict:       CodeConflict,
	apperr.KindNotFound:       CodeNotFound,
	apperr.KindInternal:       CodeInternal,
}

func CodeOf(k apperr.Kind) Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return CodeInternal
}

func (c Code) Status() int {
	if s, ok := CodeStatusMap[c]; ok {
		return s
	}
	return 500
}
