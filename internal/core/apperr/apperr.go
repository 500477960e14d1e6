package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误大类（边界层按它映射 code/status）
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindValidation     Kind = "VALIDATION"
	KindConflict       Kind = "CONFLICT"
	KindNotFound       Kind = "NOT_FOUND"
	KindInternal       Kind = "INTERNAL"
)

// Reason 具体失败原因（封闭集合）
type Reason string

const (
	UserNotFound       Reason = "USER_NOT_FOUND"
	InvalidCredentials Reason = "INVALID_CREDENTIALS"
	InvalidToken       Reason = "INVALID_TOKEN"
	TokenExpired       Reason = "TOKEN_EXPIRED"
	MissingToken       Reason = "MISSING_TOKEN"

	Forbidden Reason = "FORBIDDEN"

	WeakPassword    Reason = "WEAK_PASSWORD"
	InvalidName     Reason = "INVALID_NAME"
	InvalidUsername Reason = "INVALID_USERNAME"
	LimitOutOfRange Reason = "LIMIT_OUT_OF_RANGE"
	InvalidInput    Reason = "INVALID_INPUT"

	UsernameTaken Reason = "USERNAME_TAKEN"
	NameConflict  Reason = "NAME_CONFLICT"

	DepartmentNotFound    Reason = "DEPARTMENT_NOT_FOUND"
	SubDepartmentNotFound Reason = "SUB_DEPARTMENT_NOT_FOUND"

	Internal Reason = "INTERNAL"
)

var kinds = map[Reason]Kind{
	UserNotFound:          KindAuthentication,
	InvalidCredentials:    KindAuthentication,
	InvalidToken:          KindAuthentication,
	TokenExpired:          KindAuthentication,
	MissingToken:          KindAuthentication,
	Forbidden:             KindAuthorization,
	WeakPassword:          KindValidation,
	InvalidName:           KindValidation,
	InvalidUsername:       KindValidation,
	LimitOutOfRange:       KindValidation,
	InvalidInput:          KindValidation,
	UsernameTaken:         KindConflict,
	NameConflict:          KindConflict,
	DepartmentNotFound:    KindNotFound,
	SubDepartmentNotFound: KindNotFound,
	Internal:              KindInternal,
}

// Kind 返回原因所属的大类；未知原因按 Internal 处理
func (r Reason) Kind() Kind {
	if k, ok := kinds[r]; ok {
		return k
	}
	return KindInternal
}

// Error 统一业务错误
type Error struct {
	Reason  Reason
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() Kind { return e.Reason.Kind() }

// Is 按 Reason 比较，支持 errors.Is(err, apperr.ErrNameConflict)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// 哨兵错误（仅用于 errors.Is 判断）
var (
	ErrUserNotFound          = &Error{Reason: UserNotFound}
	ErrInvalidCredentials    = &Error{Reason: InvalidCredentials}
	ErrInvalidToken          = &Error{Reason: InvalidToken}
	ErrTokenExpired          = &Error{Reason: TokenExpired}
	ErrMissingToken          = &Error{Reason: MissingToken}
	ErrForbidden             = &Error{Reason: Forbidden}
	ErrWeakPassword          = &Error{Reason: WeakPassword}
	ErrInvalidName           = &Error{Reason: InvalidName}
	ErrInvalidUsername       = &Error{Reason: InvalidUsername}
	ErrLimitOutOfRange       = &Error{Reason: LimitOutOfRange}
	ErrUsernameTaken         = &Error{Reason: UsernameTaken}
	ErrNameConflict          = &Error{Reason: NameConflict}
	ErrDepartmentNotFound    = &Error{Reason: DepartmentNotFound}
	ErrSubDepartmentNotFound = &Error{Reason: SubDepartmentNotFound}
	ErrInternal              = &Error{Reason: Internal}
)

func New(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// WithDetails 附加上下文（不修改原值）
func (e *Error) WithDetails(kv map[string]any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+len(kv))
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	for k, v := range kv {
		cp.Details[k] = v
	}
	return &cp
}

// Wrap 把未分类错误包装成 Internal；已是 *Error 的原样返回
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Reason: Internal, Message: msg, Err: err}
}

// From 提取 *Error；非业务错误视为 Internal
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Reason: Internal, Message: "internal error", Err: err}
}

func ReasonOf(err error) Reason { return From(err).Reason }

func KindOf(err error) Kind { return From(err).Kind() }
