package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"department-graphql/internal/core/apperr"
)

const (
	NameMinLen        = 2
	NameMaxLen        = 100
	UsernameMaxLen    = 64
	PasswordMinLength = 6
	PasswordMaxBytes  = 72 // bcrypt 上限
)

// 字母、数字、空格及 - _ & . , ' ( ) /
var namePattern = regexp.MustCompile(`^[\p{L}\p{N} \-_&.,'()/]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("deptname", validateDeptName)
	return v
}

func validateDeptName(fl validator.FieldLevel) bool {
	return namePattern.MatchString(fl.Field().String())
}

const (
	nameRules     = "required,min=2,max=100,deptname"
	usernameRules = "required,max=64"
	passwordRules = "min=6"
)

// normalizeName 去首尾空白后校验部门/子部门名称
func normalizeName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if err := validate.Var(name, nameRules); err != nil {
		return "", apperr.New(apperr.InvalidName, "%s %s", field, describe(err)).
			WithDetails(map[string]any{"field": field})
	}
	return name, nil
}

func normalizeNames(field string, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n, err := normalizeName(field, r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func normalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if err := validate.Var(username, usernameRules); err != nil {
		return "", apperr.New(apperr.InvalidUsername, "username %s", describe(err)).
			WithDetails(map[string]any{"field": "username"})
	}
	return username, nil
}

func checkPassword(pw string) error {
	if err := validate.Var(pw, passwordRules); err != nil {
		return apperr.New(apperr.WeakPassword, "password must be at least %d characters", PasswordMinLength).
			WithDetails(map[string]any{"field": "password"})
	}
	if len(pw) > PasswordMaxBytes {
		return apperr.New(apperr.WeakPassword, "password must be at most %d bytes", PasswordMaxBytes).
			WithDetails(map[string]any{"field": "password"})
	}
	return nil
}

// describe 取第一条失败规则转成可读文案
func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "is invalid"
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "deptname":
		return "may only contain letters, digits, spaces and - _ & . , ' ( ) /"
	default:
		return "is invalid"
	}
}
