package auth

import (
	"context"

	"department-graphql/internal/core/apperr"
)

// Caller 已验证的调用方身份
type Caller struct {
	ID       string
	Username string
}

type identity struct {
	caller Caller
	err    error
}

type ctxKey struct{}

// WithClaims 鉴权中间件写入：令牌有效
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity{caller: Caller{ID: c.UserID(), Username: c.Username}})
}

// WithAuthError 鉴权中间件写入：令牌缺失或无效（公开操作仍可继续）
func WithAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity{err: err})
}

// CallerFrom 取出调用方；没有身份时返回 MissingToken
func CallerFrom(ctx context.Context) (Caller, error) {
	id, ok := ctx.Value(ctxKey{}).(identity)
	if !ok {
		return Caller{}, apperr.New(apperr.MissingToken, "missing bearer token")
	}
	if id.err != nil {
		return Caller{}, id.err
	}
	return id.caller, nil
}
