package middleware

import (
	"github.com/gin-gonic/gin"

	"department-graphql/internal/core/auth"
)

const KeyUserID = "uid"

// Authenticate 解析 Bearer 令牌写入请求上下文；不在这里拒绝请求，
// register/login 是公开操作，其余操作由解析器通过 auth.CallerFrom 取身份
func Authenticate(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		claims, err := j.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			ctx = auth.WithAuthError(ctx, err)
		} else {
			ctx = auth.WithClaims(ctx, claims)
			c.Set(KeyUserID, claims.UserID())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
