package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/config"
	"department-graphql/internal/core/server"
	mdw "department-graphql/internal/transport/http/middleware"
)

// NewAPIEngine 中间件链 + /metrics + 业务模块（健康检查、GraphQL）
func NewAPIEngine(l *zap.Logger, hc config.HTTP, jwter *auth.JWTer, mods ...Module) *gin.Engine {
	r := server.NewRouter(l, hc.CORSOrigins)

	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.RateLimit(rate.Limit(hc.RateLimitRPS), hc.RateLimitBurst),
		mdw.RateLimitPerIP(rate.Limit(hc.RateLimitPerIPRPS), hc.RateLimitPerIPBurst,
			time.Duration(hc.RateLimitPerIPIdleSec)*time.Second),
		mdw.ConcurrencyLimit(hc.MaxConcurrent),
		mdw.MaxBodyBytes(hc.MaxBodyBytes),
		mdw.Timeout(time.Duration(hc.RequestTimeoutSec)*time.Second),
		mdw.Authenticate(jwter),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	MountAll(&r.RouterGroup, mods...)
	return r
}
