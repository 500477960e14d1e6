package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 就绪检查的依赖（数据库、Redis）
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	deps    map[string]Pinger
	timeout time.Duration
	log     *zap.Logger
}

func NewHealthHandler(deps map[string]Pinger, l *zap.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 2 * time.Second, log: l}
}

func (h *HealthHandler) Priority() int { return 0 }

func (h *HealthHandler) Mount(g *gin.RouterGroup) {
	g.GET("/health/live", h.Live)
	g.GET("/health/ready", h.Ready)
}

// Live 进程存活即可
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 逐个 ping 依赖；任一失败返回 503
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	ready := true
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			ready = false
			checks[name] = "down"
			h.log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		checks[name] = "up"
	}
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
