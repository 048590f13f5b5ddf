package system

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger — зависимость, доступность которой проверяет readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller — системные маршруты: liveness, readiness.
type Controller struct {
	dep Pinger
	log *slog.Logger
}

// New создаёт системный контроллер. dep может быть nil: без внешних систем сервис готов всегда.
func New(dep Pinger, log *slog.Logger) *Controller {
	return &Controller{dep: dep, log: log}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/liveness", c.live)
	r.GET("/readyness", c.ready)
}

func (c *Controller) live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (c *Controller) ready(ctx *gin.Context) {
	if c.dep != nil {
		if err := c.dep.Ping(ctx.Request.Context()); err != nil {
			c.log.Warn("ready check failed", "error", err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
