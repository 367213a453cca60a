package rest

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	effects *effect.Service
	sched   *scheduler.Scheduler
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(effects *effect.Service, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{effects: effects, sched: sched, logger: logger}
}

// TickEffects runs the daily effect tick for today, or for the day given
// as ?day=YYYY-MM-DD. Characters already ticked that day are skipped.
// POST /api/admin/effects/tick
func (h *AdminHandler) TickEffects(c *gin.Context) {
	var (
		report effect.TickReport
		err    error
	)
	if day := c.Query("day"); day != "" {
		if _, perr := time.Parse(effect.DayLayout, day); perr != nil {
			abortWithError(c, gameerr.New(gameerr.InvalidArgument, "day must be YYYY-MM-DD"))
			return
		}
		report, err = h.effects.TickAll(c.Request.Context(), day)
	} else {
		report, err = h.effects.TickToday(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.logger.Info("manual effect tick", zap.String("day", report.Day), zap.Int64("ticked", report.Ticked))
	c.JSON(http.StatusOK, report)
}

// ListSchedulerTasks returns the status of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.List()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
