package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/config"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/guild"
	"github.com/hearthguild/server/game/quest"
	"github.com/hearthguild/server/game/ranking"
	"github.com/hearthguild/server/game/shop"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	DB        *gorm.DB
	Quests    *quest.Service
	Effects   *effect.Service
	Guilds    *guild.Service
	Shop      *shop.Service
	Ranking   *ranking.Board
	Activity  ActivityReader
	Scheduler *scheduler.Scheduler
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps, server config.ServerConfig, sec config.SecurityConfig) *gin.Engine {
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	charH := NewCharacterHandler(d.DB, d.Effects, d.Quests, d.Activity)
	questH := NewQuestHandler(d.DB, d.Quests)
	effectH := NewEffectHandler(d.DB, d.Effects, d.Guilds)
	shopH := NewShopHandler(d.DB, d.Shop)
	guildH := NewGuildHandler(d.DB, d.Guilds)
	rankH := NewRankingHandler(d.Ranking)
	adminH := NewAdminHandler(d.Effects, d.Scheduler, d.Logger)

	api := r.Group("/api")
	{
		authed := api.Group("")
		authed.Use(mw.Auth(sec), mw.RateLimit(rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst))

		authed.GET("/me", charH.Me)
		authed.GET("/me/activity", charH.Activity)

		authed.GET("/quests", questH.List)
		authed.POST("/quests", questH.Create)
		authed.POST("/quests/:id/accept", questH.Accept)
		authed.POST("/quests/:id/complete", questH.Complete)
		authed.POST("/quests/:id/approve", questH.Approve)
		authed.POST("/quests/:id/abandon", questH.Abandon)

		authed.GET("/guild/members", guildH.Members)
		authed.PUT("/guild/members/:id/role", guildH.SetRole)

		authed.GET("/effects", effectH.List)
		authed.POST("/characters/:id/effects", effectH.Grant)
		authed.POST("/rewards/preview", effectH.Preview)

		authed.GET("/shop", shopH.List)
		authed.POST("/shop/:id/buy", shopH.Buy)
		authed.GET("/inventory", shopH.Inventory)

		authed.GET("/ranking/gold", rankH.TopGold)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(server.AdminIPs), AdminAuth(server.AdminKey))
		adminG.POST("/effects/tick", adminH.TickEffects)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.POST("/ranking/refresh", rankH.RefreshRanking)
	}
	return r
}
