package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/game/guild"
	"github.com/hearthguild/server/game/ledger"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EffectHandler handles effect and reward preview endpoints.
type EffectHandler struct {
	db      *gorm.DB
	effects *effect.Service
	guilds  *guild.Service
}

// NewEffectHandler creates an EffectHandler.
func NewEffectHandler(db *gorm.DB, effects *effect.Service, guilds *guild.Service) *EffectHandler {
	return &EffectHandler{db: db, effects: effects, guilds: guilds}
}

// List returns the caller's effects in stacking order.
// GET /api/effects?all=true includes expired ones.
func (h *EffectHandler) List(c *gin.Context) {
	effects, err := h.effects.List(c.Request.Context(), mw.GetCharID(c), c.Query("all") == "true")
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"effects": effects})
}

type grantEffectRequest struct {
	Name         string             `json:"name" binding:"required,max=64"`
	Type         model.EffectType   `json:"type" binding:"required"`
	Duration     int                `json:"duration"`
	MaxDuration  int                `json:"max_duration" binding:"required"`
	Multipliers  model.Multipliers  `json:"multipliers"`
	Restrictions model.Restrictions `json:"restrictions"`
	Bonuses      model.Bonuses      `json:"bonuses"`
}

// Grant applies an effect to a member of the caller's guild. Only a
// guildmaster may grant effects.
// POST /api/characters/:id/effects
func (h *EffectHandler) Grant(c *gin.Context) {
	ctx := c.Request.Context()
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req grantEffectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var target model.Character
	if err := h.db.WithContext(ctx).Select("id", "guild_id").First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = gameerr.New(gameerr.NotFound, "character %d", targetID)
		}
		abortWithError(c, err)
		return
	}
	role, err := h.guilds.RoleOf(ctx, target.GuildID, mw.GetCharID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if role != model.RoleGuildmaster {
		abortWithError(c, gameerr.New(gameerr.Unauthorized, "granting effects requires %s", model.RoleGuildmaster))
		return
	}

	e, err := h.effects.Grant(ctx, targetID, &model.Effect{
		Name:         req.Name,
		Type:         req.Type,
		Duration:     req.Duration,
		MaxDuration:  req.MaxDuration,
		Multipliers:  datatypes.NewJSONType(req.Multipliers),
		Restrictions: datatypes.NewJSONType(req.Restrictions),
		Bonuses:      datatypes.NewJSONType(req.Bonuses),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"effect": e})
}

type previewRequest struct {
	Reward     model.Reward    `json:"base_reward"`
	Type       model.QuestType `json:"type" binding:"required"`
	Difficulty int             `json:"difficulty" binding:"required"`
}

// Preview resolves a base reward against the caller's active effects
// without changing anything.
// POST /api/rewards/preview
func (h *EffectHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Type.Valid() {
		abortWithError(c, gameerr.New(gameerr.InvalidArgument, "unknown quest type %q", req.Type))
		return
	}
	if err := ledger.ValidateReward(req.Reward); err != nil {
		abortWithError(c, err)
		return
	}
	effects, err := h.effects.List(c.Request.Context(), mw.GetCharID(c), false)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base_reward":     req.Reward,
		"resolved_reward": effect.Resolve(req.Reward, effects, req.Type, req.Difficulty),
		"modifiers":       effect.Compose(effects),
		"blocked":         effect.QuestBlocked(effects, req.Type, req.Difficulty),
	})
}
