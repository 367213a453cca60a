package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/game/guild"
	"github.com/hearthguild/server/model"
	"gorm.io/gorm"
)

// GuildHandler handles guild roster endpoints.
type GuildHandler struct {
	db     *gorm.DB
	guilds *guild.Service
}

// NewGuildHandler creates a GuildHandler.
func NewGuildHandler(db *gorm.DB, guilds *guild.Service) *GuildHandler {
	return &GuildHandler{db: db, guilds: guilds}
}

// Members lists the caller's guild roster.
// GET /api/guild/members
func (h *GuildHandler) Members(c *gin.Context) {
	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	members, err := h.guilds.Members(c.Request.Context(), me.GuildID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": me.GuildID, "members": members})
}

type setRoleRequest struct {
	Role model.GuildRole `json:"role" binding:"required"`
}

// SetRole changes a member's role. Guildmasters may not change their own
// role so a guild cannot lose its last guildmaster this way.
// PUT /api/guild/members/:id/role
func (h *GuildHandler) SetRole(c *gin.Context) {
	ctx := c.Request.Context()
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		abortWithError(c, gameerr.New(gameerr.InvalidArgument, "unknown role %q", req.Role))
		return
	}

	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	role, err := h.guilds.RoleOf(ctx, me.GuildID, me.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if role != model.RoleGuildmaster {
		abortWithError(c, gameerr.New(gameerr.Unauthorized, "changing roles requires %s", model.RoleGuildmaster))
		return
	}
	if targetID == me.ID {
		abortWithError(c, gameerr.New(gameerr.InvalidArgument, "cannot change your own role"))
		return
	}

	var target model.Character
	err = h.db.WithContext(ctx).Select("id", "guild_id").First(&target, targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && target.GuildID != me.GuildID) {
		abortWithError(c, gameerr.New(gameerr.NotFound, "character %d", targetID))
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.guilds.SetRole(ctx, me.GuildID, targetID, req.Role); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guild_id": me.GuildID, "char_id": targetID, "role": req.Role})
}
