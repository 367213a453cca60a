package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/progression"
	"github.com/hearthguild/server/game/quest"
	"github.com/hearthguild/server/game/shop"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"gorm.io/gorm"
)

// ActivityReader returns recent activity for a character.
type ActivityReader interface {
	Recent(ctx context.Context, charID int64, limit int) ([]model.ActivityLog, error)
}

// CharacterHandler serves the caller's own character sheet.
type CharacterHandler struct {
	db       *gorm.DB
	effects  *effect.Service
	quests   *quest.Service
	activity ActivityReader
}

// NewCharacterHandler creates a new CharacterHandler. activity may be nil.
func NewCharacterHandler(db *gorm.DB, effects *effect.Service, quests *quest.Service, activity ActivityReader) *CharacterHandler {
	return &CharacterHandler{db: db, effects: effects, quests: quests, activity: activity}
}

type progressView struct {
	Level   int   `json:"level"`
	Exp     int64 `json:"exp"`
	Needed  int64 `json:"exp_needed"`
	Percent int   `json:"percent"`
}

// Me handles GET /api/me.
func (h *CharacterHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	effects, err := h.effects.List(ctx, me.ID, false)
	if err != nil {
		abortWithError(c, err)
		return
	}
	me.Effects = effects
	held, err := h.quests.ListAssigned(ctx, me.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	cur, need := progression.Progress(me)
	body := gin.H{
		"character": me,
		"progress": progressView{
			Level:   me.Level,
			Exp:     cur,
			Needed:  need,
			Percent: int(cur * 100 / need),
		},
		"modifiers":    effect.Compose(effects),
		"shop_blocked": shop.IsBlocked(effects),
		"quests":       held,
	}
	if h.activity != nil {
		recent, err := h.activity.Recent(ctx, me.ID, 20)
		if err != nil {
			abortWithError(c, err)
			return
		}
		body["activity"] = recent
	}
	c.JSON(http.StatusOK, body)
}

// Activity handles GET /api/me/activity.
func (h *CharacterHandler) Activity(c *gin.Context) {
	if h.activity == nil {
		c.JSON(http.StatusOK, gin.H{"activity": []model.ActivityLog{}})
		return
	}
	recent, err := h.activity.Recent(c.Request.Context(), mw.GetCharID(c), 100)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": recent})
}
