package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/quest"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"gorm.io/gorm"
)

// QuestHandler handles quest board REST endpoints.
type QuestHandler struct {
	db     *gorm.DB
	quests *quest.Service
}

// NewQuestHandler creates a QuestHandler.
func NewQuestHandler(db *gorm.DB, quests *quest.Service) *QuestHandler {
	return &QuestHandler{db: db, quests: quests}
}

// List returns the caller's guild quests.
// GET /api/quests?status=AVAILABLE
func (h *QuestHandler) List(c *gin.Context) {
	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	quests, err := h.quests.ListQuests(c.Request.Context(), me.GuildID, model.QuestStatus(c.Query("status")))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

type createQuestRequest struct {
	Title       string          `json:"title" binding:"required,max=128"`
	Description string          `json:"description"`
	Type        model.QuestType `json:"type" binding:"required"`
	Difficulty  int             `json:"difficulty" binding:"required"`
	Reward      model.Reward    `json:"base_reward"`
}

// Create posts a quest to the caller's guild.
// POST /api/quests
func (h *QuestHandler) Create(c *gin.Context) {
	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	var req createQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := h.quests.CreateQuest(c.Request.Context(), me.ID, &model.Quest{
		GuildID:     me.GuildID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Difficulty:  req.Difficulty,
		Reward:      req.Reward,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quest": q})
}

// Accept handles POST /api/quests/:id/accept.
func (h *QuestHandler) Accept(c *gin.Context) {
	h.transition(c, h.quests.AcceptQuest)
}

// Complete handles POST /api/quests/:id/complete.
func (h *QuestHandler) Complete(c *gin.Context) {
	h.transition(c, h.quests.CompleteQuest)
}

// Abandon handles POST /api/quests/:id/abandon.
func (h *QuestHandler) Abandon(c *gin.Context) {
	h.transition(c, h.quests.AbandonQuest)
}

// Approve handles POST /api/quests/:id/approve. The response carries the
// applied reward and the assignee's updated character.
func (h *QuestHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.quests.ApproveQuest(c.Request.Context(), id, mw.GetCharID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type transitionFn func(ctx context.Context, questID, charID int64) (*model.Quest, error)

func (h *QuestHandler) transition(c *gin.Context, fn transitionFn) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	q, err := fn(c.Request.Context(), id, mw.GetCharID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quest": q})
}
