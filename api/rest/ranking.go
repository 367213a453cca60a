package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/ranking"
)

// RankingHandler handles leaderboard REST endpoints.
type RankingHandler struct {
	board *ranking.Board
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(board *ranking.Board) *RankingHandler {
	return &RankingHandler{board: board}
}

// TopGold returns characters sorted by total gold earned.
// GET /api/ranking/gold?limit=20
func (h *RankingHandler) TopGold(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	entries, err := h.board.Top(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

// RefreshRanking rebuilds the ranking sorted set from the DB.
// Called periodically by the scheduler; also exposed as POST /api/admin/ranking/refresh.
func (h *RankingHandler) RefreshRanking(c *gin.Context) {
	n, err := h.board.Refresh(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}
