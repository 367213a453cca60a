package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/gameerr"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"gorm.io/gorm"
)

var statusByKind = map[gameerr.Kind]int{
	gameerr.InvalidTransition:  http.StatusConflict,
	gameerr.Conflict:           http.StatusConflict,
	gameerr.OutOfStock:         http.StatusConflict,
	gameerr.Unauthorized:       http.StatusForbidden,
	gameerr.NotFound:           http.StatusNotFound,
	gameerr.InsufficientFunds:  http.StatusPaymentRequired,
	gameerr.ShopBlocked:        http.StatusLocked,
	gameerr.QuestBlocked:       http.StatusLocked,
	gameerr.InvalidRewardValue: http.StatusUnprocessableEntity,
	gameerr.InvalidArgument:    http.StatusBadRequest,
}

// StatusOf maps an error to its HTTP status. Unclassified errors are 500.
func StatusOf(err error) int {
	if s, ok := statusByKind[gameerr.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// abortWithError writes err as JSON. Game errors carry their kind and
// message; anything else is logged by the access logger and hidden.
func abortWithError(c *gin.Context, err error) {
	status := StatusOf(err)
	_ = c.Error(err)
	var ge *gameerr.Error
	if errors.As(err, &ge) {
		c.AbortWithStatusJSON(status, gin.H{"error": ge.Msg, "kind": ge.Kind})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": "internal error", "trace_id": mw.GetTraceID(c)})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// caller loads the authenticated character.
func caller(c *gin.Context, db *gorm.DB) (*model.Character, bool) {
	var ch model.Character
	err := db.WithContext(c.Request.Context()).First(&ch, mw.GetCharID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "character no longer exists"})
		return nil, false
	}
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return &ch, true
}
