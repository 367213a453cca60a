package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/game/shop"
	mw "github.com/hearthguild/server/middleware"
	"gorm.io/gorm"
)

// ShopHandler handles shop REST endpoints.
type ShopHandler struct {
	db   *gorm.DB
	shop *shop.Service
}

// NewShopHandler creates a ShopHandler.
func NewShopHandler(db *gorm.DB, svc *shop.Service) *ShopHandler {
	return &ShopHandler{db: db, shop: svc}
}

// List returns the caller's guild shop.
// GET /api/shop
func (h *ShopHandler) List(c *gin.Context) {
	me, ok := caller(c, h.db)
	if !ok {
		return
	}
	items, err := h.shop.List(c.Request.Context(), me.GuildID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type buyRequest struct {
	Qty int `json:"qty"`
}

// Buy purchases an item.
// POST /api/shop/:id/buy
func (h *ShopHandler) Buy(c *gin.Context) {
	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req buyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	receipt, err := h.shop.Purchase(c.Request.Context(), mw.GetCharID(c), itemID, req.Qty)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// Inventory returns what the caller has bought.
// GET /api/inventory
func (h *ShopHandler) Inventory(c *gin.Context) {
	inv, err := h.shop.Inventory(c.Request.Context(), mw.GetCharID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": inv})
}
