// Package shop gates and records purchases from a guild's shop.
package shop

import (
	"math"

	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
)

// IsBlocked reports whether any active effect closes the shop.
func IsBlocked(effects []model.Effect) bool {
	for i := range effects {
		if effects[i].IsActive() && effects[i].Restrictions.Data().ShopBlocked {
			return true
		}
	}
	return false
}

// Cost returns price*qty, or InsufficientFunds when the product does not
// fit in an int64 and so exceeds any balance.
func Cost(item *model.ShopItem, qty int) (int64, error) {
	if item.Price > 0 && int64(qty) > math.MaxInt64/item.Price {
		return 0, gameerr.New(gameerr.InsufficientFunds, "%d x %q costs more than any balance", qty, item.Name)
	}
	return item.Price * int64(qty), nil
}

// CanPurchase checks whether c may buy qty of item. The shop must be open
// for c, a limited item must have qty left in stock, and c must hold
// price*qty in the item's own denomination.
func CanPurchase(c *model.Character, item *model.ShopItem, qty int) error {
	if qty <= 0 {
		return gameerr.New(gameerr.InvalidArgument, "quantity must be positive")
	}
	if IsBlocked(c.Effects) {
		return gameerr.New(gameerr.ShopBlocked, "an active effect blocks the shop")
	}
	if !item.Unlimited() && *item.Stock < qty {
		return gameerr.New(gameerr.OutOfStock, "%q has %d left", item.Name, *item.Stock)
	}
	cost, err := Cost(item, qty)
	if err != nil {
		return err
	}
	if have := c.Balance(item.Denomination); have < cost {
		return gameerr.New(gameerr.InsufficientFunds, "need %d %s, have %d", cost, item.Denomination, have)
	}
	return nil
}
