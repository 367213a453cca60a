package model

import "time"

// ShopItem is a purchasable entry in a guild's shop.
// A nil Stock means unlimited.
type ShopItem struct {
	ID           int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID      int64        `gorm:"index:idx_shop_guild;not null" json:"guild_id"`
	Name         string       `gorm:"size:64;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	Denomination Denomination `gorm:"size:8;not null" json:"denomination"`
	Price        int64        `gorm:"not null" json:"price"`
	Stock        *int         `json:"stock"`
	Version      int64        `gorm:"default:0" json:"version"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// Unlimited reports whether the item never runs out.
func (i *ShopItem) Unlimited() bool { return i.Stock == nil }

// Inventory is a stack of purchased items owned by a character.
type Inventory struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID     int64     `gorm:"index:idx_char_inventory;not null" json:"char_id"`
	ShopItemID int64     `gorm:"not null" json:"shop_item_id"`
	Qty        int       `gorm:"default:1" json:"qty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
