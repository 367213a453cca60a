package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Receipt describes a completed purchase.
type Receipt struct {
	Character *model.Character `json:"character"`
	Item      *model.ShopItem  `json:"item"`
	Qty       int              `json:"qty"`
	Spent     int64            `json:"spent"`
}

// Service lists shop items and performs purchases.
type Service struct {
	db     *gorm.DB
	sink   audit.Sink
	logger *zap.Logger
}

// NewService creates a shop Service.
func NewService(db *gorm.DB, sink audit.Sink, logger *zap.Logger) *Service {
	if sink == nil {
		sink = audit.Discard
	}
	return &Service{db: db, sink: sink, logger: logger}
}

// List returns the guild's shop items.
func (svc *Service) List(ctx context.Context, guildID int64) ([]model.ShopItem, error) {
	var items []model.ShopItem
	if err := svc.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("shop: list: %w", err)
	}
	return items, nil
}

// AddItem validates and stores a new shop item.
func (svc *Service) AddItem(ctx context.Context, item *model.ShopItem) error {
	item.Name = strings.TrimSpace(item.Name)
	switch {
	case item.Name == "":
		return gameerr.New(gameerr.InvalidArgument, "item name is required")
	case !item.Denomination.Valid():
		return gameerr.New(gameerr.InvalidArgument, "unknown denomination %q", item.Denomination)
	case item.Price < 0:
		return gameerr.New(gameerr.InvalidArgument, "price %d is negative", item.Price)
	case item.Stock != nil && *item.Stock < 0:
		return gameerr.New(gameerr.InvalidArgument, "stock %d is negative", *item.Stock)
	}
	item.ID = 0
	if err := svc.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("shop: add item: %w", err)
	}
	return nil
}

// Inventory returns what the character has bought.
func (svc *Service) Inventory(ctx context.Context, charID int64) ([]model.Inventory, error) {
	var inv []model.Inventory
	if err := svc.db.WithContext(ctx).Where("char_id = ?", charID).Order("id ASC").Find(&inv).Error; err != nil {
		return nil, fmt.Errorf("shop: inventory: %w", err)
	}
	return inv, nil
}

// Purchase buys qty of an item for the character in one transaction:
// funds are debited, finite stock is decremented and the inventory grows,
// or nothing changes.
func (svc *Service) Purchase(ctx context.Context, charID, itemID int64, qty int) (*Receipt, error) {
	var receipt *Receipt
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var char model.Character
		err := tx.Preload("Effects", "duration > 0").First(&char, charID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gameerr.New(gameerr.NotFound, "character %d", charID)
		}
		if err != nil {
			return fmt.Errorf("shop: load character: %w", err)
		}
		var item model.ShopItem
		err = tx.First(&item, itemID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && item.GuildID != char.GuildID) {
			return gameerr.New(gameerr.NotFound, "shop item %d", itemID)
		}
		if err != nil {
			return fmt.Errorf("shop: load item: %w", err)
		}

		if err := CanPurchase(&char, &item, qty); err != nil {
			return err
		}
		cost, err := Cost(&item, qty)
		if err != nil {
			return err
		}

		next := char
		next.Debit(item.Denomination, cost)
		res := tx.Model(&model.Character{}).
			Where("id = ? AND version = ?", char.ID, char.Version).
			Updates(map[string]interface{}{
				string(item.Denomination): next.Balance(item.Denomination),
				"version":                 char.Version + 1,
				"updated_at":              time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("shop: debit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gameerr.New(gameerr.Conflict, "character %d changed concurrently", char.ID)
		}
		next.Version = char.Version + 1

		if !item.Unlimited() {
			left := *item.Stock - qty
			res := tx.Model(&model.ShopItem{}).
				Where("id = ? AND version = ?", item.ID, item.Version).
				Updates(map[string]interface{}{"stock": left, "version": item.Version + 1})
			if res.Error != nil {
				return fmt.Errorf("shop: decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return gameerr.New(gameerr.Conflict, "shop item %d changed concurrently", item.ID)
			}
			item.Stock = &left
			item.Version++
		}

		if err := addInventory(tx, charID, item.ID, qty); err != nil {
			return err
		}
		receipt = &Receipt{Character: &next, Item: &item, Qty: qty, Spent: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.logger.Info("purchase",
		zap.Int64("char_id", charID),
		zap.Int64("item_id", itemID),
		zap.Int("qty", qty),
		zap.Int64("spent", receipt.Spent),
		zap.String("denomination", string(receipt.Item.Denomination)))
	svc.sink.Log(audit.Entry{
		TraceID:     audit.TraceIDFrom(ctx),
		Type:        model.ActivityPurchase,
		CharID:      charID,
		Description: fmt.Sprintf("bought %d x %q for %d %s", qty, receipt.Item.Name, receipt.Spent, receipt.Item.Denomination),
		Metadata:    map[string]interface{}{"item_id": itemID, "qty": qty, "spent": receipt.Spent},
	})
	return receipt, nil
}

func addInventory(tx *gorm.DB, charID, itemID int64, qty int) error {
	var inv model.Inventory
	err := tx.Where("char_id = ? AND shop_item_id = ?", charID, itemID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = model.Inventory{CharID: charID, ShopItemID: itemID, Qty: qty}
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("shop: add inventory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("shop: load inventory: %w", err)
	}
	if err := tx.Model(&inv).Update("qty", inv.Qty+qty).Error; err != nil {
		return fmt.Errorf("shop: update inventory: %w", err)
	}
	return nil
}
