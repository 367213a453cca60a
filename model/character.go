package model

import "time"

// Character is a player's persistent game entity.
type Character struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID         int64  `gorm:"index:idx_char_guild;not null" json:"guild_id"`
	Name            string `gorm:"size:32;not null" json:"name"`
	Level           int    `gorm:"default:1" json:"level"`
	Exp             int64  `gorm:"default:0" json:"exp"`
	Bronze          int64  `gorm:"default:0" json:"bronze"`
	Silver          int64  `gorm:"default:0" json:"silver"`
	Gold            int64  `gorm:"default:0" json:"gold"`
	CompletedQuests int64  `gorm:"default:0" json:"completed_quests"`
	TotalGoldEarned int64  `gorm:"default:0" json:"total_gold_earned"`
	// EffectsTickedOn is the YYYY-MM-DD day of the last duration tick.
	EffectsTickedOn string    `gorm:"size:10" json:"effects_ticked_on"`
	Version         int64     `gorm:"default:0" json:"version"`
	Effects         []Effect  `gorm:"foreignKey:CharID" json:"active_effects"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Denomination names one tier of the currency triple.
type Denomination string

const (
	Bronze Denomination = "bronze"
	Silver Denomination = "silver"
	Gold   Denomination = "gold"
)

// Valid reports whether d is a known denomination.
func (d Denomination) Valid() bool {
	return d == Bronze || d == Silver || d == Gold
}

// Balance returns the character's holdings in d.
func (c *Character) Balance(d Denomination) int64 {
	switch d {
	case Bronze:
		return c.Bronze
	case Silver:
		return c.Silver
	case Gold:
		return c.Gold
	}
	return 0
}

// Debit subtracts amount from the d balance. Callers check funds first.
func (c *Character) Debit(d Denomination, amount int64) {
	switch d {
	case Bronze:
		c.Bronze -= amount
	case Silver:
		c.Silver -= amount
	case Gold:
		c.Gold -= amount
	}
}
