package model

import (
	"time"

	"gorm.io/datatypes"
)

// EffectType categorizes a timed modifier.
type EffectType string

const (
	EffectBlessing EffectType = "BLESSING"
	EffectCurse    EffectType = "CURSE"
	EffectBuff     EffectType = "BUFF"
	EffectDebuff   EffectType = "DEBUFF"
	EffectDisease  EffectType = "DISEASE"
)

// Valid reports whether t is a known effect type.
func (t EffectType) Valid() bool {
	switch t {
	case EffectBlessing, EffectCurse, EffectBuff, EffectDebuff, EffectDisease:
		return true
	}
	return false
}

// Multipliers scale rewards. Absent fields leave the factor untouched.
type Multipliers struct {
	XP   *float64 `json:"xp_multiplier,omitempty" yaml:"xp_multiplier"`
	Coin *float64 `json:"coin_multiplier,omitempty" yaml:"coin_multiplier"`
}

// Restrictions block actions while the effect is active.
type Restrictions struct {
	ShopBlocked            bool        `json:"shop_blocked,omitempty" yaml:"shop_blocked"`
	QuestTypesBlocked      []QuestType `json:"quest_types_blocked,omitempty" yaml:"quest_types_blocked"`
	DifficultQuestsBlocked bool        `json:"difficult_quests_blocked,omitempty" yaml:"difficult_quests_blocked"`
}

// Bonuses are additive perks.
type Bonuses struct {
	BonusGold      *int64   `json:"bonus_gold,omitempty" yaml:"bonus_gold"`
	ExtraQuestSlot *int     `json:"extra_quest_slot,omitempty" yaml:"extra_quest_slot"`
	BonusChance    *float64 `json:"bonus_chance,omitempty" yaml:"bonus_chance"`
}

// Effect is a timed status on a character. Duration counts remaining days.
type Effect struct {
	ID           int64                            `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID       int64                            `gorm:"index:idx_effect_char;not null" json:"char_id"`
	Name         string                           `gorm:"size:64" json:"name"`
	Type         EffectType                       `gorm:"size:16;not null" json:"type"`
	Duration     int                              `gorm:"default:0" json:"duration"`
	MaxDuration  int                              `gorm:"not null" json:"max_duration"`
	Multipliers  datatypes.JSONType[Multipliers]  `json:"multipliers"`
	Restrictions datatypes.JSONType[Restrictions] `json:"restrictions"`
	Bonuses      datatypes.JSONType[Bonuses]      `json:"bonuses"`
	CreatedAt    time.Time                        `gorm:"index:idx_effect_char" json:"created_at"`
}

// IsActive reports whether the effect still has days remaining.
func (e *Effect) IsActive() bool { return e.Duration > 0 }
