// Package effect composes timed character effects into reward modifiers,
// decays their durations, and runs the daily tick job.
package effect

import (
	"math"
	"sort"

	"github.com/hearthguild/server/model"
)

// Modifiers is the combined influence of a set of active effects.
// Multipliers combine by product, additive bonuses by sum, and
// restrictions by logical OR.
type Modifiers struct {
	XPFactor               float64           `json:"xp_factor"`
	CoinFactor             float64           `json:"coin_factor"`
	BonusGold              int64             `json:"bonus_gold"`
	ExtraQuestSlots        int               `json:"extra_quest_slots"`
	BonusChance            float64           `json:"bonus_chance"`
	ShopBlocked            bool              `json:"shop_blocked"`
	DifficultQuestsBlocked bool              `json:"difficult_quests_blocked"`
	BlockedQuestTypes      []model.QuestType `json:"blocked_quest_types"`
}

// Active returns the effects with days remaining, in stacking order:
// creation time ascending, ties broken by ID. The input is not modified.
func Active(effects []model.Effect) []model.Effect {
	out := make([]model.Effect, 0, len(effects))
	for _, e := range effects {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Compose folds the active effects into a single Modifiers value.
func Compose(effects []model.Effect) Modifiers {
	m := Modifiers{XPFactor: 1, CoinFactor: 1}
	miss := 1.0
	seen := make(map[model.QuestType]bool)
	for _, e := range Active(effects) {
		mul := e.Multipliers.Data()
		if mul.XP != nil {
			m.XPFactor *= *mul.XP
		}
		if mul.Coin != nil {
			m.CoinFactor *= *mul.Coin
		}

		b := e.Bonuses.Data()
		if b.BonusGold != nil {
			m.BonusGold = addSat(m.BonusGold, *b.BonusGold)
		}
		if b.ExtraQuestSlot != nil {
			m.ExtraQuestSlots += *b.ExtraQuestSlot
		}
		if b.BonusChance != nil {
			miss *= 1 - *b.BonusChance
		}

		r := e.Restrictions.Data()
		m.ShopBlocked = m.ShopBlocked || r.ShopBlocked
		m.DifficultQuestsBlocked = m.DifficultQuestsBlocked || r.DifficultQuestsBlocked
		for _, qt := range r.QuestTypesBlocked {
			if !seen[qt] {
				seen[qt] = true
				m.BlockedQuestTypes = append(m.BlockedQuestTypes, qt)
			}
		}
	}
	m.BonusChance = 1 - miss
	return m
}

// Resolve applies the effects to a base reward. The quest is assumed to be
// eligible; see QuestBlocked. Each component is rounded half-up on its own
// and clamped at zero; bonus gold is added after rounding.
func Resolve(base model.Reward, effects []model.Effect, questType model.QuestType, difficulty int) model.Reward {
	m := Compose(effects)
	return model.Reward{
		Exp:    roundHalfUp(float64(base.Exp) * m.XPFactor),
		Bronze: roundHalfUp(float64(base.Bronze) * m.CoinFactor),
		Silver: roundHalfUp(float64(base.Silver) * m.CoinFactor),
		Gold:   clamp(addSat(roundHalfUp(float64(base.Gold)*m.CoinFactor), m.BonusGold)),
	}
}

// QuestBlocked reports whether an active effect forbids taking a quest of
// the given type and difficulty.
func QuestBlocked(effects []model.Effect, questType model.QuestType, difficulty int) bool {
	m := Compose(effects)
	if m.DifficultQuestsBlocked && difficulty >= 2 {
		return true
	}
	for _, qt := range m.BlockedQuestTypes {
		if qt == questType {
			return true
		}
	}
	return false
}

// roundHalfUp rounds to the nearest integer with .5 going up. Products are
// snapped to 1e-9 first so 5*0.7 lands on 3.5 rather than 3.4999999999999996.
func roundHalfUp(x float64) int64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= math.MaxInt64 {
		return math.MaxInt64
	}
	x = math.Round(x*1e9) / 1e9
	return int64(math.Floor(x + 0.5))
}

// addSat adds without wrapping, sticking at the int64 bounds.
func addSat(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
