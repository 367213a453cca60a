// Package ledger turns an approved quest into a character's reward.
package ledger

import (
	"math"

	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/game/progression"
	"github.com/hearthguild/server/model"
)

// Result is the outcome of applying a quest reward.
type Result struct {
	Character    model.Character `json:"character"`
	Applied      model.Reward    `json:"applied_reward"`
	LevelsGained int             `json:"levels_gained"`
}

// ValidateReward rejects negative reward components.
func ValidateReward(r model.Reward) error {
	switch {
	case r.Exp < 0:
		return gameerr.New(gameerr.InvalidRewardValue, "exp %d is negative", r.Exp)
	case r.Bronze < 0:
		return gameerr.New(gameerr.InvalidRewardValue, "bronze %d is negative", r.Bronze)
	case r.Silver < 0:
		return gameerr.New(gameerr.InvalidRewardValue, "silver %d is negative", r.Silver)
	case r.Gold < 0:
		return gameerr.New(gameerr.InvalidRewardValue, "gold %d is negative", r.Gold)
	}
	return nil
}

// Apply credits the quest's effect-modified reward to c and returns the
// resulting character. The quest must already be APPROVED and assigned to
// c. Neither argument is modified; on error nothing is applied.
func Apply(q *model.Quest, c *model.Character) (*Result, error) {
	if q.Status != model.QuestApproved {
		return nil, gameerr.New(gameerr.InvalidTransition, "quest %d is %s, not APPROVED", q.ID, q.Status)
	}
	if q.AssignedCharID == nil || *q.AssignedCharID != c.ID {
		return nil, gameerr.New(gameerr.Unauthorized, "quest %d is not assigned to character %d", q.ID, c.ID)
	}
	if err := ValidateReward(q.Reward); err != nil {
		return nil, err
	}
	for _, e := range effect.Active(c.Effects) {
		if err := effect.ValidateMultipliers(e.Multipliers.Data()); err != nil {
			return nil, err
		}
	}

	applied := effect.Resolve(q.Reward, c.Effects, q.Type, q.Difficulty)

	next := *c
	credits := []struct {
		name string
		dst  *int64
		v    int64
	}{
		{"exp", &next.Exp, applied.Exp},
		{"bronze", &next.Bronze, applied.Bronze},
		{"silver", &next.Silver, applied.Silver},
		{"gold", &next.Gold, applied.Gold},
		{"total gold earned", &next.TotalGoldEarned, applied.Gold},
		{"completed quests", &next.CompletedQuests, 1},
	}
	for _, cr := range credits {
		if cr.v > 0 && *cr.dst > math.MaxInt64-cr.v {
			return nil, gameerr.New(gameerr.InvalidRewardValue, "%s would overflow", cr.name)
		}
		*cr.dst += cr.v
	}
	gained := progression.ApplyLevelUps(&next)

	return &Result{Character: next, Applied: applied, LevelsGained: gained}, nil
}
