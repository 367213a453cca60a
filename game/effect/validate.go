package effect

import (
	"math"

	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
)

// ValidateMultipliers rejects zero, negative and non-finite factors.
func ValidateMultipliers(m model.Multipliers) error {
	check := func(name string, v *float64) error {
		if v == nil {
			return nil
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
			return gameerr.New(gameerr.InvalidRewardValue, "%s must be a positive finite number", name)
		}
		return nil
	}
	if err := check("xp_multiplier", m.XP); err != nil {
		return err
	}
	return check("coin_multiplier", m.Coin)
}

// Validate checks an effect before it is granted.
func Validate(e *model.Effect) error {
	if !e.Type.Valid() {
		return gameerr.New(gameerr.InvalidArgument, "unknown effect type %q", e.Type)
	}
	if e.MaxDuration <= 0 {
		return gameerr.New(gameerr.InvalidArgument, "max_duration must be positive")
	}
	if e.Duration < 0 {
		return gameerr.New(gameerr.InvalidArgument, "duration must not be negative")
	}
	if err := ValidateMultipliers(e.Multipliers.Data()); err != nil {
		return err
	}
	if c := e.Bonuses.Data().BonusChance; c != nil {
		if math.IsNaN(*c) || *c < 0 || *c > 1 {
			return gameerr.New(gameerr.InvalidArgument, "bonus_chance must be within [0,1]")
		}
	}
	for _, qt := range e.Restrictions.Data().QuestTypesBlocked {
		if !qt.Valid() {
			return gameerr.New(gameerr.InvalidArgument, "unknown quest type %q", qt)
		}
	}
	return nil
}
