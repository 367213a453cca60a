package effect

import (
	"math"
	"testing"

	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestValidate_OK(t *testing.T) {
	e := withMul(1, 3, f64(1.5), f64(0.8))
	assert.NoError(t, Validate(&e))
}

func TestValidate_Rejects(t *testing.T) {
	bad := func(mut func(e *model.Effect)) *model.Effect {
		e := withMul(1, 3, nil, nil)
		mut(&e)
		return &e
	}
	cases := map[string]struct {
		e    *model.Effect
		kind gameerr.Kind
	}{
		"type":        {bad(func(e *model.Effect) { e.Type = "HEX" }), gameerr.InvalidArgument},
		"maxDuration": {bad(func(e *model.Effect) { e.MaxDuration = 0 }), gameerr.InvalidArgument},
		"negDuration": {bad(func(e *model.Effect) { e.Duration = -1 }), gameerr.InvalidArgument},
		"zeroXP": {bad(func(e *model.Effect) {
			e.Multipliers = datatypes.NewJSONType(model.Multipliers{XP: f64(0)})
		}), gameerr.InvalidRewardValue},
		"infCoin": {bad(func(e *model.Effect) {
			e.Multipliers = datatypes.NewJSONType(model.Multipliers{Coin: f64(math.Inf(1))})
		}), gameerr.InvalidRewardValue},
		"chance": {bad(func(e *model.Effect) {
			e.Bonuses = datatypes.NewJSONType(model.Bonuses{BonusChance: f64(1.5)})
		}), gameerr.InvalidArgument},
		"questType": {bad(func(e *model.Effect) {
			e.Restrictions = datatypes.NewJSONType(model.Restrictions{QuestTypesBlocked: []model.QuestType{"CHORES"}})
		}), gameerr.InvalidArgument},
	}
	for name, tc := range cases {
		err := Validate(tc.e)
		assert.Equal(t, tc.kind, gameerr.KindOf(err), name)
	}
}
