package shop

import (
	"math"
	"testing"

	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func blocker(duration int) model.Effect {
	return model.Effect{
		Name: "Grounded", Type: model.EffectCurse, Duration: duration, MaxDuration: 3,
		Restrictions: datatypes.NewJSONType(model.Restrictions{ShopBlocked: true}),
	}
}

func stock(n int) *int { return &n }

func TestIsBlocked(t *testing.T) {
	assert.False(t, IsBlocked(nil))
	assert.True(t, IsBlocked([]model.Effect{blocker(1)}))
	assert.False(t, IsBlocked([]model.Effect{blocker(0)}), "expired effects do not block")
	assert.False(t, IsBlocked([]model.Effect{{Duration: 4, MaxDuration: 4}}))
	assert.True(t, IsBlocked([]model.Effect{blocker(0), {Duration: 1}, blocker(2)}))
}

func TestCanPurchase(t *testing.T) {
	item := &model.ShopItem{Name: "Ice cream", Denomination: model.Silver, Price: 3}

	cases := []struct {
		name string
		char model.Character
		item model.ShopItem
		qty  int
		want error
	}{
		{"ok", model.Character{Silver: 6}, *item, 2, nil},
		{"exact balance", model.Character{Silver: 3}, *item, 1, nil},
		{"short", model.Character{Silver: 5}, *item, 2, gameerr.ErrInsufficientFunds},
		{"other denominations do not count", model.Character{Gold: 100, Bronze: 100}, *item, 1, gameerr.ErrInsufficientFunds},
		{"blocked", model.Character{Silver: 50, Effects: []model.Effect{blocker(2)}}, *item, 1, gameerr.ErrShopBlocked},
		{"expired block", model.Character{Silver: 50, Effects: []model.Effect{blocker(0)}}, *item, 1, nil},
		{"out of stock", model.Character{Silver: 50}, model.ShopItem{Name: "Movie", Denomination: model.Silver, Price: 3, Stock: stock(1)}, 2, gameerr.ErrOutOfStock},
		{"last in stock", model.Character{Silver: 50}, model.ShopItem{Name: "Movie", Denomination: model.Silver, Price: 3, Stock: stock(1)}, 1, nil},
		{"zero qty", model.Character{Silver: 50}, *item, 0, gameerr.ErrInvalidArgument},
		{"cost past int64", model.Character{}, *item, math.MaxInt64/3 + 1, gameerr.ErrInsufficientFunds},
		{"cost past int64 with a full purse", model.Character{Silver: math.MaxInt64}, *item, math.MaxInt64/3 + 1, gameerr.ErrInsufficientFunds},
		{"stock checked before cost", model.Character{}, model.ShopItem{Name: "Movie", Denomination: model.Silver, Price: 3, Stock: stock(1)}, math.MaxInt64/3 + 1, gameerr.ErrOutOfStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanPurchase(&tc.char, &tc.item, tc.qty)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCost(t *testing.T) {
	item := &model.ShopItem{Name: "Ice cream", Denomination: model.Gold, Price: 3}

	cost, err := Cost(item, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), cost)

	cost, err = Cost(item, math.MaxInt64/3)
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/3*3), cost)

	_, err = Cost(item, math.MaxInt64/3+1)
	assert.ErrorIs(t, err, gameerr.ErrInsufficientFunds)

	cost, err = Cost(&model.ShopItem{Name: "Hug", Price: 0}, math.MaxInt32)
	assert.NoError(t, err)
	assert.Zero(t, cost)
}
