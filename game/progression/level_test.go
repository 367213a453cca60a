package progression

import (
	"testing"

	"github.com/hearthguild/server/model"
	"github.com/stretchr/testify/assert"
)

func TestExpNeeded_Linear(t *testing.T) {
	assert.Equal(t, int64(200), ExpNeeded(1))
	assert.Equal(t, int64(400), ExpNeeded(2))
	assert.Equal(t, int64(2000), ExpNeeded(10))
}

func TestApplyLevelUps_Single(t *testing.T) {
	c := &model.Character{Level: 1, Exp: 250}
	gained := ApplyLevelUps(c)
	assert.Equal(t, 1, gained)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, int64(50), c.Exp)
}

func TestApplyLevelUps_Cascade(t *testing.T) {
	// 1000 exp at level 1: -200 (L2, 800), -400 (L3, 400), 400 < 600 stops.
	c := &model.Character{Level: 1, Exp: 1000}
	gained := ApplyLevelUps(c)
	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, c.Level)
	assert.Equal(t, int64(400), c.Exp)
}

func TestApplyLevelUps_MatchesRepeatedSubtraction(t *testing.T) {
	for _, exp := range []int64{0, 199, 200, 599, 600, 12345, 100000} {
		c := &model.Character{Level: 1, Exp: exp}
		ApplyLevelUps(c)

		level, rest := 1, exp
		for rest >= int64(level)*200 {
			rest -= int64(level) * 200
			level++
		}
		assert.Equal(t, level, c.Level, "exp=%d", exp)
		assert.Equal(t, rest, c.Exp, "exp=%d", exp)
		assert.Less(t, c.Exp, ExpNeeded(c.Level))
	}
}

func TestApplyLevelUps_ExactThreshold(t *testing.T) {
	c := &model.Character{Level: 3, Exp: 600}
	assert.Equal(t, 1, ApplyLevelUps(c))
	assert.Equal(t, 4, c.Level)
	assert.Equal(t, int64(0), c.Exp)
}

func TestApplyLevelUps_NoChange(t *testing.T) {
	c := &model.Character{Level: 2, Exp: 399}
	assert.Equal(t, 0, ApplyLevelUps(c))
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, int64(399), c.Exp)
}

func TestApplyLevelUps_NormalizesLevel(t *testing.T) {
	c := &model.Character{Level: 0, Exp: 10}
	ApplyLevelUps(c)
	assert.Equal(t, 1, c.Level)
}

func TestProgress(t *testing.T) {
	cur, need := Progress(&model.Character{Level: 4, Exp: 120})
	assert.Equal(t, int64(120), cur)
	assert.Equal(t, int64(800), need)
}
