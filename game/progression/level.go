package progression

import "github.com/hearthguild/server/model"

// expPerLevel is the linear threshold step: level N needs N*200 exp.
const expPerLevel = 200

// ExpNeeded returns the experience required to advance past level.
func ExpNeeded(level int) int64 {
	return int64(level) * expPerLevel
}

// ApplyLevelUps converts surplus experience into levels, possibly several
// at once, and returns the number of levels gained. A level below 1 is
// treated as 1.
func ApplyLevelUps(c *model.Character) int {
	if c.Level < 1 {
		c.Level = 1
	}
	if c.Exp < 0 {
		c.Exp = 0
	}
	gained := 0
	for c.Exp >= ExpNeeded(c.Level) {
		c.Exp -= ExpNeeded(c.Level)
		c.Level++
		gained++
	}
	return gained
}

// Progress reports exp into the current level and the threshold for it.
func Progress(c *model.Character) (current, needed int64) {
	level := c.Level
	if level < 1 {
		level = 1
	}
	return c.Exp, ExpNeeded(level)
}
