package effect

import "github.com/hearthguild/server/model"

// Tick returns a copy of effects with every duration decreased by one day,
// floored at zero. Nothing else changes and the input is left untouched.
func Tick(effects []model.Effect) []model.Effect {
	out := make([]model.Effect, len(effects))
	copy(out, effects)
	for i := range out {
		if out[i].Duration > 0 {
			out[i].Duration--
		} else {
			out[i].Duration = 0
		}
	}
	return out
}
