package field

import (
	"sort"

	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/effect"
	"github.com/nfrund/battlehub/internal/battle/mechanics"
	"github.com/nfrund/battlehub/internal/battle/turn"
)

// scoredOrder is one order plus the sort keys spec.md §4.5 step 2 ranks by.
type scoredOrder struct {
	order    turn.Order
	priority int
	inherent int
	speed    float64
	coin     float64
}

// orderActions ranks a round's orders deterministically: switches before
// moves; moves by declared priority descending, then inherent-priority
// magnitude descending, then effective speed descending, then a seeded coin
// flip for exact ties (spec.md §4.5 step 2).
func (f *Field) orderActions(orders []turn.Order) []turn.Order {
	scored := make([]scoredOrder, len(orders))
	for i, o := range orders {
		c := f.activeAt(o.Party, o.Slot)
		s := scoredOrder{order: o, coin: f.rng.Float64()}
		if o.Kind != turn.ActionSwitch && c != nil {
			s.priority = f.movePriority(c, o.MoveIndex)
			s.inherent = c.Effects.InherentPriority()
			s.speed = f.effectiveSpeed(c)
		}
		scored[i] = s
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		aSwitch := a.order.Kind == turn.ActionSwitch
		bSwitch := b.order.Kind == turn.ActionSwitch
		if aSwitch != bSwitch {
			return aSwitch
		}
		if aSwitch {
			return false
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if absInt(a.inherent) != absInt(b.inherent) {
			return absInt(a.inherent) > absInt(b.inherent)
		}
		if a.speed != b.speed {
			return a.speed > b.speed
		}
		return a.coin > b.coin
	})

	out := make([]turn.Order, len(scored))
	for i, s := range scored {
		out[i] = s.order
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (f *Field) movePriority(c *creature.Creature, moveIndex int) int {
	if moveIndex < 0 || moveIndex >= len(c.Moves) || c.Moves[moveIndex] == nil {
		return 0 // Struggle's declared priority
	}
	return c.Moves[moveIndex].Priority()
}

// effectiveSpeed folds the stage-curve multiplier and every StatModifier
// effect (paralysis, Tailwind, …) into the raw speed stat, using the same
// ±6 stage curve every other stat is scaled by (mechanics.StageMultiplier).
func (f *Field) effectiveSpeed(c *creature.Creature) float64 {
	base := float64(c.Stats[effect.StatSpe])
	return c.Effects.StatModifier(effect.StatSpe, c.Ref(), c.Ref(), base, mechanics.StageMultiplier(c.Stages[effect.StatSpe]))
}
