package field

import (
	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/dex"
)

// resolveTargets materializes move's target list against the current
// actives, per spec.md §4.5's target-class resolution rule. encoding is the
// client-submitted target slot for the adjacency-dependent classes.
func (f *Field) resolveTargets(party battle.Party, user *creature.Creature, move *creature.MoveSlot, encoding int) []*creature.Creature {
	switch move.Template.Target {
	case dex.TargetUser:
		return []*creature.Creature{user}

	case dex.TargetAlly:
		if ally := f.activeAt(party, encoding); ally != nil && ally != user {
			return []*creature.Creature{ally}
		}
		return nil

	case dex.TargetEnemyAll:
		return f.activeList(party.Opponent())

	case dex.TargetAllOthers:
		out := f.activeList(party.Opponent())
		for _, ally := range f.activeList(party) {
			if ally != user {
				out = append(out, ally)
			}
		}
		return out

	case dex.TargetField:
		return nil

	case dex.TargetRandomEnemy:
		enemies := f.activeList(party.Opponent())
		if len(enemies) == 0 {
			return nil
		}
		return []*creature.Creature{enemies[f.rng.Intn(len(enemies))]}

	default: // TargetEnemyAdjacent
		if t := f.activeAt(party.Opponent(), encoding); t != nil {
			return []*creature.Creature{t}
		}
		if enemies := f.activeList(party.Opponent()); len(enemies) > 0 {
			return enemies[:1]
		}
		return nil
	}
}

// activeList returns party's current non-empty active creatures in slot
// order.
func (f *Field) activeList(party battle.Party) []*creature.Creature {
	var out []*creature.Creature
	for slot := range f.Active[party] {
		if c := f.activeAt(party, slot); c != nil {
			out = append(out, c)
		}
	}
	return out
}
