package field

import (
	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/turn"
)

// The methods below satisfy turn.Roster, giving the turn controller
// read-only access to what each side may legally do without depending on
// Field's own type.

func (f *Field) ActiveSlots(party battle.Party) []int {
	var out []int
	for i, idx := range f.Active[party] {
		if idx != -1 {
			out = append(out, i)
		}
	}
	return out
}

func (f *Field) ReplaceableSlots(party battle.Party) []int {
	var out []int
	for i, idx := range f.Active[party] {
		if idx == -1 {
			out = append(out, i)
		}
	}
	return out
}

func (f *Field) Legality(party battle.Party, slot int) turn.SlotLegality {
	c := f.activeAt(party, slot)
	if c == nil {
		return turn.SlotLegality{}
	}
	la := c.DetermineLegalActions(&f.Effects)
	return turn.SlotLegality{SwitchLegal: la.SwitchLegal, Moves: la.Moves, Forced: la.Forced}
}

func (f *Field) BenchSize(party battle.Party) int {
	return len(f.benchIndices(party))
}

var _ turn.Roster = (*Field)(nil)
