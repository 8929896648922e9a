package field

import (
	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect"
	"github.com/nfrund/battlehub/internal/battle/events"
	"github.com/nfrund/battlehub/internal/battle/turn"
)

// ProcessTurn resolves one full round: order the actions, run each,
// process end-of-turn effects, then check for victory or a replacement
// sub-round, per spec.md §4.5.
func (f *Field) ProcessTurn(orders []turn.Order) turn.Outcome {
	for _, o := range f.orderActions(orders) {
		c := f.activeAt(o.Party, o.Slot)
		if c == nil || c.Fainted {
			continue
		}
		switch o.Kind {
		case turn.ActionSwitch:
			f.performSwitch(o.Party, o.Slot, o.Target)
		case turn.ActionMove:
			f.performMove(o.Party, c, o.MoveIndex, o.Target)
		}
	}

	f.runEndOfTurn()

	if victory, winner := f.checkVictory(); victory {
		return turn.Outcome{Victory: true, Winner: winner}
	}
	return turn.Outcome{NeedsReplacement: f.needsReplacement()}
}

// ProcessReplacements resolves a replacement sub-round: only switch orders
// are present, and no end-of-turn tick runs.
func (f *Field) ProcessReplacements(orders []turn.Order) turn.Outcome {
	for _, o := range orders {
		if o.Kind == turn.ActionSwitch {
			f.performSwitch(o.Party, o.Slot, o.Target)
		}
	}
	if victory, winner := f.checkVictory(); victory {
		return turn.Outcome{Victory: true, Winner: winner}
	}
	return turn.Outcome{NeedsReplacement: f.needsReplacement()}
}

func (f *Field) performSwitch(party battle.Party, activeSlot, benchTarget int) {
	bench := f.benchIndices(party)
	if benchTarget < 0 || benchTarget >= len(bench) {
		return
	}
	rosterIdx := bench[benchTarget]

	if outIdx := f.Active[party][activeSlot]; outIdx != -1 {
		out := f.Teams[party][outIdx]
		f.emit.Broadcast(events.Withdraw{Party: party, Slot: byte(activeSlot), Name: out.Nickname})
		out.SwitchOut()
	}

	in := f.Teams[party][rosterIdx]
	in.Party = party
	in.Slot = activeSlot
	in.Effects.SwitchIn()
	f.Active[party][activeSlot] = rosterIdx

	f.emit.Broadcast(events.SendOut{Party: party, Slot: byte(activeSlot), Index: byte(rosterIdx), Name: in.Nickname})
	f.emit.Broadcast(f.battlePokemonEvent())
}

// struggleMoveIndex marks "no legal move" orders, which performMove
// resolves to a synthesized Struggle.
const struggleMoveIndex = -1

func (f *Field) performMove(party battle.Party, user *creature.Creature, moveIndex, targetEncoding int) {
	var move *creature.MoveSlot
	if moveIndex == struggleMoveIndex || moveIndex < 0 || moveIndex >= len(user.Moves) || user.Moves[moveIndex] == nil {
		move = &creature.MoveSlot{Template: dex.Move{Name: "Struggle", Power: 50, Accuracy: 100, PP: 1, Target: dex.TargetEnemyAdjacent}, PP: 1}
	} else {
		move = user.Moves[moveIndex]
		pp := move.DeductPP()
		f.emit.ToParty(party, events.SetPP{Index: byte(user.Slot), Move: byte(moveIndex), PP: byte(pp)})
	}

	f.emit.Broadcast(events.UseMove{Party: party, Slot: byte(user.Slot), Name: move.Name(), MoveID: int16(move.Template.ID)})

	targets := f.resolveTargets(party, user, move, targetEncoding)
	preFaintRefs := make(map[*creature.Creature]effect.Ref, len(targets))
	preHP := make(map[*creature.Creature]int, len(targets))
	for _, t := range targets {
		preFaintRefs[t] = t.Ref()
		preHP[t] = t.HP
	}

	f.LastMove = user.Ref()
	f.Stack = append(f.Stack, ExecutionFrame{User: user.Ref(), MoveName: move.Name()})
	user.ExecuteMove(f.resolver, &f.Effects, move, targets, true)
	f.Stack = f.Stack[:len(f.Stack)-1]

	for _, t := range targets {
		if t.HP != preHP[t] {
			f.emit.Broadcast(events.HealthChange{
				Party: battle.Party(preFaintRefs[t].Party),
				Slot:  byte(preFaintRefs[t].Slot),
				Name:  t.Nickname,
				Delta: events.ScaleHealthTo48(t.HP-preHP[t], t.MaxHP),
				Total: events.ScaleHealthTo48(t.HP, t.MaxHP),
			})
		}
		if t.Fainted {
			f.handleFaint(t, preFaintRefs[t])
		}
	}
}

// handleFaint announces a fainted creature, frees its active slot and
// clears every roster member's memory of it, per spec.md §4.4 faint's
// "clear memories across the field" step. ref is the creature's handle as
// it was immediately before fainting, since Faint() clears its own slot.
func (f *Field) handleFaint(t *creature.Creature, ref effect.Ref) {
	f.emit.Broadcast(events.Fainted{Party: battle.Party(ref.Party), Slot: byte(ref.Slot), Name: t.Nickname})
	if ref.Slot >= 0 && ref.Slot < len(f.Active[battle.Party(ref.Party)]) {
		f.Active[battle.Party(ref.Party)][ref.Slot] = -1
	}
	for _, team := range f.Teams {
		for _, other := range team {
			other.ForgetCreature(ref)
		}
	}
}

// runEndOfTurn runs residual field- and creature-level effects in
// declared-tier order, faints anything residual damage finishes off, then
// sweeps every removable effect (spec.md §4.5 step 4).
func (f *Field) runEndOfTurn() {
	f.Effects.RunEndOfTurn(effect.Ref{})
	for _, team := range f.Teams {
		for _, c := range team {
			if c.Fainted || c.Slot == -1 {
				continue
			}
			ref := c.Ref()
			preHP := c.HP
			c.Effects.RunEndOfTurn(ref)
			if c.HP != preHP {
				f.emit.Broadcast(events.HealthChange{
					Party: battle.Party(ref.Party),
					Slot:  byte(ref.Slot),
					Name:  c.Nickname,
					Delta: events.ScaleHealthTo48(c.HP-preHP, c.MaxHP),
					Total: events.ScaleHealthTo48(c.HP, c.MaxHP),
				})
			}
			if c.Fainted {
				f.handleFaint(c, ref)
			}
		}
	}

	f.Effects.Sweep()
	for _, team := range f.Teams {
		for _, c := range team {
			c.Effects.Sweep()
		}
	}
}

func (f *Field) checkVictory() (victory bool, winner int16) {
	aliveA := f.teamHasSurvivors(battle.PartyA)
	aliveB := f.teamHasSurvivors(battle.PartyB)
	switch {
	case !aliveA && !aliveB:
		return true, -1
	case !aliveA:
		return true, int16(battle.PartyB)
	case !aliveB:
		return true, int16(battle.PartyA)
	default:
		return false, 0
	}
}

func (f *Field) teamHasSurvivors(party battle.Party) bool {
	for _, c := range f.Teams[party] {
		if !c.Fainted {
			return true
		}
	}
	return false
}

func (f *Field) needsReplacement() bool {
	for _, party := range [2]battle.Party{battle.PartyA, battle.PartyB} {
		if !f.teamHasSurvivors(party) {
			continue
		}
		for _, idx := range f.Active[party] {
			if idx == -1 && len(f.benchIndices(party)) > 0 {
				return true
			}
		}
	}
	return false
}

var _ turn.Executor = (*Field)(nil)
