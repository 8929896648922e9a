// Package field implements the battle field (C5): team rosters, active
// slots, round ordering and execution, victory detection and target
// resolution, grounded on original_source/src/network/NetworkBattle.cpp's
// executeTurn/requestReplacements and the data model of
// shoddybattle::BattleField (spec.md §3, §4.5).
package field

import (
	"math/rand"
	"time"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/effect"
	"github.com/nfrund/battlehub/internal/battle/events"
	"github.com/nfrund/battlehub/internal/battle/turn"
)

// ExecutionFrame records one in-flight move resolution, so nested effect
// hooks can query "what is being resolved right now" (spec.md §4.4
// executeMove).
type ExecutionFrame struct {
	User     effect.Ref
	MoveName string
}

// Field is one battle's shared state: both rosters, active-slot mapping,
// the field-level effect list and the execution stack.
type Field struct {
	Generation int
	PartySize  int
	Teams      [2][]*creature.Creature
	Active     [2][]int // roster index per active slot, -1 = empty
	Effects    effect.List
	Stack      []ExecutionFrame
	LastMove   effect.Ref
	Narrate    bool
	Host       battle.Party

	mech     creature.Mechanics
	resolver creature.MoveResolver
	emit     turn.Emitter
	rng      *rand.Rand

	controller *turn.Controller
}

// NewField constructs a field over two already-initialized rosters and
// starts its turn controller. rng should be seeded deterministically in
// tests (spec.md §4.5's "tests can seed it" note). turnIdleTimeout bounds
// how long the controller waits for orders before the silent party forfeits
// (spec.md §7); <= 0 disables the timer.
func NewField(generation, partySize int, teams [2][]*creature.Creature, mech creature.Mechanics,
	resolver creature.MoveResolver, emit turn.Emitter, rng *rand.Rand, host battle.Party,
	turnIdleTimeout time.Duration) *Field {

	f := &Field{
		Generation: generation,
		PartySize:  partySize,
		Teams:      teams,
		mech:       mech,
		resolver:   resolver,
		emit:       emit,
		rng:        rng,
		Host:       host,
	}
	f.controller = turn.NewController(f, f, emit, turnIdleTimeout)
	return f
}

// Stop tears down the field's turn controller worker.
func (f *Field) Stop() { f.controller.Stop() }

// HandleTurn forwards a client-submitted order to the turn controller.
func (f *Field) HandleTurn(party battle.Party, slot int, order turn.Order) error {
	return f.controller.HandleTurn(party, slot, order)
}

// CancelAction forwards a cancellation request to the turn controller.
func (f *Field) CancelAction(party battle.Party) {
	f.controller.CancelAction(party)
}

// BeginBattle sends out each side's initial actives, announces BATTLE_BEGIN
// privately and BATTLE_POKEMON to observers, then opens turn 1 (spec.md
// §4.5 beginBattle).
func (f *Field) BeginBattle() {
	for _, party := range [2]battle.Party{battle.PartyA, battle.PartyB} {
		f.sendOutInitial(party)
	}
	for _, party := range [2]battle.Party{battle.PartyA, battle.PartyB} {
		f.emit.ToParty(party, events.BattleBegin{Opponent: f.opponentName(party), Party: party})
	}
	f.emit.Broadcast(f.battlePokemonEvent())
	f.controller.BeginTurn()
}

func (f *Field) sendOutInitial(party battle.Party) {
	f.Active[party] = make([]int, f.PartySize)
	active := 0
	for i, c := range f.Teams[party] {
		if active >= f.PartySize {
			break
		}
		if c.Fainted {
			continue
		}
		c.Party = party
		c.Slot = active
		c.Effects.SwitchIn()
		f.Active[party][active] = i
		active++
	}
	for ; active < f.PartySize; active++ {
		f.Active[party][active] = -1
	}
}

func (f *Field) opponentName(party battle.Party) string {
	if c := f.activeAt(party.Opponent(), 0); c != nil {
		return c.Nickname
	}
	return ""
}

func (f *Field) battlePokemonEvent() events.BattlePokemon {
	var ev events.BattlePokemon
	for party := 0; party < 2; party++ {
		slots := make([]events.PokemonSlot, f.PartySize)
		for i, rosterIdx := range f.Active[party] {
			if rosterIdx == -1 {
				slots[i] = events.PokemonSlot{Species: -1}
				continue
			}
			c := f.Teams[party][rosterIdx]
			var shiny byte
			if c.Shiny {
				shiny = 1
			}
			slots[i] = events.PokemonSlot{Species: int16(c.Species.ID), Gender: c.Gender, Shiny: shiny}
		}
		ev.Slots[party] = slots
	}
	return ev
}

func (f *Field) activeAt(party battle.Party, slot int) *creature.Creature {
	if int(party) >= len(f.Active) || slot < 0 || slot >= len(f.Active[party]) {
		return nil
	}
	idx := f.Active[party][slot]
	if idx == -1 {
		return nil
	}
	return f.Teams[party][idx]
}

// benchIndices returns the roster indices of party's non-active,
// non-fainted creatures, in roster order — the ordering turn.Order's
// switch Target field indexes into.
func (f *Field) benchIndices(party battle.Party) []int {
	activeSet := make(map[int]bool, len(f.Active[party]))
	for _, idx := range f.Active[party] {
		if idx != -1 {
			activeSet[idx] = true
		}
	}
	var out []int
	for i, c := range f.Teams[party] {
		if activeSet[i] || c.Fainted {
			continue
		}
		out = append(out, i)
	}
	return out
}
