// Package creature implements the per-combatant state and operations of
// spec.md §3/§4.4: stat computation, status/effect installation, legal-
// action determination, move execution and HP bookkeeping, grounded on
// original_source/src/shoddybattle/Pokemon.cpp's initialise/determineLegal
// Actions/executeMove/setHp/faint/switchOut/deductPp methods.
package creature

import (
	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect"
)

// damageMemoryCap bounds the recent-damage queue (spec.md §3).
const damageMemoryCap = 4

// Mechanics computes the generation-dependent derived values spec.md §3
// calls out as a "generation-dependent mechanics strategy" owned by the
// battle field; Initialize is handed one rather than importing a concrete
// formula, so creature never depends on field.
type Mechanics interface {
	ComputeStat(stat effect.Stat, base, iv, ev, level int, natureMod float64) int
	ComputeHP(base, iv, ev, level int) int
	NatureModifier(nature int, stat effect.Stat) float64
}

// EffectFactory builds the live effect.Effect instances backing a named
// ability or item, keeping creature decoupled from wherever those concrete
// implementations (native Go or effect/script) live.
type EffectFactory interface {
	BuildAbility(name string) effect.Effect
	BuildItem(name string) effect.Effect
}

// DamageRecord is one entry in a creature's bounded recent-damage memory.
type DamageRecord struct {
	Attacker effect.Ref
	Move     string
	Amount   int
}

// Creature is one combatant: identity, derived stats, current battle state
// and its installed effect list. Exactly the attributes of spec.md §3.
type Creature struct {
	Species   dex.Species
	Nickname  string
	Level     int
	Gender    byte
	Shiny     bool
	IVs       [6]int
	EVs       [6]int
	Nature    int
	Types     []int
	Moves     [4]*MoveSlot
	ItemName  string

	baseAbility string
	factory     EffectFactory
	ability     effect.Effect
	item        effect.Effect

	// Stats holds the five computed non-HP stats, indexed by effect.Stat
	// (StatAtk..StatSpe); HP is tracked separately since it has no stage.
	Stats  [5]int
	HP     int
	MaxHP  int
	Stages [7]int

	Effects effect.List

	DamageMemory []DamageRecord
	TargetMemory map[effect.Ref]string

	ActedThisRound bool
	Fainted        bool
	Slot           int // -1 if benched
	Party          battle.Party

	// ForcedTurn is the supplemented multi-turn-lock feature (e.g. a move
	// that commits the user for several turns): when set,
	// DetermineLegalActions reports it instead of the player's own choice.
	ForcedTurn *ForcedAction
}

// ForcedAction names a move index a creature must use next turn regardless
// of player input.
type ForcedAction struct {
	MoveIndex int
}

// NewCreature builds an un-initialized creature from its persistent team
// data; call Initialize before it enters battle.
func NewCreature(species dex.Species, nickname string, level int, gender byte, shiny bool,
	ivs, evs [6]int, nature int, types []int, moves []dex.Move, ppUps []int,
	abilityName, itemName string) *Creature {

	c := &Creature{
		Species:     species,
		Nickname:    nickname,
		Level:       level,
		Gender:      gender,
		Shiny:       shiny,
		IVs:         ivs,
		EVs:         evs,
		Nature:      nature,
		Types:       types,
		baseAbility: abilityName,
		ItemName:    itemName,
		Slot:        -1,
		TargetMemory: map[effect.Ref]string{},
	}
	for i, m := range moves {
		if i >= len(c.Moves) {
			break
		}
		ppUp := 0
		if i < len(ppUps) {
			ppUp = ppUps[i]
		}
		c.Moves[i] = &MoveSlot{Template: m, PPUp: ppUp, PP: m.PP * (5 + ppUp) / 5}
	}
	return c
}

// Ref returns this creature's opaque stable handle.
func (c *Creature) Ref() effect.Ref {
	return effect.Ref{Party: int(c.Party), Slot: c.Slot}
}

// Initialize computes stats from base/IV/EV/nature/level, sets HP to max,
// and installs the ability and (if present) item as effects, per
// Pokemon::initialise.
func (c *Creature) Initialize(mech Mechanics, factory EffectFactory, party battle.Party, slot int) {
	c.Party = party
	c.Slot = slot
	c.factory = factory

	// baseStatIndex maps each non-HP effect.Stat to its slot in
	// dex.Species.BaseStats / Creature.IVs / Creature.EVs (index 0 is HP).
	baseStatIndex := [5]int{effect.StatAtk: 1, effect.StatDef: 2, effect.StatSpa: 4, effect.StatSpd: 5, effect.StatSpe: 3}
	for _, stat := range []effect.Stat{effect.StatAtk, effect.StatDef, effect.StatSpa, effect.StatSpd, effect.StatSpe} {
		idx := baseStatIndex[stat]
		natureMod := mech.NatureModifier(c.Nature, stat)
		c.Stats[stat] = mech.ComputeStat(stat, c.Species.BaseStats[idx], c.IVs[idx], c.EVs[idx], c.Level, natureMod)
	}
	c.MaxHP = mech.ComputeHP(c.Species.BaseStats[0], c.IVs[0], c.EVs[0], c.Level)
	c.HP = c.MaxHP

	c.installAbility(c.baseAbility)
	if c.ItemName != "" {
		c.installItem(c.ItemName)
	}
}

func (c *Creature) installAbility(name string) {
	if c.factory == nil || name == "" {
		return
	}
	eff := c.factory.BuildAbility(name)
	if eff == nil {
		return
	}
	eff.SetSubject(c.Ref())
	if eff.ApplyEffect(c.Ref()) {
		_ = c.Effects.Install(eff)
		c.ability = eff
	}
}

func (c *Creature) installItem(name string) {
	if c.factory == nil || name == "" {
		return
	}
	eff := c.factory.BuildItem(name)
	if eff == nil {
		return
	}
	eff.SetSubject(c.Ref())
	if eff.ApplyEffect(c.Ref()) {
		_ = c.Effects.Install(eff)
		c.item = eff
	}
}

// ForgetCreature drops every memory entry referencing ref, called on every
// surviving creature when ref faints (spec.md §4.4 faint's "clear memories
// across the field" step).
func (c *Creature) ForgetCreature(ref effect.Ref) {
	kept := c.DamageMemory[:0]
	for _, d := range c.DamageMemory {
		if d.Attacker != ref {
			kept = append(kept, d)
		}
	}
	c.DamageMemory = kept
	delete(c.TargetMemory, ref)
}

func (c *Creature) recordDamage(attacker effect.Ref, move string, amount int) {
	c.DamageMemory = append(c.DamageMemory, DamageRecord{Attacker: attacker, Move: move, Amount: amount})
	if len(c.DamageMemory) > damageMemoryCap {
		c.DamageMemory = c.DamageMemory[len(c.DamageMemory)-damageMemoryCap:]
	}
}
