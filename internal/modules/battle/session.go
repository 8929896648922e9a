// Package battle wires the battle engine's subpackages (creature, field,
// turn, room, the TCP/WS transports) into a running module, grounded on the
// teacher's internal/modules/wargame (module.go's Register/Boot split,
// engine.go's uuid-tagged lifecycle events).
package battle

import (
	"fmt"
	"math/rand"
	"time"

	batdex "github.com/nfrund/battlehub/internal/battle/dex"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/field"
	"github.com/nfrund/battlehub/internal/battle/mechanics"
	"github.com/nfrund/battlehub/internal/battle/room"
)

// TeamMemberSpec is the client-facing, validator-tagged description of one
// roster slot a team import submits (spec.md §6's external team-import
// collaborator). go-playground/validator enforces shape before any of it
// reaches creature.NewCreature.
type TeamMemberSpec struct {
	Species  string `validate:"required"`
	Nickname string `validate:"omitempty,max=24"`
	Level    int    `validate:"required,min=1,max=100"`
	Gender   byte   `validate:"omitempty,oneof=0 1 2"`
	Shiny    bool
	IVs      [6]int   `validate:"dive,min=0,max=31"`
	EVs      [6]int   `validate:"dive,min=0,max=255"`
	Nature   int      `validate:"min=0,max=24"`
	Moves    []string `validate:"required,min=1,max=4,dive,required"`
	PPUps    []int    `validate:"dive,min=0,max=3"`
	Ability  string   `validate:"omitempty"`
	Item     string   `validate:"omitempty"`
}

// BuildTeam resolves each spec against dex and constructs the roster
// creature.NewCreature expects, failing closed on any unknown species/move
// name rather than silently skipping it.
func BuildTeam(dex batdex.Dex, specs []TeamMemberSpec) ([]*creature.Creature, error) {
	team := make([]*creature.Creature, 0, len(specs))
	for _, spec := range specs {
		species, ok := dex.SpeciesByName(spec.Species)
		if !ok {
			return nil, fmt.Errorf("battle: unknown species %q", spec.Species)
		}
		moves := make([]batdex.Move, 0, len(spec.Moves))
		for _, name := range spec.Moves {
			move, ok := dex.MoveByName(name)
			if !ok {
				return nil, fmt.Errorf("battle: unknown move %q", name)
			}
			moves = append(moves, move)
		}
		nickname := spec.Nickname
		if nickname == "" {
			nickname = species.Name
		}
		team = append(team, creature.NewCreature(species, nickname, spec.Level, spec.Gender, spec.Shiny,
			spec.IVs, spec.EVs, spec.Nature, species.Types, moves, spec.PPUps, spec.Ability, spec.Item))
	}
	return team, nil
}

// Session is one live battle: its field, the turn controller it owns, and
// the battle room carrying it over the wire.
type Session struct {
	ID    string
	Field *field.Field
	Room  *room.BattleRoom
}

// NewSession constructs both teams, wires the field to its battle room, and
// begins the battle, per spec.md §4.5's BeginBattle step. partySize is the
// number of simultaneous active slots per side (1 for singles, 2 for
// doubles).
func NewSession(id string, generation, partySize int, dexImpl batdex.Dex, factory creature.EffectFactory,
	teamSpecsA, teamSpecsB []TeamMemberSpec, participantA, participantB room.Member, rng *rand.Rand,
	host battle.Party, turnIdleTimeout, roomIdleTimeout time.Duration) (*Session, error) {

	teamA, err := BuildTeam(dexImpl, teamSpecsA)
	if err != nil {
		return nil, fmt.Errorf("battle: party A: %w", err)
	}
	teamB, err := BuildTeam(dexImpl, teamSpecsB)
	if err != nil {
		return nil, fmt.Errorf("battle: party B: %w", err)
	}

	br := room.NewBattleRoom(int32(hashID(id)), "battle-"+id, participantA, participantB, roomIdleTimeout)

	mech := mechanics.Gen{}
	resolver := &mechanics.Resolver{Dex: dexImpl, Rng: rng}

	for _, c := range teamA {
		c.Initialize(mech, factory, battle.PartyA, -1)
	}
	for _, c := range teamB {
		c.Initialize(mech, factory, battle.PartyB, -1)
	}

	teams := [2][]*creature.Creature{teamA, teamB}
	f := field.NewField(generation, partySize, teams, mech, resolver, br, rng, host, turnIdleTimeout)
	br.Bind(f)

	f.BeginBattle()

	return &Session{ID: id, Field: f, Room: br}, nil
}

// hashID folds a uuid string down to the int32 wire-level room/field handle
// spec.md §4.2 calls for; collisions only matter within one process's live
// room set, which Manager already guards against by construction.
func hashID(id string) int32 {
	var h uint32 = 2166136261
	for i := 0; i < len(id); i++ {
		h ^= uint32(id[i])
		h *= 16777619
	}
	return int32(h & 0x7fffffff)
}
