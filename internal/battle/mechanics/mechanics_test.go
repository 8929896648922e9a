package mechanics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect"
)

func TestGen_ComputeStat_NatureModifierApplies(t *testing.T) {
	g := Gen{}
	neutral := g.ComputeStat(effect.StatAtk, 100, 31, 0, 50, 1.0)
	boosted := g.ComputeStat(effect.StatAtk, 100, 31, 0, 50, 1.1)
	assert.Greater(t, boosted, neutral)
}

func TestGen_ComputeHP_FixedHPSpecies(t *testing.T) {
	g := Gen{}
	assert.Equal(t, 1, g.ComputeHP(1, 31, 0, 100))
}

func TestGen_ComputeHP_Standard(t *testing.T) {
	g := Gen{}
	hp := g.ComputeHP(100, 31, 0, 50)
	assert.Greater(t, hp, 100)
}

func TestGen_NatureModifier(t *testing.T) {
	g := Gen{}
	// nature 0: boosted stat index 0 (Atk), hindered index 0 too -> neutral
	assert.Equal(t, 1.0, g.NatureModifier(0, effect.StatAtk))
	// nature 1: boosted = 0 (Atk), hindered = 1 (Def)
	assert.Equal(t, 1.1, g.NatureModifier(1, effect.StatAtk))
	assert.Equal(t, 0.9, g.NatureModifier(1, effect.StatDef))
	// accuracy/evasion stages are untouched by nature
	assert.Equal(t, 1.0, g.NatureModifier(1, effect.StatAcc))
	assert.Equal(t, 1.0, g.NatureModifier(1, effect.StatEva))
}

func TestStageMultiplier_ClampsAndScales(t *testing.T) {
	assert.Equal(t, 1.0, StageMultiplier(0))
	assert.InDelta(t, 2.0, StageMultiplier(6), 0.001)
	assert.InDelta(t, 2.0, StageMultiplier(99), 0.001) // clamps above +6
	assert.InDelta(t, 0.5, StageMultiplier(-6), 0.001)
	assert.InDelta(t, 0.5, StageMultiplier(-99), 0.001) // clamps below -6
}

type immuneEffect struct {
	*effect.BaseEffect
	typ int
}

func (e *immuneEffect) GetImmunity(user, target effect.Ref) (int, bool) { return e.typ, true }

func TestResolver_ApplyMoveEffect_TypeImmunityBlocksDamage(t *testing.T) {
	r := &Resolver{Dex: fakeDex{}, Rng: rand.New(rand.NewSource(1))}
	user := newTestCreature()
	user.Initialize(Gen{}, nil, battle.PartyA, 0)
	target := newTestCreature()
	target.Initialize(Gen{}, nil, battle.PartyB, 0)
	require.NoError(t, target.Effects.Install(&immuneEffect{BaseEffect: effect.NewBaseEffect("levitate", effect.KindAbility, true, 0, 0), typ: 0}))

	move := &creature.MoveSlot{Template: dex.Move{Name: "Tackle", Power: 40, Accuracy: 100, Type: 0}}
	r.ApplyMoveEffect(user, target, move, true)
	assert.Equal(t, target.MaxHP, target.HP)
}

func TestResolver_ApplyMoveEffect_LockingMoveArmsForcedTurn(t *testing.T) {
	r := &Resolver{Dex: fakeDex{}, Rng: rand.New(rand.NewSource(1))}
	user := newTestCreature()
	user.Initialize(Gen{}, nil, battle.PartyA, 0)
	target := newTestCreature()
	target.Initialize(Gen{}, nil, battle.PartyB, 0)

	move := user.Moves[0]
	move.Template.Locking = true
	r.ApplyMoveEffect(user, target, move, true)

	require.NotNil(t, user.ForcedTurn)
	assert.Equal(t, 0, user.ForcedTurn.MoveIndex)
}

type fakeDex struct{}

func (fakeDex) TypeMultiplier(attack int, defend []int) float64 { return 1.0 }

func testSpecies() dex.Species {
	return dex.Species{ID: 1, Name: "Testmon", BaseStats: [6]int{100, 60, 60, 60, 60, 60}, Types: []int{0}}
}

func testMoves() []dex.Move {
	return []dex.Move{{ID: 1, Name: "Tackle", Power: 40, Accuracy: 100, PP: 10, Target: dex.TargetEnemyAdjacent}}
}

func newTestCreature() *creature.Creature {
	c := creature.NewCreature(testSpecies(), "Testmon", 50, 0, false, [6]int{31, 31, 31, 31, 31, 31},
		[6]int{0, 0, 0, 0, 0, 0}, 0, []int{0}, testMoves(), []int{0}, "", "")
	return c
}

func TestResolver_AttemptHit_AccuracyExemptMoveAlwaysHits(t *testing.T) {
	r := &Resolver{Dex: fakeDex{}, Rng: rand.New(rand.NewSource(1))}
	user := newTestCreature()
	target := newTestCreature()
	move := &creature.MoveSlot{Template: dex.Move{Accuracy: 0}}
	assert.True(t, r.AttemptHit(user, target, move))
}
