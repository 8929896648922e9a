package creature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle"
	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect"
)

type stubMechanics struct{}

func (stubMechanics) ComputeStat(stat effect.Stat, base, iv, ev, level int, natureMod float64) int {
	return base + iv + ev/4 + level
}
func (stubMechanics) ComputeHP(base, iv, ev, level int) int { return base + iv + ev/4 + level + 10 }
func (stubMechanics) NatureModifier(nature int, stat effect.Stat) float64 { return 1.0 }

type stubAbility struct{ *effect.BaseEffect }

type stubFactory struct{ built []string }

func (f *stubFactory) BuildAbility(name string) effect.Effect {
	f.built = append(f.built, "ability:"+name)
	return &stubAbility{effect.NewBaseEffect(name, effect.KindAbility, true, 0, 0)}
}
func (f *stubFactory) BuildItem(name string) effect.Effect {
	f.built = append(f.built, "item:"+name)
	return &stubAbility{effect.NewBaseEffect(name, effect.KindItem, true, 0, 0)}
}

func testSpecies() dex.Species {
	return dex.Species{ID: 1, Name: "Testmon", BaseStats: [6]int{100, 50, 50, 40, 60, 60}, Types: []int{0}}
}

func testMoves() []dex.Move {
	return []dex.Move{
		{ID: 1, Name: "Tackle", Power: 40, Accuracy: 100, PP: 35, Priority: 0},
		{ID: 2, Name: "Growl", Power: 0, Accuracy: 100, PP: 40, Priority: 0},
	}
}

func newTestCreature() *Creature {
	return NewCreature(testSpecies(), "Buddy", 50, 0, false, [6]int{31, 31, 31, 31, 31, 31},
		[6]int{0, 0, 0, 0, 0, 0}, 0, []int{0}, testMoves(), []int{0, 0}, "Guts", "Leftovers")
}

func TestNewCreature_ComputesMovePP(t *testing.T) {
	c := newTestCreature()
	require.NotNil(t, c.Moves[0])
	assert.Equal(t, 35, c.Moves[0].PP)
	assert.Equal(t, 40, c.Moves[1].PP)
}

func TestInitialize_SetsStatsHPAndInstallsAbilityItem(t *testing.T) {
	c := newTestCreature()
	factory := &stubFactory{}
	c.Initialize(stubMechanics{}, factory, battle.PartyA, 0)

	assert.Equal(t, c.MaxHP, c.HP)
	assert.Greater(t, c.MaxHP, 0)
	assert.True(t, c.Effects.Has("Guts"))
	assert.True(t, c.Effects.Has("Leftovers"))
	assert.ElementsMatch(t, []string{"ability:Guts", "item:Leftovers"}, factory.built)
	assert.Equal(t, effect.Ref{Party: 0, Slot: 0}, c.Ref())
}

func TestDetermineLegalActions_OutOfPPMoveIsIllegal(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	c.Moves[1].PP = 0

	la := c.DetermineLegalActions(nil)
	assert.True(t, la.Moves[0])
	assert.False(t, la.Moves[1])
	assert.False(t, la.Forced)
}

func TestDetermineLegalActions_AllOutOfPPForcesStruggle(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	c.Moves[0].PP = 0
	c.Moves[1].PP = 0

	la := c.DetermineLegalActions(nil)
	assert.True(t, la.Forced)
}

func TestDetermineLegalActions_ForcedTurnLocksToSingleMove(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	c.ForcedTurn = &ForcedAction{MoveIndex: 1}

	la := c.DetermineLegalActions(nil)
	assert.False(t, la.Moves[0])
	assert.True(t, la.Moves[1])
	assert.False(t, la.SwitchLegal)
	assert.Nil(t, c.ForcedTurn, "the lock is consumed once reported")
}

func TestDetermineLegalActions_ForcedTurnClearsWhenMoveOutOfPP(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	c.Moves[1].PP = 0
	c.ForcedTurn = &ForcedAction{MoveIndex: 1}

	la := c.DetermineLegalActions(nil)
	assert.Nil(t, c.ForcedTurn)
	assert.True(t, la.Moves[0])
}

func TestLockInto_SetsForcedTurnToTheMoveSlotsIndex(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	c.LockInto(c.Moves[1])
	require.NotNil(t, c.ForcedTurn)
	assert.Equal(t, 1, c.ForcedTurn.MoveIndex)
}

func TestLockInto_UnknownMoveSlotIsIgnored(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	c.LockInto(&MoveSlot{})
	assert.Nil(t, c.ForcedTurn)
}

type alwaysVeto struct{ *effect.BaseEffect }

func (alwaysVeto) VetoSelection(user effect.Ref, move effect.Move) bool { return true }

func TestDetermineLegalActions_FieldVetoDisallowsSwitch(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	field := &effect.List{}
	require.NoError(t, field.Install(alwaysVeto{effect.NewBaseEffect("trap", effect.KindField, false, 0, 0)}))

	la := c.DetermineLegalActions(field)
	assert.False(t, la.SwitchLegal)
}

func TestSetHP_DamageRecordsAndFaints(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	attacker := newTestCreature()
	attacker.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyB, 0)

	delta := c.SetHP(0, false, &DamageSource{Attacker: attacker.Ref(), AttackerEffects: &attacker.Effects, Move: "Tackle"})
	assert.Equal(t, -c.MaxHP, delta)
	assert.True(t, c.Fainted)
	require.Len(t, c.DamageMemory, 1)
	assert.Equal(t, attacker.Ref(), c.DamageMemory[0].Attacker)
}

func TestSetHP_ZeroDeltaIsNoop(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	delta := c.SetHP(c.HP, false, nil)
	assert.Equal(t, 0, delta)
	assert.False(t, c.Fainted)
}

func TestForgetCreature_ClearsMemory(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	ref := effect.Ref{Party: 1, Slot: 0}
	c.DamageMemory = []DamageRecord{{Attacker: ref, Move: "Tackle", Amount: 5}}
	c.TargetMemory[ref] = "Growl"

	c.ForgetCreature(ref)
	assert.Empty(t, c.DamageMemory)
	assert.NotContains(t, c.TargetMemory, ref)
}

func TestSwitchOut_RestoresAbilityAndClearsTransientState(t *testing.T) {
	c := newTestCreature()
	factory := &stubFactory{}
	c.Initialize(stubMechanics{}, factory, battle.PartyA, 0)
	c.Moves[0].Used = true
	c.DamageMemory = []DamageRecord{{Amount: 3}}

	c.SwitchOut()
	assert.Equal(t, -1, c.Slot)
	assert.Empty(t, c.DamageMemory)
	assert.False(t, c.Moves[0].Used)
	assert.True(t, c.Effects.Has("Guts"))
}

type stubResolver struct{ hit bool }

func (s stubResolver) AttemptHit(user, target *Creature, move *MoveSlot) bool { return s.hit }
func (s stubResolver) ApplyMoveEffect(user, target *Creature, move *MoveSlot, hit bool) {
	if hit {
		target.SetHP(target.HP-10, false, &DamageSource{Attacker: user.Ref(), AttackerEffects: &user.Effects, Move: move.Name()})
	}
}

func TestExecuteMove_HitAppliesDamageAndMarksUsed(t *testing.T) {
	user := newTestCreature()
	user.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	target := newTestCreature()
	target.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyB, 0)
	startHP := target.HP

	ok := user.ExecuteMove(stubResolver{hit: true}, nil, user.Moves[0], []*Creature{target}, true)
	assert.True(t, ok)
	assert.True(t, user.Moves[0].Used)
	assert.True(t, user.ActedThisRound)
	assert.Less(t, target.HP, startHP)
}

func TestExecuteMove_FieldVetoStopsBeforeUse(t *testing.T) {
	user := newTestCreature()
	user.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)
	target := newTestCreature()
	target.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyB, 0)

	field := &effect.List{}
	vetoEff := vetoExecutor{effect.NewBaseEffect("imprison", effect.KindField, false, 0, 0)}
	require.NoError(t, field.Install(vetoEff))

	ok := user.ExecuteMove(stubResolver{hit: true}, field, user.Moves[0], []*Creature{target}, true)
	assert.False(t, ok)
	assert.False(t, user.Moves[0].Used)
	assert.True(t, user.ActedThisRound)
}

type vetoExecutor struct{ *effect.BaseEffect }

func (vetoExecutor) VetoExecution(user, target effect.Ref, move effect.Move) bool { return true }

func TestApplyStatus_SingletonRefusesReinstall(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	build := func(id string) effect.Effect {
		return effect.NewBaseEffect(id, effect.KindCondition, true, 0, 0)
	}
	_, ok := c.ApplyStatus(effect.Ref{}, "paralysis", build, nil)
	assert.True(t, ok)

	_, ok2 := c.ApplyStatus(effect.Ref{}, "paralysis", build, nil)
	assert.False(t, ok2)
}

func TestRemoveStatus_MarksRemovableForSweep(t *testing.T) {
	c := newTestCreature()
	c.Initialize(stubMechanics{}, &stubFactory{}, battle.PartyA, 0)

	build := func(id string) effect.Effect { return effect.NewBaseEffect(id, effect.KindCondition, true, 0, 0) }
	eff, ok := c.ApplyStatus(effect.Ref{}, "confusion", build, nil)
	require.True(t, ok)

	c.RemoveStatus(eff)
	assert.True(t, c.Effects.Has("confusion"))
	c.Effects.Sweep()
	assert.False(t, c.Effects.Has("confusion"))
}
