package script

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle/effect"
	batscript "github.com/nfrund/battlehub/internal/script"
)

type fakeEngine struct {
	result interface{}
	err    error
	calls  []batscript.EnhancedExecutionRequest
}

func (f *fakeEngine) ExecuteWithContext(ctx context.Context, req batscript.EnhancedExecutionRequest) (*batscript.ScriptOutput, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &batscript.ScriptOutput{Result: f.result}, nil
}

func newTestEffect(fe *fakeEngine, sources Sources) *ScriptedEffect {
	base := effect.NewBaseEffect("taunt", effect.KindCondition, false, 0, 0)
	return NewScriptedEffect(base, fe, sources)
}

func TestScriptedEffect_VetoSelection_RunsRegisteredHook(t *testing.T) {
	fe := &fakeEngine{result: true}
	se := newTestEffect(fe, Sources{HookVetoSelection: "veto := true"})

	assert.True(t, se.VetoSelection(effect.Ref{Party: 0, Slot: 1}, nil))
	require.Len(t, fe.calls, 1)
	assert.Equal(t, "taunt.vetoSelection", fe.calls[0].ScriptName)
}

func TestScriptedEffect_VetoSelection_AbsentHookNeverVetoes(t *testing.T) {
	fe := &fakeEngine{result: true}
	se := newTestEffect(fe, Sources{})

	assert.False(t, se.VetoSelection(effect.Ref{}, nil))
	assert.Empty(t, fe.calls)
}

func TestScriptedEffect_VetoSelection_ScriptErrorFailsOpen(t *testing.T) {
	fe := &fakeEngine{err: &batscript.ScriptError{Message: "boom"}}
	se := newTestEffect(fe, Sources{HookVetoSelection: "veto := true"})

	assert.False(t, se.VetoSelection(effect.Ref{}, nil))
}

func TestScriptedEffect_VetoSelection_ContextUnavailableFailsOpen(t *testing.T) {
	fe := &fakeEngine{err: errors.New("pool exhausted")}
	se := newTestEffect(fe, Sources{HookVetoSelection: "veto := true"})

	assert.False(t, se.VetoSelection(effect.Ref{}, nil))
}

func TestScriptedEffect_ApplyEffect_NoHookFallsBackToBase(t *testing.T) {
	fe := &fakeEngine{}
	se := newTestEffect(fe, Sources{})

	assert.True(t, se.ApplyEffect(effect.Ref{}))
	assert.Empty(t, fe.calls)
}

func TestScriptedEffect_ApplyEffect_ScriptCanRefuseInstall(t *testing.T) {
	fe := &fakeEngine{result: false}
	se := newTestEffect(fe, Sources{HookApplyEffect: "ok := false"})

	assert.False(t, se.ApplyEffect(effect.Ref{}))
}

func TestScriptedEffect_SwitchOut_RemovesWhenHookSaysSo(t *testing.T) {
	fe := &fakeEngine{result: true}
	se := newTestEffect(fe, Sources{HookSwitchOut: "remove := true"})

	assert.True(t, se.SwitchOut())
}

func TestScriptedEffect_SatisfiesOptionalInterfaces(t *testing.T) {
	var _ effect.VetoSelector = (*ScriptedEffect)(nil)
	var _ effect.VetoExecutor = (*ScriptedEffect)(nil)
	var _ effect.SwitchLifecycle = (*ScriptedEffect)(nil)
	var _ effect.TargetInformer = (*ScriptedEffect)(nil)
	var _ effect.CriticalModifier = (*ScriptedEffect)(nil)
	var _ effect.ImmunityProvider = (*ScriptedEffect)(nil)
	var _ effect.VulnerabilityProvider = (*ScriptedEffect)(nil)
}

func TestScriptedEffect_VetoExecution_RunsRegisteredHook(t *testing.T) {
	fe := &fakeEngine{result: true}
	se := newTestEffect(fe, Sources{HookVetoExecution: "veto := true"})

	assert.True(t, se.VetoExecution(effect.Ref{}, effect.Ref{Party: 1}, nil))
	require.Len(t, fe.calls, 1)
}

func TestScriptedEffect_VetoExecution_AbsentHookNeverVetoes(t *testing.T) {
	fe := &fakeEngine{result: true}
	se := newTestEffect(fe, Sources{})

	assert.False(t, se.VetoExecution(effect.Ref{}, effect.Ref{}, nil))
	assert.Empty(t, fe.calls)
}

func TestScriptedEffect_GetCriticalModifier_ReadsScriptResult(t *testing.T) {
	fe := &fakeEngine{result: int64(2)}
	se := newTestEffect(fe, Sources{HookCriticalModifier: "bonus := 2"})

	assert.Equal(t, 2, se.GetCriticalModifier())
}

func TestScriptedEffect_GetCriticalModifier_AbsentHookContributesNothing(t *testing.T) {
	fe := &fakeEngine{}
	se := newTestEffect(fe, Sources{})

	assert.Equal(t, 0, se.GetCriticalModifier())
}

func TestScriptedEffect_GetImmunity_ReadsScriptType(t *testing.T) {
	fe := &fakeEngine{result: int64(3)}
	se := newTestEffect(fe, Sources{HookImmunity: "typ := 3"})

	typ, ok := se.GetImmunity(effect.Ref{}, effect.Ref{})
	assert.True(t, ok)
	assert.Equal(t, 3, typ)
}

func TestScriptedEffect_GetImmunity_NilResultMeansDoesNotApply(t *testing.T) {
	fe := &fakeEngine{result: nil}
	se := newTestEffect(fe, Sources{HookImmunity: "typ := undefined"})

	_, ok := se.GetImmunity(effect.Ref{}, effect.Ref{})
	assert.False(t, ok)
}
