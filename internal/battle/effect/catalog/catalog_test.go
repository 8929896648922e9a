package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle/effect"
	batscript "github.com/nfrund/battlehub/internal/battle/effect/script"
	"github.com/nfrund/battlehub/internal/script"
)

type stubEngine struct{}

func (stubEngine) ExecuteWithContext(ctx context.Context, req script.EnhancedExecutionRequest) (*script.ScriptOutput, error) {
	return &script.ScriptOutput{}, nil
}

func TestFactory_BuildAbility_UnregisteredNameIsInertBaseEffect(t *testing.T) {
	f := &Factory{Engine: stubEngine{}, Catalog: New()}
	eff := f.BuildAbility("Levitate")
	require.NotNil(t, eff)
	assert.Equal(t, "Levitate", eff.ID())
	_, isScripted := eff.(*batscript.ScriptedEffect)
	assert.False(t, isScripted, "unregistered ability should fall back to an inert BaseEffect")
}

func TestFactory_BuildAbility_RegisteredNameIsScripted(t *testing.T) {
	cat := New()
	cat.RegisterAbility("Static", batscript.Sources{
		batscript.HookApplyEffect: `result := true`,
	})
	f := &Factory{Engine: stubEngine{}, Catalog: cat}
	eff := f.BuildAbility("Static")
	require.NotNil(t, eff)
	assert.Equal(t, "Static", eff.ID())
	_, isScripted := eff.(*batscript.ScriptedEffect)
	assert.True(t, isScripted)
}

func TestFactory_BuildItem_RegisteredAndKindIsItem(t *testing.T) {
	cat := New()
	cat.RegisterItem("Leftovers", batscript.Sources{
		batscript.HookApplyEffect: `result := true`,
	})
	f := &Factory{Engine: stubEngine{}, Catalog: cat}
	eff := f.BuildItem("Leftovers")
	require.NotNil(t, eff)
	assert.Equal(t, effect.KindItem, eff.Kind())
}
