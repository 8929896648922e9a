// Package script backs an effect.Effect with a sandboxed Tengo script
// instead of a native Go struct, reusing internal/script's TengoEngine,
// SecurityLimits and acquire/release context-pool pattern verbatim in shape
// (SPEC_FULL.md DOMAIN STACK, "Scripted effects"). Each hook call acquires a
// pooled execution slot, runs with the engine's existing timeout/panic-
// recovery wrapper, and releases the slot on every exit path via defer —
// exactly the "Scripted-runtime reentrancy" discipline spec.md §9 requires.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/battlehub/internal/battle/effect"
	batscript "github.com/nfrund/battlehub/internal/script"
)

// ErrContextUnavailable is returned when no scripted-runtime execution
// context can be acquired in time for a hook call.
var ErrContextUnavailable = errors.New("script: no execution context available")

// Hook names a capability slot a script source can be registered for.
type Hook string

const (
	HookVetoSelection    Hook = "vetoSelection"
	HookVetoExecution    Hook = "vetoExecution"
	HookApplyEffect      Hook = "applyEffect"
	HookIsActive         Hook = "isActive"
	HookSwitchOut        Hook = "switchOut"
	HookInformTargeted   Hook = "informTargeted"
	HookCriticalModifier Hook = "criticalModifier"
	HookImmunity         Hook = "immunity"
	HookVulnerability    Hook = "vulnerability"
)

// Sources maps a hook name to the Tengo source implementing it. A
// ScriptedEffect only implements the optional capability interfaces for the
// hooks present in this map — absent hooks behave exactly like BaseEffect's
// defaults.
type Sources map[Hook]string

// Engine is the minimal surface ScriptedEffect needs from the context-aware
// engine, satisfied by *batscript.ContextAwareEngine.
type Engine interface {
	ExecuteWithContext(ctx context.Context, req batscript.EnhancedExecutionRequest) (*batscript.ScriptOutput, error)
}

// ScriptedEffect is an effect.Effect whose optional hooks are backed by
// compiled Tengo snippets. subject/target/field are passed to scripts only
// as opaque ids (effect.Ref is a {party, slot} pair) — never a Go reference
// — matching spec.md §9's "opaque handle, never a language reference" rule.
type ScriptedEffect struct {
	*effect.BaseEffect
	engine  Engine
	sources Sources
	timeout bool
}

// NewScriptedEffect wires a compiled-on-demand Tengo-backed effect onto the
// given context-aware engine.
func NewScriptedEffect(base *effect.BaseEffect, engine Engine, sources Sources) *ScriptedEffect {
	return &ScriptedEffect{BaseEffect: base, engine: engine, sources: sources}
}

func (s *ScriptedEffect) run(ctx context.Context, hook Hook, vars map[string]interface{}) (interface{}, error) {
	src, ok := s.sources[hook]
	if !ok {
		return nil, nil
	}

	req := batscript.EnhancedExecutionRequest{
		ExecutionRequest: batscript.ExecutionRequest{
			ModuleName: "battle_effect",
			ScriptName: s.ID() + "." + string(hook),
			Content:    src,
			Input:      &batscript.ScriptInput{Context: vars},
		},
		UserID:    s.ID(),
		RequestID: string(hook),
		Context:   ctx,
	}

	output, err := s.engine.ExecuteWithContext(ctx, req)
	if err != nil {
		var scriptErr *batscript.ScriptError
		if errors.As(err, &scriptErr) {
			slog.Warn("effect hook failed, skipping for this call",
				"effect", s.ID(), "hook", hook, "error", scriptErr.Message)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	return output.Result, nil
}

// refVars turns an effect.Ref into script-visible opaque scalars.
func refVars(prefix string, r effect.Ref) map[string]interface{} {
	return map[string]interface{}{
		prefix + "_party": r.Party,
		prefix + "_slot":  r.Slot,
	}
}

// VetoSelection implements effect.VetoSelector when the "vetoSelection" hook
// is present; a failed or absent script never vetoes (fails open, per
// spec.md §7's per-effect containment policy).
func (s *ScriptedEffect) VetoSelection(user effect.Ref, move effect.Move) bool {
	if _, ok := s.sources[HookVetoSelection]; !ok {
		return false
	}
	vars := refVars("user", user)
	if move != nil {
		vars["move_name"] = move.Name()
	}
	result, err := s.run(context.Background(), HookVetoSelection, vars)
	if err != nil {
		return false
	}
	veto, _ := result.(bool)
	return veto
}

// ApplyEffect implements the Effect interface's own hook (always present,
// never optional) by delegating to the "applyEffect" script when one is
// registered; with none registered it falls back to BaseEffect's no-op
// success.
func (s *ScriptedEffect) ApplyEffect(subject effect.Ref) bool {
	if _, ok := s.sources[HookApplyEffect]; !ok {
		return s.BaseEffect.ApplyEffect(subject)
	}
	result, err := s.run(context.Background(), HookApplyEffect, refVars("subject", subject))
	if err != nil {
		return false
	}
	ok, isBool := result.(bool)
	return !isBool || ok
}

// SwitchIn and SwitchOut implement effect.SwitchLifecycle when the
// "switchOut" hook is registered.
func (s *ScriptedEffect) SwitchIn() {}

func (s *ScriptedEffect) SwitchOut() bool {
	if _, ok := s.sources[HookSwitchOut]; !ok {
		return false
	}
	result, err := s.run(context.Background(), HookSwitchOut, refVars("subject", s.Subject()))
	if err != nil {
		return false
	}
	remove, _ := result.(bool)
	return remove
}

// InformTargeted implements effect.TargetInformer's targeting hook when the
// "informTargeted" hook is registered; InformDamaged and SendMessage are
// intentionally left as BaseEffect-style no-ops since no spec scenario
// currently needs a scripted damage-tally hook.
func (s *ScriptedEffect) InformTargeted(user effect.Ref, move effect.Move) {
	if _, ok := s.sources[HookInformTargeted]; !ok {
		return
	}
	vars := refVars("user", user)
	if move != nil {
		vars["move_name"] = move.Name()
	}
	_, _ = s.run(context.Background(), HookInformTargeted, vars)
}

func (s *ScriptedEffect) InformDamaged(amount int)                 {}
func (s *ScriptedEffect) SendMessage(name string, args ...interface{}) {}

// VetoExecution implements effect.VetoExecutor when the "vetoExecution" hook
// is present; a failed or absent script never vetoes.
func (s *ScriptedEffect) VetoExecution(user, target effect.Ref, move effect.Move) bool {
	if _, ok := s.sources[HookVetoExecution]; !ok {
		return false
	}
	vars := refVars("user", user)
	for k, v := range refVars("target", target) {
		vars[k] = v
	}
	if move != nil {
		vars["move_name"] = move.Name()
	}
	result, err := s.run(context.Background(), HookVetoExecution, vars)
	if err != nil {
		return false
	}
	veto, _ := result.(bool)
	return veto
}

// GetCriticalModifier implements effect.CriticalModifier when the
// "criticalModifier" hook is present; an absent or failed script contributes
// nothing.
func (s *ScriptedEffect) GetCriticalModifier() int {
	if _, ok := s.sources[HookCriticalModifier]; !ok {
		return 0
	}
	result, err := s.run(context.Background(), HookCriticalModifier, refVars("subject", s.Subject()))
	if err != nil {
		return 0
	}
	return toInt(result)
}

// GetImmunity and GetVulnerability implement effect.ImmunityProvider and
// effect.VulnerabilityProvider when the "immunity"/"vulnerability" hooks are
// present; the script returns the type id as an int, or nil for "does not
// apply here".
func (s *ScriptedEffect) GetImmunity(user, target effect.Ref) (int, bool) {
	return s.typeHook(HookImmunity, user, target)
}

func (s *ScriptedEffect) GetVulnerability(user, target effect.Ref) (int, bool) {
	return s.typeHook(HookVulnerability, user, target)
}

func (s *ScriptedEffect) typeHook(hook Hook, user, target effect.Ref) (int, bool) {
	if _, ok := s.sources[hook]; !ok {
		return 0, false
	}
	vars := refVars("user", user)
	for k, v := range refVars("target", target) {
		vars[k] = v
	}
	result, err := s.run(context.Background(), hook, vars)
	if err != nil || result == nil {
		return 0, false
	}
	return toInt(result), true
}

// toInt loosely converts a script result to an int; Tengo integers surface
// as int64.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

var _ effect.VetoSelector = (*ScriptedEffect)(nil)
var _ effect.VetoExecutor = (*ScriptedEffect)(nil)
var _ effect.SwitchLifecycle = (*ScriptedEffect)(nil)
var _ effect.TargetInformer = (*ScriptedEffect)(nil)
var _ effect.CriticalModifier = (*ScriptedEffect)(nil)
var _ effect.ImmunityProvider = (*ScriptedEffect)(nil)
var _ effect.VulnerabilityProvider = (*ScriptedEffect)(nil)
