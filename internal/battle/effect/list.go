package effect

import "sort"

// List is the ordered collection of effects installed on one creature (or
// the field). Install order is hook-invocation order except where a hook
// specifies otherwise (vetoExecution by VetoTier, stat/damage modifiers by
// priority key).
type List struct {
	effects []Effect
}

// Active returns only the effects currently IsActive.
func (l *List) Active() []Effect {
	out := make([]Effect, 0, len(l.effects))
	for _, e := range l.effects {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether an effect with the given id is installed.
func (l *List) Has(id string) bool {
	for _, e := range l.effects {
		if e.ID() == id {
			return true
		}
	}
	return false
}

// HasLock reports whether any installed effect holds the given nonzero lock.
func (l *List) HasLock(lock int) bool {
	if lock == 0 {
		return false
	}
	for _, e := range l.effects {
		if e.Lock() == lock {
			return true
		}
	}
	return false
}

// Install respects lock and singleton per spec.md §4.4's applyStatus
// contract: refuses if a same-locked effect is already present, or if the
// effect is a singleton and its id is already present. Callers are expected
// to have already run any TransformStatus chain and called ApplyEffect
// themselves before Install, matching applyStatus's documented order.
func (l *List) Install(e Effect) error {
	if e.Lock() != 0 && l.HasLock(e.Lock()) {
		return ErrInstallFailed
	}
	if e.Singleton() && l.Has(e.ID()) {
		return ErrInstallFailed
	}
	l.effects = append(l.effects, e)
	return nil
}

// Remove calls UnapplyEffect and drops the effect from the list immediately.
// RemoveStatus in spec.md marks for sweep instead; Sweep is the deferred
// between-turn counterpart that actually removes IsRemovable effects.
func (l *List) Remove(e Effect) {
	e.UnapplyEffect()
	for i, cur := range l.effects {
		if cur == e {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			return
		}
	}
}

// Sweep removes every effect marked IsRemovable, calling UnapplyEffect on
// each, matching spec.md's "swept between turns" lifecycle note.
func (l *List) Sweep() {
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.IsRemovable() {
			e.UnapplyEffect()
			continue
		}
		kept = append(kept, e)
	}
	l.effects = kept
}

// VetoSelection runs every VetoSelector in list order; true from any wins.
func (l *List) VetoSelection(user Ref, move Move) bool {
	for _, e := range l.Active() {
		if v, ok := e.(VetoSelector); ok && v.VetoSelection(user, move) {
			return true
		}
	}
	return false
}

// VetoExecution runs every VetoExecutor sorted by ascending VetoTier.
func (l *List) VetoExecution(user, target Ref, move Move) bool {
	candidates := l.Active()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VetoTier() < candidates[j].VetoTier()
	})
	for _, e := range candidates {
		if v, ok := e.(VetoExecutor); ok && v.VetoExecution(user, target, move) {
			return true
		}
	}
	return false
}

// TransformStatLevel runs each StatLevelTransformer in list order; the first
// to return true wins and stops the chain.
func (l *List) TransformStatLevel(user, target Ref, stat Stat, level *int) bool {
	for _, e := range l.Active() {
		if v, ok := e.(StatLevelTransformer); ok {
			if v.TransformStatLevel(user, target, stat, level) {
				return true
			}
		}
	}
	return false
}

// TransformHealthChange applies every HealthChangeTransformer cumulatively,
// in list order.
func (l *List) TransformHealthChange(hp int, indirect bool, out *int) {
	for _, e := range l.Active() {
		if v, ok := e.(HealthChangeTransformer); ok {
			v.TransformHealthChange(hp, indirect, out)
		}
	}
}

// CriticalModifier sums every CriticalModifier's contribution.
func (l *List) CriticalModifier() int {
	total := 0
	for _, e := range l.Active() {
		if v, ok := e.(CriticalModifier); ok {
			total += v.GetCriticalModifier()
		}
	}
	return total
}

// InherentPriority returns the contribution with the largest magnitude
// across every InherentPriority effect; 0 if none implement it.
func (l *List) InherentPriority() int {
	best := 0
	for _, e := range l.Active() {
		if v, ok := e.(InherentPriority); ok {
			p := v.GetInherentPriority()
			if abs(p) > abs(best) {
				best = p
			}
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// AccumulateTypeEffect folds GetImmunity/GetVulnerability across the list
// into the set of types the pending hit is immune to, applying the original
// engine's cancellation rule: a later GetVulnerability of the same type
// cancels a pending GetImmunity (spec.md §4.3, SUPPLEMENTED FEATURES).
func (l *List) AccumulateTypeEffect(user, target Ref) map[int]bool {
	immune := make(map[int]bool)
	for _, e := range l.Active() {
		if v, ok := e.(ImmunityProvider); ok {
			if typ, ok := v.GetImmunity(user, target); ok {
				immune[typ] = true
			}
		}
		if v, ok := e.(VulnerabilityProvider); ok {
			if typ, ok := v.GetVulnerability(user, target); ok {
				delete(immune, typ)
			}
		}
	}
	return immune
}

// StatModifier multiplies base by every contributed modifier in ascending
// priority order, with the stage-curve multiplier (priority 0) supplied by
// the caller alongside any effect contributions at other priorities.
func (l *List) StatModifier(stat Stat, subject, target Ref, base, stageMultiplier float64) float64 {
	type keyed struct {
		priority int
		mod      float64
	}
	contribs := []keyed{{priority: 0, mod: stageMultiplier}}
	for _, e := range l.Active() {
		if v, ok := e.(StatModifier); ok {
			mod := 1.0
			priority := 0
			v.GetStatModifier(stat, subject, target, &mod, &priority)
			contribs = append(contribs, keyed{priority: priority, mod: mod})
		}
	}
	sort.SliceStable(contribs, func(i, j int) bool { return contribs[i].priority < contribs[j].priority })

	result := base
	for _, c := range contribs {
		result *= c.mod
	}
	return result
}

// DamageModifier multiplies the damage formula's base value by every
// contributed modifier, in list order; contributions carry no priority key.
func (l *List) DamageModifier(user, target Ref, move Move, crit bool, numTargets int, base float64) float64 {
	result := base
	for _, e := range l.Active() {
		if v, ok := e.(DamageModifier); ok {
			mod := 1.0
			v.GetModifier(user, target, move, crit, numTargets, &mod)
			result *= mod
		}
	}
	return result
}

// SwitchIn notifies every SwitchLifecycle effect that the subject became active.
func (l *List) SwitchIn() {
	for _, e := range l.Active() {
		if v, ok := e.(SwitchLifecycle); ok {
			v.SwitchIn()
		}
	}
}

// SwitchOut notifies every SwitchLifecycle effect that the subject is
// benching, removing any that returns true from the hook.
func (l *List) SwitchOut() {
	for _, e := range l.Active() {
		v, ok := e.(SwitchLifecycle)
		if !ok {
			continue
		}
		if v.SwitchOut() {
			l.Remove(e)
		}
	}
}

// RunEndOfTurn runs every EndOfTurnEffect in ascending VetoTier order.
func (l *List) RunEndOfTurn(subject Ref) {
	candidates := l.Active()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VetoTier() < candidates[j].VetoTier()
	})
	for _, e := range candidates {
		if v, ok := e.(EndOfTurnEffect); ok {
			v.EndOfTurn(subject)
		}
	}
}

// InformTargeted notifies every TargetInformer in list order.
func (l *List) InformTargeted(user Ref, move Move) {
	for _, e := range l.Active() {
		if v, ok := e.(TargetInformer); ok {
			v.InformTargeted(user, move)
		}
	}
}

// InformDamaged notifies every TargetInformer in list order.
func (l *List) InformDamaged(amount int) {
	for _, e := range l.Active() {
		if v, ok := e.(TargetInformer); ok {
			v.InformDamaged(amount)
		}
	}
}
