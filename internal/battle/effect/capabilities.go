package effect

// Stat identifies one of the seven stat-stage slots (spec.md §3).
type Stat int

const (
	StatAtk Stat = iota
	StatDef
	StatSpa
	StatSpd
	StatSpe
	StatAcc
	StatEva
)

// Move is the minimal move-identity an effect hook needs; the engine's own
// move representation (internal/battle/creature) satisfies this.
type Move interface {
	Name() string
	Priority() int
}

// VetoSelector vetoes at order-submission time (spec.md's vetoSelection).
type VetoSelector interface {
	VetoSelection(user Ref, move Move) bool
}

// VetoExecutor vetoes at resolution time, consulted in ascending VetoTier order.
type VetoExecutor interface {
	VetoExecution(user, target Ref, move Move) bool
}

// StatLevelTransformer rewrites a stat stage; first true in list order wins.
type StatLevelTransformer interface {
	TransformStatLevel(user, target Ref, stat Stat, level *int) bool
}

// StatusTransformer rewrites, replaces or cancels an incoming status before
// install; status is an opaque identifier (effect ID to be applied).
type StatusTransformer interface {
	TransformStatus(subject Ref, status *string) bool
}

// HealthChangeTransformer modifies a pending damage/heal delta, cumulatively
// across every effect that implements it, in list order.
type HealthChangeTransformer interface {
	TransformHealthChange(hp int, indirect bool, out *int)
}

// ImmunityProvider adds a type immunity for the pending hit, accumulated
// across all effects that implement it.
type ImmunityProvider interface {
	GetImmunity(user, target Ref) (typ int, ok bool)
}

// VulnerabilityProvider removes an immunity (or adds a weakness) for the
// pending hit; per spec.md §4.3, a later vulnerability of the same type
// cancels a pending immunity from GetImmunity.
type VulnerabilityProvider interface {
	GetVulnerability(user, target Ref) (typ int, ok bool)
}

// CriticalModifier contributes an additive crit-stage bonus, summed across
// every effect that implements it.
type CriticalModifier interface {
	GetCriticalModifier() int
}

// InherentPriority contributes a speed-bracket bias; the implementation with
// the largest |value| wins over all others.
type InherentPriority interface {
	GetInherentPriority() int
}

// StatModifier contributes a multiplicative stat modifier at a declared
// priority key (the stage curve itself sits at priority 0). priority is an
// out-parameter: the implementer reports the priority its own contribution
// should be applied at, and List.StatModifier sorts every contribution by
// the reported value before multiplying them in.
type StatModifier interface {
	GetStatModifier(stat Stat, subject, target Ref, mod *float64, priority *int)
}

// DamageModifier contributes a multiplicative damage-formula modifier.
// Modifiers are applied in effect-list order; unlike StatModifier, an
// implementer reports no priority.
type DamageModifier interface {
	GetModifier(user, target Ref, move Move, crit bool, numTargets int, mod *float64)
}

// SwitchLifecycle reacts to the subject entering/leaving the active slot.
// SwitchOut returning true means "remove this effect on switch-out".
type SwitchLifecycle interface {
	SwitchIn()
	SwitchOut() bool
}

// EndOfTurnEffect runs residual upkeep (damage-over-time, weather, …) once
// per turn. Invoked in ascending VetoTier order, matching spec.md §4.5's
// "end-of-turn effects ... in their declared tier order".
type EndOfTurnEffect interface {
	EndOfTurn(subject Ref)
}

// TargetInformer receives free-form event notifications in list order.
type TargetInformer interface {
	InformTargeted(user Ref, move Move)
	InformDamaged(amount int)
	SendMessage(name string, args ...interface{})
}
