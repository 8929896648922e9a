// Package effect implements the capability-table status/effect protocol of
// spec.md §4.3: every hook is an optional, independently-checked interface,
// the same "tagged sum + capability table" shape as internal/module.Module's
// Register/Boot/Shutdown plus a no-op BaseEffect, and as internal/script's
// LanguageEngine optional-capability pattern.
package effect

import "errors"

// ErrInstallFailed is returned by List.Install when a lock or singleton rule
// refuses installation.
var ErrInstallFailed = errors.New("effect: install failed")

// Kind tags what an effect represents.
type Kind int

const (
	KindAbility Kind = iota
	KindItem
	KindCondition
	KindField
	KindMoveLock
)

// Ref is an opaque stable handle to a creature, used instead of a live
// pointer so effects never hold a language reference across a scripted-
// runtime boundary (spec.md §9 "Scripted-runtime reentrancy").
type Ref struct {
	Party int
	Slot  int
}

// Effect is the minimum every installed status satisfies. Everything else in
// spec.md's capability table (VetoSelector, HealthChangeTransformer, …) is an
// optional interface a concrete effect implements only if it participates.
type Effect interface {
	ID() string
	Kind() Kind
	// Singleton refuses installation if an effect with the same ID is
	// already present on the subject.
	Singleton() bool
	// Lock is a nonzero number forbidding co-installation with any other
	// effect sharing that lock on the same subject; 0 means unlocked.
	Lock() int
	// VetoTier orders vetoExecution hooks: lower runs first.
	VetoTier() int

	Subject() Ref
	SetSubject(Ref)
	SetInducer(Ref)
	Inducer() (Ref, bool)

	// IsActive gates all other hooks; an inactive effect participates in
	// nothing until it becomes active again.
	IsActive() bool
	// IsRemovable reports eligibility for the between-turn sweep.
	IsRemovable() bool
	// ApplyEffect installs side effects; false cancels installation.
	ApplyEffect(subject Ref) bool
	// UnapplyEffect uninstalls side effects.
	UnapplyEffect()
}

// BaseEffect is an embeddable, fully inert Effect: every hook below its
// required methods is absent. Concrete effects embed this and override only
// the optional capability interfaces they implement.
type BaseEffect struct {
	id       string
	kind     Kind
	singleton bool
	lock     int
	vetoTier int
	subject  Ref
	inducer  Ref
	hasInducer bool
	active   bool
	removable bool
}

// NewBaseEffect constructs a BaseEffect with the given identity fields.
func NewBaseEffect(id string, kind Kind, singleton bool, lock, vetoTier int) *BaseEffect {
	return &BaseEffect{id: id, kind: kind, singleton: singleton, lock: lock, vetoTier: vetoTier, active: true}
}

func (b *BaseEffect) ID() string        { return b.id }
func (b *BaseEffect) Kind() Kind        { return b.kind }
func (b *BaseEffect) Singleton() bool   { return b.singleton }
func (b *BaseEffect) Lock() int         { return b.lock }
func (b *BaseEffect) VetoTier() int     { return b.vetoTier }
func (b *BaseEffect) Subject() Ref      { return b.subject }
func (b *BaseEffect) SetSubject(r Ref)  { b.subject = r }
func (b *BaseEffect) SetInducer(r Ref)  { b.inducer, b.hasInducer = r, true }
func (b *BaseEffect) Inducer() (Ref, bool) { return b.inducer, b.hasInducer }
func (b *BaseEffect) IsActive() bool    { return b.active }
func (b *BaseEffect) SetActive(v bool)  { b.active = v }
func (b *BaseEffect) IsRemovable() bool { return b.removable }
func (b *BaseEffect) MarkRemovable()    { b.removable = true }
func (b *BaseEffect) ApplyEffect(Ref) bool { return true }
func (b *BaseEffect) UnapplyEffect()       {}

var _ Effect = (*BaseEffect)(nil)
