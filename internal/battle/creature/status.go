package creature

import "github.com/nfrund/battlehub/internal/battle/effect"

// removable is satisfied by effect.BaseEffect (and anything embedding it);
// RemoveStatus uses it to mark an effect for the between-turn sweep instead
// of dropping it from the list immediately.
type removable interface {
	MarkRemovable()
}

// ApplyStatus installs a new effect on this creature, per Pokemon::apply
// Status: respects lock/singleton (via effect.List.Install), runs the
// transformStatus chain across both the subject's own effects and the
// field's, then applyEffect. statusID is an opaque identifier the
// transformStatus chain may rewrite or blank out to cancel installation.
func (c *Creature) ApplyStatus(inducer effect.Ref, statusID string, build func(id string) effect.Effect, field *effect.List) (effect.Effect, bool) {
	id := statusID
	if !runTransformStatus(c.Ref(), &c.Effects, &id) {
		return nil, false
	}
	if field != nil && !runTransformStatus(c.Ref(), field, &id) {
		return nil, false
	}

	eff := build(id)
	if eff == nil {
		return nil, false
	}
	eff.SetSubject(c.Ref())
	eff.SetInducer(inducer)
	if !eff.ApplyEffect(c.Ref()) {
		return nil, false
	}
	if err := c.Effects.Install(eff); err != nil {
		eff.UnapplyEffect()
		return nil, false
	}
	return eff, true
}

// runTransformStatus runs every StatusTransformer in list order; an empty
// status after the chain means some transformer cancelled installation.
func runTransformStatus(subject effect.Ref, list *effect.List, status *string) bool {
	for _, e := range list.Active() {
		if t, ok := e.(effect.StatusTransformer); ok {
			t.TransformStatus(subject, status)
			if *status == "" {
				return false
			}
		}
	}
	return true
}

// RemoveStatus uninstalls an effect's side effects and marks it for the
// next Sweep, per Pokemon::removeStatus (removal is deferred, not
// immediate).
func (c *Creature) RemoveStatus(eff effect.Effect) {
	eff.UnapplyEffect()
	if r, ok := eff.(removable); ok {
		r.MarkRemovable()
	}
}

// LegalActions is the per-slot result of DetermineLegalActions.
type LegalActions struct {
	SwitchLegal bool
	Moves       [4]bool
	Forced      bool // true means every move is vetoed/out of PP: Struggle
}

// DetermineLegalActions populates which switches and moves this creature
// may currently select, per Pokemon::determineLegalActions. fieldEffects is
// the battle field's effect list (nil is fine outside a live field, e.g. in
// tests).
func (c *Creature) DetermineLegalActions(fieldEffects *effect.List) LegalActions {
	var la LegalActions

	if c.ForcedTurn != nil {
		idx := c.ForcedTurn.MoveIndex
		c.ForcedTurn = nil
		if idx >= 0 && idx < len(c.Moves) && c.Moves[idx] != nil && c.Moves[idx].PP > 0 {
			la.Moves[idx] = true
			return la
		}
	}

	la.SwitchLegal = !c.Effects.VetoSelection(c.Ref(), nil)
	if fieldEffects != nil && la.SwitchLegal {
		la.SwitchLegal = !fieldEffects.VetoSelection(c.Ref(), nil)
	}

	any := false
	for i, m := range c.Moves {
		if m == nil {
			continue
		}
		legal := m.PP > 0 && !c.Effects.VetoSelection(c.Ref(), m)
		if legal && fieldEffects != nil {
			legal = !fieldEffects.VetoSelection(c.Ref(), m)
		}
		la.Moves[i] = legal
		any = any || legal
	}
	la.Forced = !any
	return la
}
