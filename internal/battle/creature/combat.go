package creature

import "github.com/nfrund/battlehub/internal/battle/effect"

// MoveResolver performs the generation-specific parts of resolving a move
// against one target: the accuracy check and the move's own scripted
// effect. A concrete implementation lives with the battle field's mechanics
// strategy; creature only owns the control flow around it.
type MoveResolver interface {
	AttemptHit(user, target *Creature, move *MoveSlot) bool
	ApplyMoveEffect(user, target *Creature, move *MoveSlot, hit bool)
}

// DamageSource carries the attacker-side bookkeeping SetHP needs when a
// health change happens during a move resolution.
type DamageSource struct {
	Attacker        effect.Ref
	AttackerEffects *effect.List
	Move            string
}

// ExecuteMove runs move against targets, per Pokemon::executeMove: if
// inform and the field vetoes execution the move fails without being used;
// otherwise each target is checked for a per-target veto, then
// resolver.AttemptHit/ApplyMoveEffect plays out the hit or miss. acted is
// always set on return.
func (c *Creature) ExecuteMove(resolver MoveResolver, fieldEffects *effect.List, move *MoveSlot, targets []*Creature, inform bool) bool {
	defer func() { c.ActedThisRound = true }()

	if inform && fieldEffects != nil && fieldEffects.VetoExecution(c.Ref(), effect.Ref{}, move) {
		return false
	}

	move.Used = true
	for _, target := range targets {
		if fieldEffects != nil && fieldEffects.VetoExecution(c.Ref(), target.Ref(), move) {
			continue
		}
		if c.Effects.VetoExecution(c.Ref(), target.Ref(), move) {
			continue
		}
		target.Effects.InformTargeted(c.Ref(), move)
		hit := resolver.AttemptHit(c, target, move)
		resolver.ApplyMoveEffect(c, target, move, hit)
	}
	return true
}

// LockInto commits the creature to repeating move next turn: the
// supplemented multi-turn-lock mechanic ApplyMoveEffect arms on a move
// flagged dex.Move.Locking. A move not found among this creature's own
// slots is ignored.
func (c *Creature) LockInto(move *MoveSlot) {
	for i, m := range c.Moves {
		if m == move {
			c.ForcedTurn = &ForcedAction{MoveIndex: i}
			return
		}
	}
}

// SetHP clamps newHP to [0, MaxHP], runs the transformHealthChange pipeline,
// applies the resulting delta, and transitions to fainted at zero. Returns
// the delta actually applied (post-transform). source is nil outside a move
// resolution (e.g. residual damage has no attacker to inform).
func (c *Creature) SetHP(newHP int, indirect bool, source *DamageSource) int {
	if newHP < 0 {
		newHP = 0
	}
	if newHP > c.MaxHP {
		newHP = c.MaxHP
	}
	requested := newHP - c.HP
	applied := requested
	c.Effects.TransformHealthChange(requested, indirect, &applied)
	if applied == 0 {
		return 0
	}

	c.HP += applied
	if c.HP < 0 {
		c.HP = 0
	}
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}

	if applied < 0 && source != nil {
		c.recordDamage(source.Attacker, source.Move, -applied)
		if source.AttackerEffects != nil {
			source.AttackerEffects.InformDamaged(-applied)
		}
	}

	if c.HP == 0 && !c.Fainted {
		c.Faint()
	}
	return applied
}

// Faint marks this creature fainted and clears its own slot. Clearing every
// other creature's memory of it (spec.md's "clear memories across the
// field") is the battle field's job via ForgetCreature, since that requires
// visibility across the whole roster.
func (c *Creature) Faint() {
	c.Fainted = true
	c.Slot = -1
}

// SwitchOut sweeps effects whose SwitchOut hook asks for removal, restores
// the original ability, and clears per-battle transient state, per
// Pokemon::switchOut.
func (c *Creature) SwitchOut() {
	c.Effects.SwitchOut()

	if c.ability != nil {
		c.Effects.Remove(c.ability)
	}
	c.ability = nil
	c.installAbility(c.baseAbility)

	c.Slot = -1
	c.DamageMemory = nil
	c.TargetMemory = map[effect.Ref]string{}
	c.ActedThisRound = false
	c.ForcedTurn = nil
	for _, m := range c.Moves {
		if m != nil {
			m.Used = false
		}
	}
}
