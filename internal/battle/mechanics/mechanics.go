// Package mechanics provides the default generation-style stat and damage
// formulas the battle field needs a creature.Mechanics/creature.MoveResolver
// pair for, grounded on original_source/src/shoddybattle/PokemonNature.cpp's
// stat formula and StandardMechanics::calculateDamage (spec.md §3's
// "generation-dependent mechanics strategy").
package mechanics

import (
	"math/rand"

	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/effect"
)

// Gen implements creature.Mechanics with the standard stat formulas used
// from the third generation onward.
type Gen struct{}

var _ creature.Mechanics = Gen{}

func (Gen) ComputeStat(stat effect.Stat, base, iv, ev, level int, natureMod float64) int {
	raw := (2*base+iv+ev/4)*level/100 + 5
	return int(float64(raw) * natureMod)
}

func (Gen) ComputeHP(base, iv, ev, level int) int {
	if base == 1 {
		return 1 // fixed-HP species (e.g. Shedinja-style mechanics)
	}
	return (2*base+iv+ev/4)*level/100 + level + 10
}

// NatureModifier returns 1.1/0.9/1.0 for a nature that boosts/hinders/is
// neutral toward stat, indexed the same way the original nature table is:
// nature/5 is the boosted stat, nature%5 is the hindered one.
func (Gen) NatureModifier(nature int, stat effect.Stat) float64 {
	if stat > effect.StatSpe {
		return 1.0
	}
	boosted := nature / 5
	hindered := nature % 5
	switch int(stat) {
	case boosted:
		if boosted != hindered {
			return 1.1
		}
	case hindered:
		if boosted != hindered {
			return 0.9
		}
	}
	return 1.0
}

// StageMultiplier converts a stat stage in [-6, 6] into the classic
// numerator/denominator-6 multiplier; the standard ±6 stage curve shared by
// every stat, accuracy/evasion included (field.orderActions reuses this same
// function for speed so the whole engine has exactly one stage curve).
func StageMultiplier(stage int) float64 {
	if stage > 6 {
		stage = 6
	}
	if stage < -6 {
		stage = -6
	}
	if stage >= 0 {
		return float64(6+stage) / 6
	}
	return 6.0 / float64(6-stage)
}

// criticalChance maps a summed critical-hit stage (effect.CriticalModifier)
// to a hit chance, the classic stage table: 1/16, 1/8, 1/4, 1/3, 1/2 for
// stage 4 and above.
func criticalChance(stage int) float64 {
	switch {
	case stage <= 0:
		return 1.0 / 16.0
	case stage == 1:
		return 1.0 / 8.0
	case stage == 2:
		return 1.0 / 4.0
	case stage == 3:
		return 1.0 / 3.0
	default:
		return 1.0 / 2.0
	}
}

// Resolver implements creature.MoveResolver with an accuracy roll plus a
// standard physical/special damage formula; it never touches transport,
// matching spec.md §4.4's "creature and field stay reachable without a
// live connection" requirement.
type Resolver struct {
	Dex interface {
		TypeMultiplier(attack int, defend []int) float64
	}
	Rng *rand.Rand
}

var _ creature.MoveResolver = (*Resolver)(nil)

func (r *Resolver) AttemptHit(user, target *creature.Creature, move *creature.MoveSlot) bool {
	if move.Template.Accuracy <= 0 {
		return true // accuracy-exempt moves (status moves with no miss chance, etc.)
	}
	acc := StageMultiplier(user.Stages[effect.StatAcc])
	eva := StageMultiplier(target.Stages[effect.StatEva])
	chance := float64(move.Template.Accuracy) * acc / eva
	return r.Rng.Float64()*100 < chance
}

func (r *Resolver) ApplyMoveEffect(user, target *creature.Creature, move *creature.MoveSlot, hit bool) {
	if !hit || move.Template.Power <= 0 {
		return
	}
	damage := r.calculateDamage(user, target, move)
	target.SetHP(target.HP-damage, false, &creature.DamageSource{
		Attacker:        user.Ref(),
		AttackerEffects: &user.Effects,
		Move:            move.Name(),
	})
	if move.Template.Locking {
		user.LockInto(move)
	}
}

func (r *Resolver) calculateDamage(user, target *creature.Creature, move *creature.MoveSlot) int {
	atk := float64(user.Stats[effect.StatAtk]) * StageMultiplier(user.Stages[effect.StatAtk])
	def := float64(target.Stats[effect.StatDef]) * StageMultiplier(target.Stages[effect.StatDef])

	base := (2*float64(user.Level)/5 + 2) * float64(move.Template.Power) * atk / def / 50
	base += 2

	stab := 1.0
	for _, t := range user.Types {
		if t == move.Template.Type {
			stab = 1.5
			break
		}
	}

	typeMult := 1.0
	if r.Dex != nil {
		typeMult = r.Dex.TypeMultiplier(move.Template.Type, target.Types)
	}
	immune := target.Effects.AccumulateTypeEffect(user.Ref(), target.Ref())
	if immune[move.Template.Type] {
		typeMult = 0
	}

	critMult := 1.0
	critStage := user.Effects.CriticalModifier()
	if r.Rng.Float64() < criticalChance(critStage) {
		critMult = 2.0
	}

	randFactor := float64(85+r.Rng.Intn(16)) / 100.0
	damage := int(base * stab * typeMult * critMult * randFactor)
	if typeMult > 0 && damage < 1 {
		damage = 1
	}
	return damage
}
