// Package catalog is the EffectFactory a creature.Creature is initialized
// with: a lookup table from ability/item name to the Tengo hook sources
// backing it, handed to internal/battle/effect/script to build a live
// effect.Effect on demand (SPEC_FULL.md DOMAIN STACK, "Scripted effects").
// Names with no registered sources still install, as a fully inert
// effect.BaseEffect — matching spec.md §3's "unscripted ability/item is a
// no-op, not an error" note.
package catalog

import (
	"github.com/nfrund/battlehub/internal/battle/creature"
	"github.com/nfrund/battlehub/internal/battle/effect"
	batscript "github.com/nfrund/battlehub/internal/battle/effect/script"
)

// Catalog holds the Tengo sources for every scripted ability and item the
// loaded dex can name.
type Catalog struct {
	Abilities map[string]batscript.Sources
	Items     map[string]batscript.Sources
}

// New returns an empty catalog ready for registration.
func New() *Catalog {
	return &Catalog{
		Abilities: map[string]batscript.Sources{},
		Items:     map[string]batscript.Sources{},
	}
}

// RegisterAbility installs the Tengo hook sources for a named ability.
func (c *Catalog) RegisterAbility(name string, sources batscript.Sources) {
	c.Abilities[name] = sources
}

// RegisterItem installs the Tengo hook sources for a named held item.
func (c *Catalog) RegisterItem(name string, sources batscript.Sources) {
	c.Items[name] = sources
}

// Factory implements creature.EffectFactory by building a ScriptedEffect for
// any catalog entry, falling back to an inert BaseEffect otherwise.
type Factory struct {
	Engine  batscript.Engine
	Catalog *Catalog
}

var _ creature.EffectFactory = (*Factory)(nil)

func (f *Factory) BuildAbility(name string) effect.Effect {
	return f.build(effect.KindAbility, name, f.Catalog.Abilities[name])
}

func (f *Factory) BuildItem(name string) effect.Effect {
	return f.build(effect.KindItem, name, f.Catalog.Items[name])
}

func (f *Factory) build(kind effect.Kind, name string, sources batscript.Sources) effect.Effect {
	base := effect.NewBaseEffect(name, kind, true, 0, 0)
	if len(sources) == 0 {
		return base
	}
	return batscript.NewScriptedEffect(base, f.Engine, sources)
}
