package combat

import (
	"math/rand"
)

// DecisionFunc chooses an action for a combatant the caller does not
// control. Implementations must only read the combatants they are given and
// must return an action for actor.ID. The default is Decide; callers can
// plug in their own policy without touching the resolution engine.
type DecisionFunc func(actor *Combatant, allies, enemies []*Combatant, rng *rand.Rand) Action

// fleeThreshold is the HP fraction below which a combatant considers running
const fleeThreshold = 0.25

// Decide is the built-in tactical policy:
//
//  1. badly hurt combatants flee half the time
//  2. spellcasters throw their spell 30% of the time
//  3. otherwise attack a random active enemy
//
// With no active enemies left it idles. Deterministic given the rng sequence.
func Decide(actor *Combatant, allies, enemies []*Combatant, rng *rand.Rand) Action {
	var active []*Combatant
	for _, enemy := range enemies {
		if enemy != nil && enemy.IsActive {
			active = append(active, enemy)
		}
	}
	if len(active) == 0 {
		return Action{Type: ActionIdle, ActorID: actor.ID}
	}

	if actor.MaxHP > 0 && float64(actor.CurrentHP)/float64(actor.MaxHP) < fleeThreshold {
		if rng.Float64() < 0.5 {
			return Action{Type: ActionFlee, ActorID: actor.ID}
		}
	}

	if actor.Spell != nil && rng.Float64() < 0.3 {
		target := active[rng.Intn(len(active))]
		return Action{
			Type:     ActionDamageSpell,
			ActorID:  actor.ID,
			TargetID: target.ID,
			Name:     actor.Spell.Name,
			Damage: &DamageEffect{
				Dice:       actor.Spell.DamageDice,
				Bonus:      actor.Spell.DamageBonus,
				SaveType:   actor.Spell.SaveType,
				SaveDC:     actor.Spell.SaveDC,
				HalfOnSave: actor.Spell.HalfOnSave,
			},
		}
	}

	target := active[rng.Intn(len(active))]
	return Action{Type: ActionAttack, ActorID: actor.ID, TargetID: target.ID}
}

// Allies returns the active and inactive members of the actor's faction,
// excluding the actor itself, in roster order.
func (e *Encounter) Allies(actorID string) []*Combatant {
	actor, exists := e.Combatants[actorID]
	if !exists {
		return nil
	}
	var allies []*Combatant
	for _, id := range e.Roster {
		if id == actorID {
			continue
		}
		if c := e.Combatants[id]; c.Faction == actor.Faction {
			allies = append(allies, c)
		}
	}
	return allies
}

// Enemies returns every member of the opposing faction in roster order
func (e *Encounter) Enemies(actorID string) []*Combatant {
	actor, exists := e.Combatants[actorID]
	if !exists {
		return nil
	}
	var enemies []*Combatant
	for _, id := range e.Roster {
		if c := e.Combatants[id]; c.Faction != actor.Faction {
			enemies = append(enemies, c)
		}
	}
	return enemies
}
