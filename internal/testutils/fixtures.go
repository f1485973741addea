package testutils

import (
	"github.com/ironvale/skirmish/internal/dice"
	"github.com/ironvale/skirmish/internal/domain/combat"
)

// CreateTestFighter creates a player-faction combatant with sane defaults
func CreateTestFighter(id, name string) *combat.Combatant {
	return &combat.Combatant{
		ID:              id,
		Name:            name,
		Faction:         combat.FactionPlayers,
		AC:              16,
		CurrentHP:       12,
		MaxHP:           12,
		AttackBonus:     5,
		DamageDice:      "1d8",
		DamageBonus:     3,
		InitiativeBonus: 2,
		Abilities:       combat.ModifiersFromScores(16, 14, 14, 10, 12, 10),
	}
}

// CreateTestGoblin creates an opponent-faction combatant with sane defaults
func CreateTestGoblin(id, name string) *combat.Combatant {
	return &combat.Combatant{
		ID:              id,
		Name:            name,
		Faction:         combat.FactionOpponents,
		AC:              13,
		CurrentHP:       7,
		MaxHP:           7,
		AttackBonus:     4,
		DamageDice:      "1d6",
		DamageBonus:     2,
		InitiativeBonus: 2,
		Abilities:       combat.ModifiersFromScores(8, 14, 10, 10, 8, 8),
	}
}

// CreateTestMage creates a player-faction spellcaster
func CreateTestMage(id, name string) *combat.Combatant {
	return &combat.Combatant{
		ID:              id,
		Name:            name,
		Faction:         combat.FactionPlayers,
		AC:              12,
		CurrentHP:       8,
		MaxHP:           8,
		AttackBonus:     2,
		DamageDice:      "1d4",
		InitiativeBonus: 1,
		Abilities:       combat.ModifiersFromScores(8, 12, 10, 16, 12, 10),
		Spell: &combat.SpellProfile{
			Name:       "scorching ray",
			DamageDice: "2d6",
			SaveType:   combat.AbilityDexterity,
			SaveDC:     13,
			HalfOnSave: true,
		},
	}
}

// CreateTestEncounter builds an unstarted one-on-one encounter
func CreateTestEncounter(id string, roller dice.Roller) (*combat.Encounter, error) {
	return combat.New(id, "test skirmish", []*combat.Combatant{
		CreateTestFighter(id+"-fighter", "Brakk"),
		CreateTestGoblin(id+"-goblin", "Snagtooth"),
	}, roller)
}
