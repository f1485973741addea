package combat

// Faction is one of the two opposing sides in an encounter
type Faction string

const (
	FactionPlayers   Faction = "players"
	FactionOpponents Faction = "opponents"
)

// Ability identifies one of the six ability scores
type Ability string

const (
	AbilityStrength     Ability = "strength"
	AbilityDexterity    Ability = "dexterity"
	AbilityConstitution Ability = "constitution"
	AbilityIntelligence Ability = "intelligence"
	AbilityWisdom       Ability = "wisdom"
	AbilityCharisma     Ability = "charisma"
)

// AbilityModifiers holds the six ability-score modifiers for a combatant
type AbilityModifiers struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// For returns the modifier for the given ability. Unknown abilities get 0.
func (m AbilityModifiers) For(a Ability) int {
	switch a {
	case AbilityStrength:
		return m.Strength
	case AbilityDexterity:
		return m.Dexterity
	case AbilityConstitution:
		return m.Constitution
	case AbilityIntelligence:
		return m.Intelligence
	case AbilityWisdom:
		return m.Wisdom
	case AbilityCharisma:
		return m.Charisma
	default:
		return 0
	}
}

// AbilityModifier derives a modifier from a raw ability score using floor
// division, so a score of 8 gives -1 and a score of 7 gives -2.
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 && diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// ModifiersFromScores derives all six modifiers from raw ability scores
func ModifiersFromScores(str, dex, con, intl, wis, cha int) AbilityModifiers {
	return AbilityModifiers{
		Strength:     AbilityModifier(str),
		Dexterity:    AbilityModifier(dex),
		Constitution: AbilityModifier(con),
		Intelligence: AbilityModifier(intl),
		Wisdom:       AbilityModifier(wis),
		Charisma:     AbilityModifier(cha),
	}
}

// Position is a simple grid location. Movement is accepted but not validated
// against any map geometry.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpellProfile describes the one spell a combatant knows how to throw.
// The tactical policy uses it when deciding enemy turns.
type SpellProfile struct {
	Name       string  `json:"name"`
	DamageDice string  `json:"damage_dice"`
	DamageBonus int    `json:"damage_bonus"`
	SaveType   Ability `json:"save_type,omitempty"`
	SaveDC     int     `json:"save_dc,omitempty"`
	HalfOnSave bool    `json:"half_on_save"`
}

// Combatant represents a participant in combat
type Combatant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Faction Faction `json:"faction"`

	Abilities       AbilityModifiers `json:"abilities"`
	AC              int              `json:"ac"`
	CurrentHP       int              `json:"current_hp"`
	MaxHP           int              `json:"max_hp"`
	InitiativeBonus int              `json:"initiative_bonus"`
	Initiative      int              `json:"initiative"` // rolled once at encounter start

	AttackBonus int           `json:"attack_bonus"`
	DamageDice  string        `json:"damage_dice"` // default weapon damage, e.g. "1d8"
	DamageBonus int           `json:"damage_bonus"`
	Spell       *SpellProfile `json:"spell,omitempty"`

	Conditions []Condition `json:"conditions"`
	IsActive   bool        `json:"is_active"` // still in the fight
	Position   Position    `json:"position"`
}

// IsAlive returns true if the combatant has more than 0 HP
func (c *Combatant) IsAlive() bool {
	return c.CurrentHP > 0
}

// ApplyDamage reduces current HP, clamped at 0. A combatant dropped to 0
// is knocked out of the fight.
func (c *Combatant) ApplyDamage(amount int) int {
	c.CurrentHP -= amount
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		c.IsActive = false
	}
	return c.CurrentHP
}

// ApplyHealing restores HP, clamped at MaxHP. Healing a downed combatant
// above 0 brings them back into the fight.
func (c *Combatant) ApplyHealing(amount int) int {
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
	if c.CurrentHP > 0 && !c.IsActive {
		c.IsActive = true
	}
	return c.CurrentHP
}

// HasCondition checks if the combatant currently bears the given condition
func (c *Combatant) HasCondition(kind string) bool {
	for _, cond := range c.Conditions {
		if cond.Kind == kind {
			return true
		}
	}
	return false
}

// AddCondition applies a condition. Identical kinds do not stack: an
// existing condition of the same kind has its duration replaced.
func (c *Combatant) AddCondition(kind string, duration int) {
	for i := range c.Conditions {
		if c.Conditions[i].Kind == kind {
			c.Conditions[i].Remaining = duration
			return
		}
	}
	c.Conditions = append(c.Conditions, Condition{Kind: kind, Remaining: duration})
}

// RemoveCondition removes a condition by kind, reporting whether it was present
func (c *Combatant) RemoveCondition(kind string) bool {
	for i, cond := range c.Conditions {
		if cond.Kind == kind {
			c.Conditions = append(c.Conditions[:i], c.Conditions[i+1:]...)
			return true
		}
	}
	return false
}

// TickEndOfTurn decrements every timed condition by one turn and removes
// those that reach 0, returning the expired set. Indefinite conditions are
// untouched. Called only when this combatant's own turn ends.
func (c *Combatant) TickEndOfTurn() []Condition {
	var expired []Condition
	remaining := c.Conditions[:0]
	for _, cond := range c.Conditions {
		if cond.Remaining == DurationIndefinite {
			remaining = append(remaining, cond)
			continue
		}
		cond.Remaining--
		if cond.Remaining <= 0 {
			expired = append(expired, Condition{Kind: cond.Kind})
			continue
		}
		remaining = append(remaining, cond)
	}
	c.Conditions = remaining
	return expired
}
