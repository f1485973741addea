package combat

// ActionType enumerates every action the resolution engine understands.
// Dispatch is a closed switch; unknown types are rejected.
type ActionType string

const (
	ActionAttack       ActionType = "attack"
	ActionDamageSpell  ActionType = "damage_spell"
	ActionHealSpell    ActionType = "heal_spell"
	ActionBuffSpell    ActionType = "buff_spell"
	ActionDebuffSpell  ActionType = "debuff_spell"
	ActionControlSpell ActionType = "control_spell"
	ActionAbility      ActionType = "ability"
	ActionMove         ActionType = "move"
	ActionDash         ActionType = "dash"
	ActionDisengage    ActionType = "disengage"
	ActionDodge        ActionType = "dodge"
	ActionHelp         ActionType = "help"
	ActionHide         ActionType = "hide"
	ActionCustom       ActionType = "custom"

	// ActionFlee and ActionIdle are produced by the tactical policy.
	// Flee takes the actor out of the fight without counting as a defeat;
	// Idle passes the turn.
	ActionFlee ActionType = "flee"
	ActionIdle ActionType = "idle"
)

// DamageEffect describes a damaging component of a spell or ability.
// When SaveType is set, each target rolls 1d20 plus the matching ability
// modifier against SaveDC. A successful save takes half damage (floored)
// when HalfOnSave is set.
type DamageEffect struct {
	Dice       string  `json:"dice"`
	Bonus      int     `json:"bonus"`
	DamageType string  `json:"damage_type,omitempty"` // flavor only, e.g. "fire"
	SaveType   Ability `json:"save_type,omitempty"`
	SaveDC     int     `json:"save_dc,omitempty"`
	HalfOnSave bool    `json:"half_on_save"`
}

// HealEffect describes the healing component of a spell
type HealEffect struct {
	Dice  string `json:"dice"`
	Bonus int    `json:"bonus"`
}

// ConditionEffect describes a condition a spell or ability applies.
// When SaveType is set the target saves to resist; otherwise the condition
// lands unconditionally.
type ConditionEffect struct {
	Kind     string  `json:"kind"`
	Duration int     `json:"duration"` // turns of the bearer, or DurationIndefinite
	SaveType Ability `json:"save_type,omitempty"`
	SaveDC   int     `json:"save_dc,omitempty"`
}

// SkillCheck is an ad-hoc d20 check attached to a custom action
type SkillCheck struct {
	Skill string `json:"skill"`
	Bonus int    `json:"bonus"`
	DC    int    `json:"dc"`
}

// Action is a single combat action submitted for the current combatant.
// Only the fields the action type needs are consulted; the rest are ignored.
type Action struct {
	Type    ActionType `json:"type"`
	ActorID string     `json:"actor_id"`

	// TargetID is used by single-target actions (attack, help). Multi-target
	// actions (spells, abilities) use TargetIDs; a lone TargetID is accepted
	// there too.
	TargetID  string   `json:"target_id,omitempty"`
	TargetIDs []string `json:"target_ids,omitempty"`

	// Name is the spell or ability display name, carried through to the result
	Name string `json:"name,omitempty"`

	// Attack fields. A nil AttackBonus falls back to the actor's own bonus,
	// and an empty Damage falls back to the actor's weapon damage.
	AttackBonus  *int `json:"attack_bonus,omitempty"`
	Advantage    bool `json:"advantage,omitempty"`
	Disadvantage bool `json:"disadvantage,omitempty"`

	Damage    *DamageEffect    `json:"damage,omitempty"`
	Healing   *HealEffect      `json:"healing,omitempty"`
	Condition *ConditionEffect `json:"condition,omitempty"`

	// Move, dash and disengage update the actor's position when set
	Position *Position `json:"position,omitempty"`

	// StealthBonus applies to the hide check
	StealthBonus int `json:"stealth_bonus,omitempty"`

	// Description and Check back custom and control actions
	Description string      `json:"description,omitempty"`
	Check       *SkillCheck `json:"check,omitempty"`
}

// targets returns the action's target list, folding a lone TargetID in
func (a Action) targets() []string {
	if len(a.TargetIDs) > 0 {
		return a.TargetIDs
	}
	if a.TargetID != "" {
		return []string{a.TargetID}
	}
	return nil
}
