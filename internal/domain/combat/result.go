package combat

// TargetOutcome records what one action did to one target
type TargetOutcome struct {
	TargetID string `json:"target_id"`

	Damage  int  `json:"damage"`
	Healing int  `json:"healing"`
	Revived bool `json:"revived"` // healed up from 0 HP

	SaveRolled  bool    `json:"save_rolled"`
	SaveType    Ability `json:"save_type,omitempty"`
	SaveRoll    int     `json:"save_roll,omitempty"` // d20 + modifier
	SaveSuccess bool    `json:"save_success"`

	ConditionApplied string `json:"condition_applied,omitempty"`

	Defeated bool `json:"defeated"`
}

// ExpiredCondition records a condition that timed out when a turn ended
type ExpiredCondition struct {
	CombatantID string `json:"combatant_id"`
	Kind        string `json:"kind"`
}

// ActionResult is the structured outcome of one processed action. It carries
// no narrative text; rendering is the caller's business.
type ActionResult struct {
	Type    ActionType `json:"type"`
	ActorID string     `json:"actor_id"`
	Name    string     `json:"name,omitempty"`
	Round   int        `json:"round"` // round the action resolved in

	// Attack fields
	Hit            bool `json:"hit"`
	Critical       bool `json:"critical"`
	CriticalFumble bool `json:"critical_fumble"`
	AttackRoll     int  `json:"attack_roll"`  // raw d20
	AttackTotal    int  `json:"attack_total"` // raw + bonus

	Targets []TargetOutcome `json:"targets,omitempty"`

	// Hide and custom checks
	CheckRolled  bool `json:"check_rolled"`
	CheckRoll    int  `json:"check_roll,omitempty"`
	CheckSuccess bool `json:"check_success"`

	// Conditions the actor applied to itself (dodge, hide)
	SelfCondition string `json:"self_condition,omitempty"`

	// Position after a move, dash or disengage
	Position *Position `json:"position,omitempty"`

	Fled bool `json:"fled"`

	DefeatedIDs []string `json:"defeated_ids,omitempty"`

	// Conditions that expired when the turn ended
	Expired []ExpiredCondition `json:"expired,omitempty"`

	// Encounter end, set when this action finished the fight
	EncounterEnded bool    `json:"encounter_ended"`
	Winner         Faction `json:"winner,omitempty"`
	Draw           bool    `json:"draw"`
}

// defeated appends a defeated target id once
func (r *ActionResult) defeated(id string) {
	for _, existing := range r.DefeatedIDs {
		if existing == id {
			return
		}
	}
	r.DefeatedIDs = append(r.DefeatedIDs, id)
}
