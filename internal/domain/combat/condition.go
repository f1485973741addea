package combat

// DurationIndefinite marks a condition that never expires on its own and is
// only removed explicitly.
const DurationIndefinite = -1

// Conditions the resolution engine applies itself. The kind is an open
// string so callers can attach their own effects too.
const (
	ConditionDodging = "dodging"
	ConditionHelped  = "helped"
	ConditionHidden  = "hidden"
)

// Condition is a named, timed status effect attached to a combatant.
// Remaining counts turns of the bearer: it decreases only when the bearer's
// own turn ends, never on anyone else's turn.
type Condition struct {
	Kind      string `json:"kind"`
	Remaining int    `json:"remaining"`
}

// Indefinite reports whether the condition only goes away when removed explicitly
func (c Condition) Indefinite() bool {
	return c.Remaining == DurationIndefinite
}
