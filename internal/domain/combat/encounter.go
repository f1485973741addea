package combat

import (
	"fmt"
	"sort"
	"time"

	"github.com/ironvale/skirmish/internal/dice"
	skerrors "github.com/ironvale/skirmish/internal/errors"
)

// Status represents the lifecycle state of an encounter. Transitions are
// one-way: NotStarted -> Active -> Ended.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
)

// maxCombatLogEntries bounds the in-model log
const maxCombatLogEntries = 50

// InitiativeRoll is one combatant's initiative result
type InitiativeRoll struct {
	CombatantID string `json:"combatant_id"`
	Name        string `json:"name"`
	Roll        int    `json:"roll"`
}

// InitiativeSummary lists initiative results in final turn order
type InitiativeSummary []InitiativeRoll

// Encounter owns a single combat: the combatants, the initiative order, the
// turn/round counters and the lifecycle status. It is not safe for
// concurrent use; callers own one encounter per goroutine.
type Encounter struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	Round  int    `json:"round"`
	Turn   int    `json:"turn"` // index into TurnOrder

	Combatants map[string]*Combatant `json:"combatants"`
	Roster     []string              `json:"roster"`     // insertion order, tie-break of last resort
	TurnOrder  []string              `json:"turn_order"` // fixed at Start

	CombatLog []string `json:"combat_log"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Winner Faction `json:"winner,omitempty"`
	Draw   bool    `json:"draw"`

	roller dice.Roller
}

// New creates an encounter from a pre-built roster. Combatant stats are
// validated here; faction balance is checked at Start.
func New(id, name string, combatants []*Combatant, roller dice.Roller) (*Encounter, error) {
	if id == "" {
		return nil, skerrors.InvalidArgument("encounter id is required")
	}
	if roller == nil {
		roller = dice.NewRoller(nil)
	}

	e := &Encounter{
		ID:         id,
		Name:       name,
		Status:     StatusNotStarted,
		Combatants: make(map[string]*Combatant, len(combatants)),
		Roster:     make([]string, 0, len(combatants)),
		TurnOrder:  []string{},
		CombatLog:  []string{},
		CreatedAt:  time.Now(),
		roller:     roller,
	}

	for _, c := range combatants {
		if err := e.AddCombatant(c); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// AddCombatant adds a combatant before the encounter starts
func (e *Encounter) AddCombatant(c *Combatant) error {
	if e.Status != StatusNotStarted {
		return skerrors.InvalidArgument("cannot add combatants after the encounter has started")
	}
	if c == nil || c.ID == "" {
		return skerrors.InvalidArgument("combatant id is required")
	}
	if _, exists := e.Combatants[c.ID]; exists {
		return skerrors.AlreadyExistsf("combatant %q is already in the encounter", c.ID)
	}
	if c.Faction != FactionPlayers && c.Faction != FactionOpponents {
		return skerrors.InvalidArgumentf("combatant %q has unknown faction %q", c.ID, c.Faction)
	}
	if c.MaxHP < 1 {
		return skerrors.InvalidArgumentf("combatant %q must have at least 1 max HP", c.ID)
	}
	if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
		return skerrors.InvalidArgumentf("combatant %q HP %d out of range 0..%d", c.ID, c.CurrentHP, c.MaxHP)
	}

	c.IsActive = c.CurrentHP > 0
	e.Combatants[c.ID] = c
	e.Roster = append(e.Roster, c.ID)
	return nil
}

// AttachRoller re-injects the dice roller after an encounter is loaded from
// storage. The roller is runtime state and is not persisted.
func (e *Encounter) AttachRoller(roller dice.Roller) {
	e.roller = roller
}

// Start rolls initiative for every combatant, fixes the turn order and
// activates the encounter. Turn order is initiative descending; at equal
// initiative the player faction acts first, and residual ties keep roster
// order.
func (e *Encounter) Start() (InitiativeSummary, error) {
	if e.Status != StatusNotStarted {
		return nil, skerrors.InvalidArgumentf("encounter %s already started", e.ID)
	}
	if len(e.Roster) == 0 {
		return nil, skerrors.DegenerateEncounterf("encounter %s has no combatants", e.ID)
	}

	players, opponents := 0, 0
	for _, c := range e.Combatants {
		switch c.Faction {
		case FactionPlayers:
			players++
		case FactionOpponents:
			opponents++
		}
	}
	if players == 0 || opponents == 0 {
		return nil, skerrors.DegenerateEncounterf("encounter %s needs both factions represented", e.ID)
	}

	for _, id := range e.Roster {
		c := e.Combatants[id]
		result, err := e.roller.Roll(1, 20, c.InitiativeBonus)
		if err != nil {
			return nil, skerrors.Wrap(err, "failed to roll initiative")
		}
		c.Initiative = result.Total
	}

	order := make([]string, len(e.Roster))
	copy(order, e.Roster)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := e.Combatants[order[i]], e.Combatants[order[j]]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		// player faction wins ties; stable sort keeps roster order otherwise
		return a.Faction == FactionPlayers && b.Faction != FactionPlayers
	})
	e.TurnOrder = order

	now := time.Now()
	e.Status = StatusActive
	e.StartedAt = &now
	e.Round = 1
	e.Turn = 0

	summary := make(InitiativeSummary, 0, len(order))
	for _, id := range order {
		c := e.Combatants[id]
		summary = append(summary, InitiativeRoll{CombatantID: id, Name: c.Name, Roll: c.Initiative})
	}

	e.addLogEntry("combat begins, %d combatants", len(order))

	// a roster can legally contain downed combatants; never yield a turn to one
	if !e.skipInactive() {
		e.end(nil, "", true)
	}

	return summary, nil
}

// CurrentCombatant returns the combatant whose turn it is, or nil before start
func (e *Encounter) CurrentCombatant() *Combatant {
	if len(e.TurnOrder) == 0 || e.Turn >= len(e.TurnOrder) {
		return nil
	}
	return e.Combatants[e.TurnOrder[e.Turn]]
}

// CurrentActorID returns the id of the combatant whose turn it is
func (e *Encounter) CurrentActorID() string {
	if c := e.CurrentCombatant(); c != nil {
		return c.ID
	}
	return ""
}

// advanceTurn ends the current combatant's turn: its conditions tick down,
// the index advances and inactive combatants are skipped. Wrapping past the
// top of the order increments the round. A full lap with nobody active
// forces the encounter to end.
func (e *Encounter) advanceTurn(result *ActionResult) {
	current := e.CurrentCombatant()
	for _, expired := range current.TickEndOfTurn() {
		result.Expired = append(result.Expired, ExpiredCondition{CombatantID: current.ID, Kind: expired.Kind})
		e.addLogEntry("%s is no longer %s", current.Name, expired.Kind)
	}

	if !e.nextActive() {
		e.end(result, "", true)
	}
}

// skipInactive moves the turn index to the next active combatant without
// ticking anyone's conditions. Used at start when the leading slot is down.
func (e *Encounter) skipInactive() bool {
	if e.CurrentCombatant().IsActive {
		return true
	}
	return e.nextActive()
}

// nextActive advances the index to the next active combatant, counting
// rounds on every wrap. Returns false after a full dead lap.
func (e *Encounter) nextActive() bool {
	for range e.TurnOrder {
		e.Turn = (e.Turn + 1) % len(e.TurnOrder)
		if e.Turn == 0 {
			e.Round++
		}
		if e.Combatants[e.TurnOrder[e.Turn]].IsActive {
			return true
		}
	}
	return false
}

// checkEnd detects a faction wipe after hp changed. Returns true once the
// encounter has ended.
func (e *Encounter) checkEnd(result *ActionResult) bool {
	activePlayers, activeOpponents := 0, 0
	for _, c := range e.Combatants {
		if !c.IsActive {
			continue
		}
		switch c.Faction {
		case FactionPlayers:
			activePlayers++
		case FactionOpponents:
			activeOpponents++
		}
	}

	switch {
	case activePlayers == 0 && activeOpponents == 0:
		e.end(result, "", true)
	case activeOpponents == 0:
		e.end(result, FactionPlayers, false)
	case activePlayers == 0:
		e.end(result, FactionOpponents, false)
	default:
		return false
	}
	return true
}

func (e *Encounter) end(result *ActionResult, winner Faction, draw bool) {
	now := time.Now()
	e.Status = StatusEnded
	e.EndedAt = &now
	e.Winner = winner
	e.Draw = draw

	if result != nil {
		result.EncounterEnded = true
		result.Winner = winner
		result.Draw = draw
	}

	switch {
	case draw:
		e.addLogEntry("combat ends in a draw after %d rounds", e.Round)
	case winner != "":
		e.addLogEntry("combat ends after %d rounds, %s win", e.Round, winner)
	default:
		e.addLogEntry("combat called off after %d rounds", e.Round)
	}
}

// End concludes the encounter without a winner. Safe to call twice.
func (e *Encounter) End() {
	if e.Status == StatusEnded {
		return
	}
	e.end(nil, "", false)
}

// addLogEntry appends a round-stamped entry to the bounded combat log
func (e *Encounter) addLogEntry(format string, args ...any) {
	if e.CombatLog == nil {
		e.CombatLog = []string{}
	}
	entry := fmt.Sprintf("Round %d: %s", e.Round, fmt.Sprintf(format, args...))
	e.CombatLog = append(e.CombatLog, entry)
	if len(e.CombatLog) > maxCombatLogEntries {
		e.CombatLog = e.CombatLog[len(e.CombatLog)-maxCombatLogEntries:]
	}
}

// CombatantSnapshot is a read-only view of one combatant
type CombatantSnapshot struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Faction       Faction     `json:"faction"`
	CurrentHP     int         `json:"current_hp"`
	MaxHP         int         `json:"max_hp"`
	Conditions    []Condition `json:"conditions"`
	IsActive      bool        `json:"is_active"`
	Position      Position    `json:"position"`
	IsCurrentTurn bool        `json:"is_current_turn"`
}

// EncounterSnapshot is a read-only view of the whole encounter for status
// displays. Mutating it has no effect on the encounter.
type EncounterSnapshot struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Status         Status              `json:"status"`
	Round          int                 `json:"round"`
	CurrentActorID string              `json:"current_actor_id,omitempty"`
	Combatants     []CombatantSnapshot `json:"combatants"`
	CombatLog      []string            `json:"combat_log"`
}

// Snapshot captures the current state of all combatants, in turn order once
// the encounter has started and roster order before that.
func (e *Encounter) Snapshot() *EncounterSnapshot {
	order := e.TurnOrder
	if len(order) == 0 {
		order = e.Roster
	}

	snap := &EncounterSnapshot{
		ID:             e.ID,
		Name:           e.Name,
		Status:         e.Status,
		Round:          e.Round,
		CurrentActorID: e.CurrentActorID(),
		Combatants:     make([]CombatantSnapshot, 0, len(order)),
		CombatLog:      append([]string{}, e.CombatLog...),
	}

	for _, id := range order {
		c := e.Combatants[id]
		snap.Combatants = append(snap.Combatants, CombatantSnapshot{
			ID:            c.ID,
			Name:          c.Name,
			Faction:       c.Faction,
			CurrentHP:     c.CurrentHP,
			MaxHP:         c.MaxHP,
			Conditions:    append([]Condition{}, c.Conditions...),
			IsActive:      c.IsActive,
			Position:      c.Position,
			IsCurrentTurn: e.Status == StatusActive && id == e.CurrentActorID(),
		})
	}

	return snap
}

// EncounterSummary reports the outcome of a finished encounter
type EncounterSummary struct {
	Rounds    int      `json:"rounds"`
	Winner    Faction  `json:"winner,omitempty"`
	Draw      bool     `json:"draw"`
	Defeated  []string `json:"defeated"`
	Survivors []string `json:"survivors"`
}

// Summary is only available once the encounter has ended
func (e *Encounter) Summary() (*EncounterSummary, error) {
	if e.Status != StatusEnded {
		return nil, skerrors.InvalidArgumentf("encounter %s has not ended", e.ID)
	}

	summary := &EncounterSummary{
		Rounds:    e.Round,
		Winner:    e.Winner,
		Draw:      e.Draw,
		Defeated:  []string{},
		Survivors: []string{},
	}
	for _, id := range e.Roster {
		if e.Combatants[id].IsActive {
			summary.Survivors = append(summary.Survivors, id)
		} else {
			summary.Defeated = append(summary.Defeated, id)
		}
	}
	return summary, nil
}
