package combat

import (
	"github.com/ironvale/skirmish/internal/dice"
	skerrors "github.com/ironvale/skirmish/internal/errors"
)

// hideThreshold is the fixed stealth DC for the hide action. Opposed
// perception checks are not modeled.
const hideThreshold = 10

// ProcessAction validates and resolves one action for the current combatant,
// then advances the turn. Validation happens before any state mutation, so a
// returned error leaves the encounter untouched.
func (e *Encounter) ProcessAction(action Action) (*ActionResult, error) {
	if e.Status != StatusActive {
		return nil, skerrors.EncounterNotActivef("encounter %s is %s", e.ID, e.Status)
	}

	actor, err := e.validateActor(action)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{
		Type:    action.Type,
		ActorID: actor.ID,
		Name:    action.Name,
		Round:   e.Round,
	}

	switch action.Type {
	case ActionAttack:
		err = e.resolveAttack(actor, action, result)
	case ActionDamageSpell:
		err = e.resolveDamageSpell(actor, action, result)
	case ActionHealSpell:
		err = e.resolveHealSpell(actor, action, result)
	case ActionBuffSpell:
		err = e.resolveBuffSpell(actor, action, result)
	case ActionDebuffSpell:
		err = e.resolveDebuffSpell(actor, action, result)
	case ActionControlSpell:
		err = e.resolveControlSpell(actor, action, result)
	case ActionAbility:
		err = e.resolveAbility(actor, action, result)
	case ActionMove, ActionDash, ActionDisengage:
		err = e.resolveMove(actor, action, result)
	case ActionDodge:
		actor.AddCondition(ConditionDodging, 1)
		result.SelfCondition = ConditionDodging
		e.addLogEntry("%s takes the Dodge action", actor.Name)
	case ActionHelp:
		err = e.resolveHelp(actor, action, result)
	case ActionHide:
		err = e.resolveHide(actor, action, result)
	case ActionCustom:
		err = e.resolveCustom(actor, action, result)
	case ActionFlee:
		actor.IsActive = false
		result.Fled = true
		e.addLogEntry("%s flees the battle", actor.Name)
	case ActionIdle:
		e.addLogEntry("%s holds their ground", actor.Name)
	default:
		return nil, skerrors.InvalidArgumentf("unknown action type %q", action.Type)
	}
	if err != nil {
		return nil, err
	}

	if !e.checkEnd(result) {
		e.advanceTurn(result)
	}

	return result, nil
}

// validateActor enforces the actor rules: it must exist, be active and be
// the combatant whose turn it is.
func (e *Encounter) validateActor(action Action) (*Combatant, error) {
	actor, exists := e.Combatants[action.ActorID]
	if !exists {
		return nil, skerrors.InvalidActorf("unknown combatant %q", action.ActorID)
	}
	if !actor.IsActive {
		return nil, skerrors.InvalidActorf("combatant %q is out of the fight", action.ActorID)
	}
	if actor.ID != e.CurrentActorID() {
		return nil, skerrors.NotYourTurnf("it is %s's turn, not %s's", e.CurrentActorID(), actor.ID)
	}
	return actor, nil
}

func (e *Encounter) lookupTarget(id string) (*Combatant, error) {
	target, exists := e.Combatants[id]
	if !exists {
		return nil, skerrors.InvalidTargetf("unknown target %q", id)
	}
	return target, nil
}

func (e *Encounter) lookupTargets(ids []string) ([]*Combatant, error) {
	if len(ids) == 0 {
		return nil, skerrors.InvalidTargetf("at least one target is required")
	}
	targets := make([]*Combatant, 0, len(ids))
	for _, id := range ids {
		target, err := e.lookupTarget(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// rollD20 draws the attack die, honoring advantage and disadvantage. Both
// flags together cancel out.
func (e *Encounter) rollD20(bonus int, advantage, disadvantage bool) (*dice.RollResult, error) {
	if advantage && disadvantage {
		advantage, disadvantage = false, false
	}
	switch {
	case advantage:
		return e.roller.RollWithAdvantage(1, 20, bonus)
	case disadvantage:
		return e.roller.RollWithDisadvantage(1, 20, bonus)
	default:
		return e.roller.Roll(1, 20, bonus)
	}
}

// dealDamage applies a non-negative damage amount and fills in the outcome
func (e *Encounter) dealDamage(target *Combatant, amount int, outcome *TargetOutcome, result *ActionResult) {
	if amount < 0 {
		amount = 0
	}
	wasAlive := target.IsAlive()
	target.ApplyDamage(amount)
	outcome.Damage = amount
	if wasAlive && !target.IsAlive() {
		outcome.Defeated = true
		result.defeated(target.ID)
		e.addLogEntry("%s takes %d damage and falls", target.Name, amount)
		return
	}
	e.addLogEntry("%s takes %d damage (%d/%d HP)", target.Name, amount, target.CurrentHP, target.MaxHP)
}

func (e *Encounter) resolveAttack(actor *Combatant, action Action, result *ActionResult) error {
	targetIDs := action.targets()
	if len(targetIDs) != 1 {
		return skerrors.InvalidTargetf("attack requires exactly one target")
	}
	target, err := e.lookupTarget(targetIDs[0])
	if err != nil {
		return err
	}

	damage := action.Damage
	if damage == nil {
		damage = &DamageEffect{Dice: actor.DamageDice, Bonus: actor.DamageBonus}
	}
	expr, err := dice.Parse(damage.Dice)
	if err != nil {
		return err
	}

	attackBonus := actor.AttackBonus
	if action.AttackBonus != nil {
		attackBonus = *action.AttackBonus
	}

	attackRoll, err := e.rollD20(0, action.Advantage, action.Disadvantage)
	if err != nil {
		return skerrors.Wrap(err, "failed to roll attack")
	}

	raw := attackRoll.Rolls[0]
	result.AttackRoll = raw
	result.AttackTotal = raw + attackBonus

	outcome := TargetOutcome{TargetID: target.ID}

	switch {
	case attackRoll.IsFumble:
		// a raw 1 misses no matter the bonus
		result.CriticalFumble = true
	case attackRoll.IsCrit:
		// a raw 20 hits no matter the AC
		result.Critical = true
		result.Hit = true
	default:
		result.Hit = result.AttackTotal >= target.AC
	}

	if !result.Hit {
		result.Targets = append(result.Targets, outcome)
		e.addLogEntry("%s misses %s (%d vs AC %d)", actor.Name, target.Name, result.AttackTotal, target.AC)
		return nil
	}

	damageExpr := expr
	if result.Critical {
		damageExpr = expr.Critical()
	}
	damageRoll, err := e.roller.Roll(damageExpr.Count, damageExpr.Sides, damageExpr.Bonus+damage.Bonus)
	if err != nil {
		return skerrors.Wrap(err, "failed to roll damage")
	}

	if result.Critical {
		e.addLogEntry("%s critically hits %s", actor.Name, target.Name)
	} else {
		e.addLogEntry("%s hits %s (%d vs AC %d)", actor.Name, target.Name, result.AttackTotal, target.AC)
	}
	e.dealDamage(target, damageRoll.Total, &outcome, result)
	result.Targets = append(result.Targets, outcome)
	return nil
}

// rollSave rolls a saving throw for the target against the given DC and
// fills in the outcome fields. Returns whether the save succeeded.
func (e *Encounter) rollSave(target *Combatant, save Ability, dc int, outcome *TargetOutcome) (bool, error) {
	modifier := target.Abilities.For(save)
	roll, err := e.roller.Roll(1, 20, modifier)
	if err != nil {
		return false, skerrors.Wrap(err, "failed to roll saving throw")
	}
	outcome.SaveRolled = true
	outcome.SaveType = save
	outcome.SaveRoll = roll.Total
	outcome.SaveSuccess = roll.Total >= dc
	return outcome.SaveSuccess, nil
}

// applyDamageEffect resolves one damaging effect against one target:
// optional save, damage roll, half damage (floored) on a successful save
// when the effect allows it.
func (e *Encounter) applyDamageEffect(target *Combatant, effect *DamageEffect, expr dice.Expression, outcome *TargetOutcome, result *ActionResult) error {
	saved := false
	if effect.SaveType != "" {
		var err error
		saved, err = e.rollSave(target, effect.SaveType, effect.SaveDC, outcome)
		if err != nil {
			return err
		}
	}

	roll, err := e.roller.Roll(expr.Count, expr.Sides, expr.Bonus+effect.Bonus)
	if err != nil {
		return skerrors.Wrap(err, "failed to roll damage")
	}

	amount := roll.Total
	if amount < 0 {
		amount = 0
	}
	if saved && effect.HalfOnSave {
		amount /= 2
	}
	e.dealDamage(target, amount, outcome, result)
	return nil
}

func (e *Encounter) resolveDamageSpell(actor *Combatant, action Action, result *ActionResult) error {
	effect := action.Damage
	if effect == nil {
		return skerrors.InvalidArgumentf("damage spell requires a damage effect")
	}
	expr, err := dice.Parse(effect.Dice)
	if err != nil {
		return err
	}
	targets, err := e.lookupTargets(action.targets())
	if err != nil {
		return err
	}

	e.addLogEntry("%s casts %s", actor.Name, spellName(action))
	for _, target := range targets {
		outcome := TargetOutcome{TargetID: target.ID}
		if err := e.applyDamageEffect(target, effect, expr, &outcome, result); err != nil {
			return err
		}
		result.Targets = append(result.Targets, outcome)
	}
	return nil
}

func (e *Encounter) resolveHealSpell(actor *Combatant, action Action, result *ActionResult) error {
	effect := action.Healing
	if effect == nil {
		return skerrors.InvalidArgumentf("heal spell requires a healing effect")
	}
	expr, err := dice.Parse(effect.Dice)
	if err != nil {
		return err
	}
	targets, err := e.lookupTargets(action.targets())
	if err != nil {
		return err
	}

	e.addLogEntry("%s casts %s", actor.Name, spellName(action))
	for _, target := range targets {
		roll, err := e.roller.Roll(expr.Count, expr.Sides, expr.Bonus+effect.Bonus)
		if err != nil {
			return skerrors.Wrap(err, "failed to roll healing")
		}
		amount := roll.Total
		if amount < 0 {
			amount = 0
		}

		wasDown := !target.IsAlive()
		target.ApplyHealing(amount)

		outcome := TargetOutcome{TargetID: target.ID, Healing: amount}
		if wasDown && target.IsAlive() {
			outcome.Revived = true
			e.addLogEntry("%s is healed for %d and regains consciousness", target.Name, amount)
		} else {
			e.addLogEntry("%s is healed for %d (%d/%d HP)", target.Name, amount, target.CurrentHP, target.MaxHP)
		}
		result.Targets = append(result.Targets, outcome)
	}
	return nil
}

func (e *Encounter) resolveBuffSpell(actor *Combatant, action Action, result *ActionResult) error {
	effect := action.Condition
	if effect == nil || effect.Kind == "" {
		return skerrors.InvalidArgumentf("buff spell requires a condition effect")
	}
	targets, err := e.lookupTargets(action.targets())
	if err != nil {
		return err
	}

	duration := normalizeDuration(effect.Duration)
	for _, target := range targets {
		target.AddCondition(effect.Kind, duration)
		result.Targets = append(result.Targets, TargetOutcome{
			TargetID:         target.ID,
			ConditionApplied: effect.Kind,
		})
		e.addLogEntry("%s gains %s from %s", target.Name, effect.Kind, spellName(action))
	}
	return nil
}

func (e *Encounter) resolveDebuffSpell(actor *Combatant, action Action, result *ActionResult) error {
	effect := action.Condition
	if effect == nil || effect.Kind == "" {
		return skerrors.InvalidArgumentf("debuff spell requires a condition effect")
	}
	targets, err := e.lookupTargets(action.targets())
	if err != nil {
		return err
	}

	duration := normalizeDuration(effect.Duration)
	for _, target := range targets {
		outcome := TargetOutcome{TargetID: target.ID}
		if err := e.applyConditionEffect(target, effect, duration, &outcome); err != nil {
			return err
		}
		result.Targets = append(result.Targets, outcome)
	}
	return nil
}

// applyConditionEffect lands a condition on the target, letting it save
// first when the effect specifies a save.
func (e *Encounter) applyConditionEffect(target *Combatant, effect *ConditionEffect, duration int, outcome *TargetOutcome) error {
	if effect.SaveType != "" {
		saved, err := e.rollSave(target, effect.SaveType, effect.SaveDC, outcome)
		if err != nil {
			return err
		}
		if saved {
			e.addLogEntry("%s resists %s", target.Name, effect.Kind)
			return nil
		}
	}
	target.AddCondition(effect.Kind, duration)
	outcome.ConditionApplied = effect.Kind
	e.addLogEntry("%s is afflicted with %s", target.Name, effect.Kind)
	return nil
}

func (e *Encounter) resolveControlSpell(actor *Combatant, action Action, result *ActionResult) error {
	// battlefield control has no mechanical effect here; the renderer gets
	// the description and the targets, nothing else changes
	if len(action.targets()) > 0 {
		if _, err := e.lookupTargets(action.targets()); err != nil {
			return err
		}
	}
	e.addLogEntry("%s casts %s", actor.Name, spellName(action))
	return nil
}

func (e *Encounter) resolveAbility(actor *Combatant, action Action, result *ActionResult) error {
	if action.Damage == nil && action.Condition == nil {
		return skerrors.InvalidArgumentf("ability requires a damage or condition effect")
	}

	var damageExpr dice.Expression
	if action.Damage != nil {
		var err error
		damageExpr, err = dice.Parse(action.Damage.Dice)
		if err != nil {
			return err
		}
	}
	targets, err := e.lookupTargets(action.targets())
	if err != nil {
		return err
	}

	e.addLogEntry("%s uses %s", actor.Name, abilityName(action))

	if action.Damage != nil {
		for _, target := range targets {
			outcome := TargetOutcome{TargetID: target.ID}
			if err := e.applyDamageEffect(target, action.Damage, damageExpr, &outcome, result); err != nil {
				return err
			}
			result.Targets = append(result.Targets, outcome)
		}
	}

	if action.Condition != nil && action.Condition.Kind != "" {
		duration := normalizeDuration(action.Condition.Duration)
		for _, target := range targets {
			outcome := TargetOutcome{TargetID: target.ID}
			if err := e.applyConditionEffect(target, action.Condition, duration, &outcome); err != nil {
				return err
			}
			result.Targets = append(result.Targets, outcome)
		}
	}

	return nil
}

func (e *Encounter) resolveMove(actor *Combatant, action Action, result *ActionResult) error {
	if action.Position != nil {
		actor.Position = *action.Position
	}
	position := actor.Position
	result.Position = &position

	switch action.Type {
	case ActionDash:
		e.addLogEntry("%s dashes to (%d,%d)", actor.Name, position.X, position.Y)
	case ActionDisengage:
		e.addLogEntry("%s disengages and moves to (%d,%d)", actor.Name, position.X, position.Y)
	default:
		e.addLogEntry("%s moves to (%d,%d)", actor.Name, position.X, position.Y)
	}
	return nil
}

func (e *Encounter) resolveHelp(actor *Combatant, action Action, result *ActionResult) error {
	targetIDs := action.targets()
	if len(targetIDs) != 1 {
		return skerrors.InvalidTargetf("help requires exactly one target")
	}
	target, err := e.lookupTarget(targetIDs[0])
	if err != nil {
		return err
	}

	target.AddCondition(ConditionHelped, 1)
	result.Targets = append(result.Targets, TargetOutcome{
		TargetID:         target.ID,
		ConditionApplied: ConditionHelped,
	})
	e.addLogEntry("%s helps %s", actor.Name, target.Name)
	return nil
}

func (e *Encounter) resolveHide(actor *Combatant, action Action, result *ActionResult) error {
	roll, err := e.roller.Roll(1, 20, action.StealthBonus)
	if err != nil {
		return skerrors.Wrap(err, "failed to roll stealth check")
	}

	result.CheckRolled = true
	result.CheckRoll = roll.Total
	result.CheckSuccess = roll.Total >= hideThreshold

	if result.CheckSuccess {
		actor.AddCondition(ConditionHidden, DurationIndefinite)
		result.SelfCondition = ConditionHidden
		e.addLogEntry("%s hides (stealth %d)", actor.Name, roll.Total)
	} else {
		e.addLogEntry("%s fails to hide (stealth %d)", actor.Name, roll.Total)
	}
	return nil
}

func (e *Encounter) resolveCustom(actor *Combatant, action Action, result *ActionResult) error {
	if action.Check == nil {
		e.addLogEntry("%s improvises: %s", actor.Name, action.Description)
		return nil
	}

	roll, err := e.roller.Roll(1, 20, action.Check.Bonus)
	if err != nil {
		return skerrors.Wrap(err, "failed to roll skill check")
	}

	result.CheckRolled = true
	result.CheckRoll = roll.Total
	result.CheckSuccess = roll.Total >= action.Check.DC
	if result.CheckSuccess {
		e.addLogEntry("%s succeeds on a %s check (%d vs DC %d)", actor.Name, action.Check.Skill, roll.Total, action.Check.DC)
	} else {
		e.addLogEntry("%s fails a %s check (%d vs DC %d)", actor.Name, action.Check.Skill, roll.Total, action.Check.DC)
	}
	return nil
}

func normalizeDuration(duration int) int {
	if duration == 0 {
		return 1
	}
	return duration
}

func spellName(action Action) string {
	if action.Name != "" {
		return action.Name
	}
	return "a spell"
}

func abilityName(action Action) string {
	if action.Name != "" {
		return action.Name
	}
	return "an ability"
}
