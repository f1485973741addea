package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ironvale/skirmish/internal/domain/combat"
)

func TestAbilityModifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{20, 5},
		{15, 2},
		{14, 2},
		{11, 0},
		{10, 0},
		{9, -1},
		{8, -1},
		{7, -2},
		{1, -5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, combat.AbilityModifier(tt.score), "score %d", tt.score)
	}
}

func TestModifiersFromScores(t *testing.T) {
	mods := combat.ModifiersFromScores(16, 14, 12, 10, 8, 7)
	assert.Equal(t, 3, mods.For(combat.AbilityStrength))
	assert.Equal(t, 2, mods.For(combat.AbilityDexterity))
	assert.Equal(t, 1, mods.For(combat.AbilityConstitution))
	assert.Equal(t, 0, mods.For(combat.AbilityIntelligence))
	assert.Equal(t, -1, mods.For(combat.AbilityWisdom))
	assert.Equal(t, -2, mods.For(combat.AbilityCharisma))
	assert.Equal(t, 0, mods.For(combat.Ability("luck")), "unknown abilities get no modifier")
}

func TestCombatant_ApplyDamage(t *testing.T) {
	c := &combat.Combatant{ID: "c1", CurrentHP: 10, MaxHP: 10, IsActive: true}

	assert.Equal(t, 6, c.ApplyDamage(4))
	assert.True(t, c.IsActive)

	// damage clamps at 0 and knocks the combatant out
	assert.Equal(t, 0, c.ApplyDamage(20))
	assert.False(t, c.IsActive)
	assert.False(t, c.IsAlive())
}

func TestCombatant_ApplyHealing(t *testing.T) {
	c := &combat.Combatant{ID: "c1", CurrentHP: 0, MaxHP: 10, IsActive: false}

	// healing a downed combatant brings them back
	assert.Equal(t, 3, c.ApplyHealing(3))
	assert.True(t, c.IsActive)

	// healing clamps at max HP
	assert.Equal(t, 10, c.ApplyHealing(50))
}

func TestCombatant_HPBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 50).Draw(rt, "maxHP")
		c := &combat.Combatant{ID: "c1", CurrentHP: maxHP, MaxHP: maxHP, IsActive: true}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(0, 60).Draw(rt, "amount")
			if rapid.Bool().Draw(rt, "heal") {
				c.ApplyHealing(amount)
			} else {
				c.ApplyDamage(amount)
			}
			if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
				rt.Fatalf("hp %d out of bounds 0..%d", c.CurrentHP, c.MaxHP)
			}
			if c.IsActive != (c.CurrentHP > 0) {
				rt.Fatalf("active flag out of sync with %d hp", c.CurrentHP)
			}
		}
	})
}

func TestCombatant_AddCondition_ReplacesSameKind(t *testing.T) {
	c := &combat.Combatant{ID: "c1", CurrentHP: 10, MaxHP: 10, IsActive: true}

	c.AddCondition("stunned", 2)
	c.AddCondition("blessed", 3)
	c.AddCondition("stunned", 5)

	require.Len(t, c.Conditions, 2, "identical kinds must not stack")
	assert.Equal(t, "stunned", c.Conditions[0].Kind)
	assert.Equal(t, 5, c.Conditions[0].Remaining, "re-applying replaces the duration")
	assert.Equal(t, "blessed", c.Conditions[1].Kind)
}

func TestCombatant_RemoveCondition(t *testing.T) {
	c := &combat.Combatant{ID: "c1", CurrentHP: 10, MaxHP: 10, IsActive: true}
	c.AddCondition("hidden", combat.DurationIndefinite)

	assert.True(t, c.RemoveCondition("hidden"))
	assert.False(t, c.RemoveCondition("hidden"), "removing twice reports absence")
	assert.Empty(t, c.Conditions)
}

func TestCombatant_TickEndOfTurn(t *testing.T) {
	c := &combat.Combatant{ID: "c1", CurrentHP: 10, MaxHP: 10, IsActive: true}
	c.AddCondition("stunned", 2)
	c.AddCondition("poisoned", 1)
	c.AddCondition("hidden", combat.DurationIndefinite)

	expired := c.TickEndOfTurn()
	require.Len(t, expired, 1)
	assert.Equal(t, "poisoned", expired[0].Kind)
	assert.True(t, c.HasCondition("stunned"))
	assert.True(t, c.HasCondition("hidden"))

	expired = c.TickEndOfTurn()
	require.Len(t, expired, 1)
	assert.Equal(t, "stunned", expired[0].Kind)

	// indefinite conditions never tick away
	for i := 0; i < 10; i++ {
		assert.Empty(t, c.TickEndOfTurn())
	}
	assert.True(t, c.HasCondition("hidden"))
}
