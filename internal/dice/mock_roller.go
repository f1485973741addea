package dice

import (
	"fmt"
	"sync"
)

// MockRoller implements Roller for testing with predetermined results
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller
func NewMockRoller() *MockRoller {
	return &MockRoller{
		rolls: []int{},
	}
}

// SetNextRoll sets the next roll result
func (m *MockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets multiple roll results
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *MockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll
func (m *MockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

func (m *MockRoller) takeSet(count, sides int) ([]int, int, error) {
	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, 0, err
		}
		if roll < 1 || roll > sides {
			return nil, 0, fmt.Errorf("invalid roll %d for d%d", roll, sides)
		}
		rolls[i] = roll
		total += roll
	}
	return rolls, total, nil
}

// Roll implements Roller.Roll
func (m *MockRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	rolls, rawTotal, err := m.takeSet(count, sides)
	if err != nil {
		return nil, err
	}

	result := &RollResult{
		Total:    rawTotal + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: rawTotal,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (m *MockRoller) RollWithAdvantage(count, sides, bonus int) (*RollResult, error) {
	return m.rollTwice(count, sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (m *MockRoller) RollWithDisadvantage(count, sides, bonus int) (*RollResult, error) {
	return m.rollTwice(count, sides, bonus, false)
}

func (m *MockRoller) rollTwice(count, sides, bonus int, keepHigher bool) (*RollResult, error) {
	first, firstTotal, err := m.takeSet(count, sides)
	if err != nil {
		return nil, err
	}
	second, secondTotal, err := m.takeSet(count, sides)
	if err != nil {
		return nil, err
	}

	kept, keptTotal := first, firstTotal
	discarded := second
	if (secondTotal > firstTotal) == keepHigher && secondTotal != firstTotal {
		kept, keptTotal = second, secondTotal
		discarded = first
	}

	result := &RollResult{
		Total:     keptTotal + bonus,
		Rolls:     kept,
		Discarded: discarded,
		Bonus:     bonus,
		Count:     count,
		Sides:     sides,
		RawTotal:  keptTotal,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = kept[0] == 20
		result.IsFumble = kept[0] == 1
	}

	return result, nil
}
