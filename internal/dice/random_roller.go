package dice

import (
	"math/rand"
	"sync"
	"time"

	skerrors "github.com/ironvale/skirmish/internal/errors"
)

// randomRoller implements Roller over an injected rand source so rolls are
// reproducible when seeded
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a roller backed by the given rand source. A nil source
// gets a time-seeded one.
func NewRoller(rng *rand.Rand) Roller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &randomRoller{rng: rng}
}

// NewSeededRoller creates a roller with a fixed seed for reproducible runs
func NewSeededRoller(seed int64) Roller {
	return NewRoller(rand.New(rand.NewSource(seed)))
}

func (r *randomRoller) rollSet(count, sides int) ([]int, int, error) {
	if count < 1 {
		return nil, 0, skerrors.MalformedDicef("invalid dice count %d", count)
	}
	if sides < 1 {
		return nil, 0, skerrors.MalformedDicef("invalid dice size %d", sides)
	}
	if count > maxDiceCount {
		return nil, 0, skerrors.MalformedDicef("too many dice %d, maximum is %d", count, maxDiceCount)
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		roll := r.rng.Intn(sides) + 1
		rolls[i] = roll
		total += roll
	}
	return rolls, total, nil
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rolls, rawTotal, err := r.rollSet(count, sides)
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
func (r *randomRoller) RollWithAdvantage(count, sides, bonus int) (*RollResult, error) {
	return r.rollTwice(count, sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(count, sides, bonus int) (*RollResult, error) {
	return r.rollTwice(count, sides, bonus, false)
}

func (r *randomRoller) rollTwice(count, sides, bonus int, keepHigher bool) (*RollResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	first, firstTotal, err := r.rollSet(count, sides)
	if err != nil {
		return nil, err
	}
	second, secondTotal, err := r.rollSet(count, sides)
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
