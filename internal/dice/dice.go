package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	skerrors "github.com/ironvale/skirmish/internal/errors"
)

// maxDiceCount caps a single roll to keep hostile expressions from spinning
const maxDiceCount = 100

var expressionPattern = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Expression is a parsed dice expression like "2d6+3"
type Expression struct {
	Count int
	Sides int
	Bonus int
}

// Parse parses a dice expression of the form "XdY", "XdY+Z" or "XdY-Z".
// X and Y must be at least 1.
func Parse(s string) (Expression, error) {
	m := expressionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Expression{}, skerrors.MalformedDicef("invalid dice expression %q, expected XdY or XdY+Z", s)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil {
		return Expression{}, skerrors.MalformedDicef("invalid dice count in %q", s)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, skerrors.MalformedDicef("invalid dice size in %q", s)
	}

	bonus := 0
	if m[3] != "" {
		bonus, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, skerrors.MalformedDicef("invalid bonus in %q", s)
		}
	}

	if count < 1 {
		return Expression{}, skerrors.MalformedDicef("dice count must be at least 1 in %q", s)
	}
	if sides < 1 {
		return Expression{}, skerrors.MalformedDicef("dice size must be at least 1 in %q", s)
	}
	if count > maxDiceCount {
		return Expression{}, skerrors.MalformedDicef("too many dice in %q, maximum is %d", s, maxDiceCount)
	}

	return Expression{Count: count, Sides: sides, Bonus: bonus}, nil
}

// Critical returns the expression with the die count doubled. Tabletop
// critical hits double the number of dice rolled, not the rolled total.
func (e Expression) Critical() Expression {
	e.Count *= 2
	return e
}

// String renders the expression back to XdY+Z form
func (e Expression) String() string {
	if e.Bonus == 0 {
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", e.Count, e.Sides, e.Bonus)
}

// RollResult holds the outcome of a single dice roll
type RollResult struct {
	Total     int   // RawTotal + Bonus
	Rolls     []int // individual die results that were kept
	Discarded []int // the losing set on advantage/disadvantage rolls
	Bonus     int
	Count     int
	Sides     int
	RawTotal  int // die total before the bonus

	// IsCrit and IsFumble are only set for single d20 rolls
	IsCrit   bool
	IsFumble bool
}

// String renders the result for combat logs, e.g. "[4 5] +3 = 12"
func (r *RollResult) String() string {
	compact := strings.ReplaceAll(fmt.Sprintf("%v", r.Rolls), " ", " ")
	if r.Bonus == 0 {
		return fmt.Sprintf("%s = %d", compact, r.Total)
	}
	return fmt.Sprintf("%s %+d = %d", compact, r.Bonus, r.Total)
}

// RollExpression parses expr and rolls it with the given roller
func RollExpression(r Roller, expr string) (*RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return r.Roll(e.Count, e.Sides, e.Bonus)
}
