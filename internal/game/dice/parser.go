package dice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Expression is a parsed uniform dice expression such as "3d6" or "2d10-1".
//
// Precondition: Count >= 1, Sides >= 2 after successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // offset applied to every face; "1d6+2" has faces 3..8
}

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2".
//
// Postcondition: Returns an Expression or an error wrapping simerr.ErrValue.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("%w: empty dice expression", simerr.ErrValue)
	}

	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("%w: missing 'd' in dice expression %q", simerr.ErrValue, raw)
	}

	// Count defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			return Expression{}, fmt.Errorf("%w: invalid die count in %q", simerr.ErrValue, raw)
		}
	}

	rest := s[dIdx+1:]
	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("%w: invalid die sides in %q: must be an integer >= 2", simerr.ErrValue, raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("%w: invalid modifier in %q", simerr.ErrValue, raw)
		}
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Faces returns the face set shared by every die of the expression.
//
// Postcondition: len(result) == e.Sides; faces are 1+Modifier .. Sides+Modifier.
func (e Expression) Faces() []Face {
	faces := make([]Face, e.Sides)
	for i := range faces {
		faces[i] = Num(float64(i + 1 + e.Modifier))
	}
	return faces
}

// Build creates e.Count independent uniform dice.
//
// Precondition: e must come from Parse.
func (e Expression) Build(opts ...Option) ([]*Die, error) {
	out := make([]*Die, 0, e.Count)
	for range e.Count {
		d, err := New(e.Faces(), opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
