package trial

import (
	"fmt"
	"strconv"

	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Form selects the shape in which a play is reported.
type Form string

const (
	// FormWide has one row per roll and one column per die.
	FormWide Form = "wide"
	// FormNarrow has one row per (roll, die) pair.
	FormNarrow Form = "narrow"
)

// ParseForm maps "wide" or "narrow" to a Form.
//
// Postcondition: any other input fails with simerr.ErrValue.
func ParseForm(s string) (Form, error) {
	switch Form(s) {
	case FormWide, FormNarrow:
		return Form(s), nil
	default:
		return "", fmt.Errorf("%w: table form must be %q or %q, got %q", simerr.ErrValue, FormWide, FormNarrow, s)
	}
}

// Render lays t out as text rows in the given form, header first.
// Wide headers are "roll", "dice-0", "dice-1", ...; narrow headers are
// "roll", "dice", "outcome".
func (t Table) Render(form Form) ([][]string, error) {
	switch form {
	case FormWide:
		header := make([]string, 0, t.numDice+1)
		header = append(header, "roll")
		for j := range t.numDice {
			header = append(header, t.ColumnName(j))
		}
		out := [][]string{header}
		for i, r := range t.rows {
			line := make([]string, 0, len(r)+1)
			line = append(line, strconv.Itoa(i))
			for _, f := range r {
				line = append(line, f.String())
			}
			out = append(out, line)
		}
		return out, nil
	case FormNarrow:
		out := [][]string{{"roll", "dice", "outcome"}}
		for _, nr := range t.Narrow() {
			out = append(out, []string{strconv.Itoa(nr.Roll), strconv.Itoa(nr.Die), nr.Outcome.String()})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown table form %q", simerr.ErrValue, form)
	}
}
