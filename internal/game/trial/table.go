package trial

import (
	"fmt"
	"strconv"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Table is the wide result of a play: one row per roll, one column per die,
// each cell holding the face that die showed on that roll.
//
// Invariant: every row has exactly numDice cells.
type Table struct {
	rows    [][]dice.Face
	numDice int
}

// NarrowRow is one (roll, die) cell of a Table in long form.
type NarrowRow struct {
	Roll    int
	Die     int
	Outcome dice.Face
}

// NewTable builds a Table from rows, copying them.
//
// Precondition: all rows have the same length.
// Postcondition: returns a Table or an error wrapping simerr.ErrValue.
func NewTable(rows [][]dice.Face) (Table, error) {
	if len(rows) == 0 {
		return Table{}, nil
	}
	width := len(rows[0])
	out := make([][]dice.Face, len(rows))
	for i, r := range rows {
		if len(r) != width {
			return Table{}, fmt.Errorf("%w: row %d has %d cells, want %d", simerr.ErrValue, i, len(r), width)
		}
		out[i] = append([]dice.Face(nil), r...)
	}
	return Table{rows: out, numDice: width}, nil
}

// Rolls returns the number of rows.
func (t Table) Rolls() int { return len(t.rows) }

// NumDice returns the number of columns.
func (t Table) NumDice() int { return t.numDice }

// Empty reports whether the table has no rolls.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Cell returns the face die showed on roll.
//
// Precondition: 0 <= roll < Rolls() and 0 <= die < NumDice().
func (t Table) Cell(roll, die int) dice.Face {
	return t.rows[roll][die]
}

// Row returns a copy of the outcomes of roll in die order.
func (t Table) Row(roll int) []dice.Face {
	return append([]dice.Face(nil), t.rows[roll]...)
}

// Column returns a copy of every outcome of die in roll order.
func (t Table) Column(die int) []dice.Face {
	out := make([]dice.Face, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[die]
	}
	return out
}

// ColumnName labels a die column, e.g. "dice-0".
func (t Table) ColumnName(die int) string {
	return "dice-" + strconv.Itoa(die)
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := Table{rows: make([][]dice.Face, len(t.rows)), numDice: t.numDice}
	for i, r := range t.rows {
		out.rows[i] = append([]dice.Face(nil), r...)
	}
	return out
}

// Narrow melts t into long form.
//
// Postcondition: len(result) == Rolls()*NumDice(); rows are ordered by roll,
// then by die position.
func (t Table) Narrow() []NarrowRow {
	out := make([]NarrowRow, 0, len(t.rows)*t.numDice)
	for i, r := range t.rows {
		for j, f := range r {
			out = append(out, NarrowRow{Roll: i, Die: j, Outcome: f})
		}
	}
	return out
}
