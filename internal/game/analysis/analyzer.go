// Package analysis derives descriptive statistics from the most recent play
// of a trial.Game.
package analysis

import (
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/trial"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Runner is the view of a game an Analyzer needs. *trial.Game satisfies it.
type Runner interface {
	LastPlay() trial.Table
	Dice() []*dice.Die
}

// Predicate reports whether one roll, given as faces in die order, matches.
type Predicate func(faces []dice.Face) (bool, error)

// Analyzer computes statistics over a runner's latest play. It keeps no
// results of its own: every call reads the runner's current table.
type Analyzer struct {
	runner Runner
	logger *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger logs each computation at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer over r.
//
// Postcondition: fails with simerr.ErrValidation when r is nil or a typed nil
// pointer.
func New(r Runner, opts ...Option) (*Analyzer, error) {
	if isNil(r) {
		return nil, fmt.Errorf("%w: analyzer requires a game runner", simerr.ErrValidation)
	}
	a := &Analyzer{runner: r, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func isNil(r Runner) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Jackpot counts the rolls on which every die showed the same face. A roll of
// a single die always counts; an empty play yields 0.
func (a *Analyzer) Jackpot() int {
	tbl := a.runner.LastPlay()
	count := 0
	for i := range tbl.Rolls() {
		row := tbl.Row(i)
		if allSame(row) {
			count++
		}
	}
	a.logger.Debug("jackpot computed", zap.Int("rolls", tbl.Rolls()), zap.Int("jackpots", count))
	return count
}

func allSame(row []dice.Face) bool {
	if len(row) == 0 {
		return false
	}
	for _, f := range row[1:] {
		if f != row[0] {
			return false
		}
	}
	return true
}

// FaceCounts is a roll × face matrix of how many dice showed each face.
type FaceCounts struct {
	// Faces is the column order.
	Faces []dice.Face
	// Counts[i][k] is the number of dice showing Faces[k] on roll i.
	Counts [][]int
}

// Count returns the cell for roll and face, or 0 when face is not a column.
func (fc FaceCounts) Count(roll int, face dice.Face) int {
	k := slices.Index(fc.Faces, face)
	if k < 0 {
		return 0
	}
	return fc.Counts[roll][k]
}

// Totals sums each face column over all rolls.
func (fc FaceCounts) Totals() map[dice.Face]int {
	out := make(map[dice.Face]int, len(fc.Faces))
	for k, f := range fc.Faces {
		for _, row := range fc.Counts {
			out[f] += row[k]
		}
	}
	return out
}

// FaceCounts tallies, per roll, how many dice landed on each face.
//
// The columns are the first die's faces in order, followed by any face of a
// later die that the first die lacks, in first-seen order. For dice sharing a
// face set this is exactly the first die's faces.
func (a *Analyzer) FaceCounts() FaceCounts {
	tbl := a.runner.LastPlay()
	faces := faceUniverse(a.runner.Dice())
	col := make(map[dice.Face]int, len(faces))
	for k, f := range faces {
		col[f] = k
	}

	counts := make([][]int, tbl.Rolls())
	for i := range counts {
		counts[i] = make([]int, len(faces))
		for _, f := range tbl.Row(i) {
			if k, ok := col[f]; ok {
				counts[i][k]++
			}
		}
	}
	a.logger.Debug("face counts computed", zap.Int("rolls", tbl.Rolls()), zap.Int("faces", len(faces)))
	return FaceCounts{Faces: faces, Counts: counts}
}

func faceUniverse(ds []*dice.Die) []dice.Face {
	var faces []dice.Face
	seen := make(map[dice.Face]bool)
	for _, d := range ds {
		for _, f := range d.Faces() {
			if !seen[f] {
				seen[f] = true
				faces = append(faces, f)
			}
		}
	}
	return faces
}

// Tally is a distinct outcome tuple and how many rolls produced it.
type Tally struct {
	Faces []dice.Face
	Count int
}

// Key renders the tuple, e.g. "1,1,6".
func (t Tally) Key() string { return dice.Key(t.Faces) }

// Combos counts the distinct order-independent outcomes: each roll's faces are
// sorted before grouping, so (1,2) and (2,1) share a bucket.
//
// Postcondition: result is sorted by tuple; counts sum to the number of rolls.
func (a *Analyzer) Combos() []Tally {
	out := a.tally(true)
	a.logger.Debug("combos computed", zap.Int("distinct", len(out)))
	return out
}

// Permutations counts the distinct ordered outcomes, keeping die positions.
//
// Postcondition: result is sorted by tuple; counts sum to the number of rolls.
func (a *Analyzer) Permutations() []Tally {
	out := a.tally(false)
	a.logger.Debug("permutations computed", zap.Int("distinct", len(out)))
	return out
}

func (a *Analyzer) tally(sorted bool) []Tally {
	tbl := a.runner.LastPlay()
	byKey := make(map[string]*Tally)
	var out []*Tally
	for i := range tbl.Rolls() {
		row := tbl.Row(i)
		if sorted {
			slices.SortFunc(row, dice.Face.Compare)
		}
		key := tupleKey(row)
		if t, ok := byKey[key]; ok {
			t.Count++
			continue
		}
		t := &Tally{Faces: row, Count: 1}
		byKey[key] = t
		out = append(out, t)
	}
	slices.SortFunc(out, func(x, y *Tally) int { return dice.CompareSeq(x.Faces, y.Faces) })

	result := make([]Tally, len(out))
	for i, t := range out {
		result[i] = *t
	}
	return result
}

// tupleKey distinguishes numeric 1 from text "1", which dice.Key renders alike.
func tupleKey(faces []dice.Face) string {
	buf := make([]byte, 0, len(faces)*3)
	for _, f := range faces {
		buf = append(buf, byte(f.Kind()))
		buf = append(buf, f.String()...)
		buf = append(buf, 0)
	}
	return string(buf)
}

// CountMatching counts the rolls for which pred reports true.
//
// Postcondition: stops at and returns the first predicate error.
func (a *Analyzer) CountMatching(pred Predicate) (int, error) {
	tbl := a.runner.LastPlay()
	count := 0
	for i := range tbl.Rolls() {
		ok, err := pred(tbl.Row(i))
		if err != nil {
			return 0, fmt.Errorf("roll %d: %w", i, err)
		}
		if ok {
			count++
		}
	}
	return count, nil
}
