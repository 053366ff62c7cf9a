package trial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/trial"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

func newDie(t require.TestingT, seed int64, values any) *dice.Die {
	d, err := dice.FromValues(values, dice.WithSource(dice.NewSeededSource(seed)))
	require.NoError(t, err)
	return d
}

func TestGame_EmptyBeforePlay(t *testing.T) {
	g := trial.New([]*dice.Die{newDie(t, 1, []int{1, 2, 3})})
	assert.True(t, g.LastPlay().Empty())
	assert.Empty(t, g.LastPlayNarrow())
}

func TestProperty_PlayShape(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numDice := rapid.IntRange(1, 6).Draw(rt, "dice")
		n := rapid.IntRange(1, 100).Draw(rt, "rolls")
		ds := make([]*dice.Die, numDice)
		for j := range ds {
			sides := rapid.IntRange(1, 8).Draw(rt, "sides")
			values := make([]int, sides)
			for k := range values {
				values[k] = k + j*10
			}
			ds[j] = newDie(rt, int64(j), values)
		}

		g := trial.New(ds)
		require.NoError(rt, g.Play(n))

		tbl := g.LastPlay()
		require.Equal(rt, n, tbl.Rolls())
		require.Equal(rt, numDice, tbl.NumDice())
		for i := range n {
			for j, d := range ds {
				assert.True(rt, d.Contains(tbl.Cell(i, j)), "cell (%d,%d) not on die", i, j)
			}
		}
	})
}

func TestProperty_NarrowCoversEveryCellOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numDice := rapid.IntRange(1, 5).Draw(rt, "dice")
		n := rapid.IntRange(1, 50).Draw(rt, "rolls")
		ds := make([]*dice.Die, numDice)
		for j := range ds {
			ds[j] = newDie(rt, int64(j), []string{"a", "b", "c"})
		}
		g := trial.New(ds)
		require.NoError(rt, g.Play(n))

		wide := g.LastPlay()
		narrow := g.LastPlayNarrow()
		require.Len(rt, narrow, n*numDice)

		seen := make(map[[2]int]bool, len(narrow))
		for k, row := range narrow {
			assert.Equal(rt, k/numDice, row.Roll, "row %d roll", k)
			assert.Equal(rt, k%numDice, row.Die, "row %d die", k)
			assert.Equal(rt, wide.Cell(row.Roll, row.Die), row.Outcome)
			key := [2]int{row.Roll, row.Die}
			assert.False(rt, seen[key])
			seen[key] = true
		}
	})
}

func TestGame_PlayReplacesPreviousTable(t *testing.T) {
	g := trial.New([]*dice.Die{newDie(t, 1, []int{1, 2}), newDie(t, 2, []int{1, 2})})
	require.NoError(t, g.Play(10))
	require.NoError(t, g.Play(3))
	assert.Equal(t, 3, g.LastPlay().Rolls())
}

func TestGame_PlayRejectsNonPositive(t *testing.T) {
	g := trial.New([]*dice.Die{newDie(t, 1, []int{1, 2})})
	require.NoError(t, g.Play(4))
	assert.ErrorIs(t, g.Play(0), simerr.ErrValue)
	assert.ErrorIs(t, g.Play(-2), simerr.ErrValue)
	assert.Equal(t, 4, g.LastPlay().Rolls())
}

func TestGame_ColumnsFollowDiceOrder(t *testing.T) {
	g := trial.New([]*dice.Die{
		newDie(t, 1, []string{"x"}),
		newDie(t, 2, []int{7}),
	})
	require.NoError(t, g.Play(2))
	tbl := g.LastPlay()
	assert.Equal(t, []dice.Face{dice.Str("x"), dice.Str("x")}, tbl.Column(0))
	assert.Equal(t, []dice.Face{dice.Num(7), dice.Num(7)}, tbl.Column(1))
	assert.Equal(t, []dice.Face{dice.Str("x"), dice.Num(7)}, tbl.Row(1))
}

func TestGame_LastPlayIsIndependentCopy(t *testing.T) {
	g := trial.New([]*dice.Die{newDie(t, 1, []int{1, 2, 3})})
	require.NoError(t, g.Play(5))
	first := g.LastPlay()
	row := first.Row(0)
	row[0] = dice.Num(99)

	again := g.LastPlay()
	assert.NotEqual(t, dice.Num(99), again.Cell(0, 0))
	assert.Equal(t, first.Cell(0, 0), again.Cell(0, 0))
}

func TestGame_SharesDiceWithCaller(t *testing.T) {
	d := newDie(t, 5, []int{1, 2})
	g := trial.New([]*dice.Die{d})
	require.NoError(t, d.SetWeight(dice.Num(2), 1e9))
	require.NoError(t, g.Play(20))
	for _, f := range g.LastPlay().Column(0) {
		assert.Equal(t, dice.Num(2), f)
	}
	assert.Same(t, d, g.Dice()[0])
}

func TestGame_LogsPlay(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := trial.New([]*dice.Die{newDie(t, 1, []int{1, 2})}, trial.WithLogger(zap.New(core)))
	require.NoError(t, g.Play(3))

	entries := logs.FilterMessage("play complete").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["rolls"])
}
