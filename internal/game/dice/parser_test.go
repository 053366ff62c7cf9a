package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in                     string
		count, sides, modifier int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2D6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
	}
	for _, tc := range cases {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.modifier, e.Modifier, tc.in)
		assert.Equal(t, tc.in, e.Raw)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "6", "0d6", "2d1", "2dx", "2d6+x", "-1d6"} {
		_, err := dice.Parse(in)
		assert.ErrorIs(t, err, simerr.ErrValue, "input %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("bogus") })
}

func TestExpression_Build(t *testing.T) {
	ds, err := dice.MustParse("3d4+1").Build()
	require.NoError(t, err)
	require.Len(t, ds, 3)
	for _, d := range ds {
		assert.Equal(t, []dice.Face{dice.Num(2), dice.Num(3), dice.Num(4), dice.Num(5)}, d.Faces())
	}
	assert.NotSame(t, ds[0], ds[1])
}

func TestProperty_ParseRoundTripsCountAndSides(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		e, err := dice.Parse(fmt.Sprintf("%dd%d", count, sides))
		require.NoError(rt, err)
		assert.Equal(rt, count, e.Count)
		assert.Len(rt, e.Faces(), sides)
	})
}
