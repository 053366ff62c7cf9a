package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/config"
	"github.com/cory-johannsen/montecarlo/internal/game/ruleset"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFromViper(config.NewViper())
	require.NoError(t, err)
	cfg.Simulation.ScenarioDir = "../../content/scenarios"
	return cfg
}

func runToString(t *testing.T, opts runOptions) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), testConfig(t), opts, &out, zap.NewNop())
	return out.String(), err
}

func TestRun_ListScenarios(t *testing.T) {
	out, err := runToString(t, runOptions{List: true})
	require.NoError(t, err)
	assert.Contains(t, out, "fair_pair")
	assert.Contains(t, out, "coins")
}

func TestRun_SeededRunIsReproducible(t *testing.T) {
	opts := runOptions{ScenarioID: "fair_pair", Seed: 42, Rolls: 200, EventsDir: "../../content/events", Show: 5}
	first, err := runToString(t, opts)
	require.NoError(t, err)
	second, err := runToString(t, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "seed: 42")
	assert.Contains(t, first, "rolls: 200")
	assert.Contains(t, first, "dice-0")
	assert.Contains(t, first, "snake_eyes")
	assert.Contains(t, first, "all_different")
	assert.Contains(t, first, "... 195 more rows")
}

func TestRun_NarrowForm(t *testing.T) {
	out, err := runToString(t, runOptions{ScenarioID: "coins", Seed: 3, Rolls: 4, Form: "narrow", Show: -1})
	require.NoError(t, err)
	assert.Contains(t, out, "outcome")
	assert.NotContains(t, out, "more rows")
}

func TestRun_UnknownScenario(t *testing.T) {
	_, err := runToString(t, runOptions{ScenarioID: "nope", Seed: 1})
	assert.ErrorIs(t, err, ruleset.ErrScenarioNotFound)
}

func TestRun_UnknownForm(t *testing.T) {
	_, err := runToString(t, runOptions{ScenarioID: "fair_pair", Seed: 1, Form: "tall"})
	assert.ErrorIs(t, err, simerr.ErrValue)
}

func TestRun_NegativeRolls(t *testing.T) {
	_, err := runToString(t, runOptions{ScenarioID: "fair_pair", Seed: 1, Rolls: -5})
	assert.ErrorIs(t, err, simerr.ErrValue)
}

func TestRun_PersistRequiresDatabase(t *testing.T) {
	_, err := runToString(t, runOptions{ScenarioID: "fair_pair", Seed: 1, Rolls: 10, Show: 0, Persist: true})
	assert.ErrorContains(t, err, "database.enabled")
}

func TestResolveRolls(t *testing.T) {
	assert.Equal(t, 5, resolveRolls(5, 10, 100))
	assert.Equal(t, 10, resolveRolls(0, 10, 100))
	assert.Equal(t, 100, resolveRolls(0, 0, 100))
}

func TestResolveSeed(t *testing.T) {
	s, err := resolveSeed(7, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s)
	s, err = resolveSeed(0, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s)
	s, err = resolveSeed(0, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s, int64(0))
}
