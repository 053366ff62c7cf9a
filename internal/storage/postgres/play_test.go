package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/trial"
	"github.com/cory-johannsen/montecarlo/internal/storage/postgres"
	"github.com/cory-johannsen/montecarlo/internal/testutil"
)

func uniqueScenario(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func playedTable(t *testing.T, seed int64, rolls int) trial.Table {
	t.Helper()
	src := dice.NewSeededSource(seed)
	d6, err := dice.FromValues([]int{1, 2, 3, 4, 5, 6}, dice.WithSource(src))
	require.NoError(t, err)
	coin, err := dice.FromValues([]string{"H", "T"}, dice.WithSource(src))
	require.NoError(t, err)
	half, err := dice.FromValues([]float64{0.5, 1.5}, dice.WithSource(src))
	require.NoError(t, err)
	g := trial.New([]*dice.Die{d6, coin, half})
	require.NoError(t, g.Play(rolls))
	return g.LastPlay()
}

func TestPlayRepository_SaveAndGet(t *testing.T) {
	repo := postgres.NewPlayRepository(testutil.NewPool(t))
	ctx := context.Background()
	table := playedTable(t, 7, 25)

	saved, err := repo.Save(ctx, &postgres.PlayRecord{
		ScenarioID: uniqueScenario("mixed"),
		Seed:       7,
		Jackpots:   0,
		Table:      table,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ScenarioID, got.ScenarioID)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, table, got.Table)
}

func TestPlayRepository_GetNotFound(t *testing.T) {
	repo := postgres.NewPlayRepository(testutil.NewPool(t))
	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, postgres.ErrPlayNotFound)
}

func TestPlayRepository_SaveRejectsMissingScenario(t *testing.T) {
	repo := postgres.NewPlayRepository(testutil.NewPool(t))
	_, err := repo.Save(context.Background(), &postgres.PlayRecord{Table: playedTable(t, 1, 1)})
	assert.Error(t, err)
}

func TestPlayRepository_ListByScenario(t *testing.T) {
	repo := postgres.NewPlayRepository(testutil.NewPool(t))
	ctx := context.Background()
	scenario := uniqueScenario("list")

	var ids []uuid.UUID
	for seed := int64(1); seed <= 3; seed++ {
		rec, err := repo.Save(ctx, &postgres.PlayRecord{
			ScenarioID: scenario,
			Seed:       seed,
			Table:      playedTable(t, seed, 4),
		})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	_, err := repo.Save(ctx, &postgres.PlayRecord{ScenarioID: uniqueScenario("other"), Table: playedTable(t, 9, 2)})
	require.NoError(t, err)

	got, err := repo.ListByScenario(ctx, scenario, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	var gotIDs []uuid.UUID
	for _, rec := range got {
		assert.Equal(t, scenario, rec.ScenarioID)
		assert.True(t, rec.Table.Empty())
		gotIDs = append(gotIDs, rec.ID)
	}
	assert.ElementsMatch(t, ids, gotIDs)

	limited, err := repo.ListByScenario(ctx, scenario, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.ListByScenario(ctx, uniqueScenario("missing"), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlayRepository_Delete(t *testing.T) {
	repo := postgres.NewPlayRepository(testutil.NewPool(t))
	ctx := context.Background()

	rec, err := repo.Save(ctx, &postgres.PlayRecord{ScenarioID: uniqueScenario("del"), Table: playedTable(t, 3, 5)})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	_, err = repo.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, postgres.ErrPlayNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), postgres.ErrPlayNotFound)
}

func TestMigrate_UpIsIdempotent(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	first, err := postgres.Migrate(pc.Config, "up", 0)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, uint(1), first.Version)

	second, err := postgres.Migrate(pc.Config, "up", 0)
	require.NoError(t, err)
	assert.False(t, second.Changed)

	_, err = postgres.Migrate(pc.Config, "sideways", 0)
	assert.Error(t, err)
}
