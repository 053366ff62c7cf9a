package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/trial"
)

// ErrPlayNotFound is returned when a play lookup yields no results.
var ErrPlayNotFound = errors.New("play not found")

// PlayRecord is a stored play: its wide table plus the run metadata.
type PlayRecord struct {
	ID         uuid.UUID
	ScenarioID string
	Seed       int64
	Jackpots   int
	Table      trial.Table
	CreatedAt  time.Time
}

// PlayRepository stores plays as a header row plus one outcome row per
// (roll, die) cell, i.e. the narrow form of the table.
type PlayRepository struct {
	db *pgxpool.Pool
}

// NewPlayRepository creates a PlayRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayRepository(db *pgxpool.Pool) *PlayRepository {
	return &PlayRepository{db: db}
}

// Save inserts rec under a new ID in a single transaction.
//
// Precondition: rec.ScenarioID must be non-empty.
// Postcondition: Returns a copy of rec with ID and CreatedAt set.
func (r *PlayRepository) Save(ctx context.Context, rec *PlayRecord) (*PlayRecord, error) {
	if rec == nil || rec.ScenarioID == "" {
		return nil, errors.New("play record and scenario id must be set")
	}
	out := *rec
	out.ID = uuid.New()
	id := pgtype.UUID{Bytes: out.ID, Valid: true}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning play transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO plays (id, scenario_id, seed, rolls, dice, jackpots)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		id, out.ScenarioID, out.Seed, out.Table.Rolls(), out.Table.NumDice(), out.Jackpots,
	).Scan(&out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting play: %w", err)
	}

	cells := out.Table.Narrow()
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"play_outcomes"},
		[]string{"play_id", "roll", "die", "kind", "outcome"},
		pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
			c := cells[i]
			return []any{id, int32(c.Roll), int32(c.Die), int16(c.Outcome.Kind()), c.Outcome.String()}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("copying play outcomes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing play: %w", err)
	}
	out.Table = out.Table.Clone()
	return &out, nil
}

// Get loads the play with the given ID, including its table.
//
// Postcondition: Returns ErrPlayNotFound if no such play exists.
func (r *PlayRepository) Get(ctx context.Context, id uuid.UUID) (*PlayRecord, error) {
	var (
		out          PlayRecord
		rolls, width int
	)
	err := r.db.QueryRow(ctx, `
		SELECT scenario_id, seed, rolls, dice, jackpots, created_at
		FROM plays WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true},
	).Scan(&out.ScenarioID, &out.Seed, &rolls, &width, &out.Jackpots, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayNotFound
		}
		return nil, fmt.Errorf("loading play: %w", err)
	}
	out.ID = id

	table, err := r.loadTable(ctx, id, rolls, width)
	if err != nil {
		return nil, err
	}
	out.Table = table
	return &out, nil
}

func (r *PlayRepository) loadTable(ctx context.Context, id uuid.UUID, rolls, width int) (trial.Table, error) {
	cells := make([][]dice.Face, rolls)
	for i := range cells {
		cells[i] = make([]dice.Face, width)
	}

	rows, err := r.db.Query(ctx, `
		SELECT roll, die, kind, outcome
		FROM play_outcomes WHERE play_id = $1`,
		pgtype.UUID{Bytes: id, Valid: true},
	)
	if err != nil {
		return trial.Table{}, fmt.Errorf("loading play outcomes: %w", err)
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		var (
			roll, die int
			kind      int16
			outcome   string
		)
		if err := rows.Scan(&roll, &die, &kind, &outcome); err != nil {
			return trial.Table{}, fmt.Errorf("scanning play outcome: %w", err)
		}
		if roll < 0 || roll >= rolls || die < 0 || die >= width {
			return trial.Table{}, fmt.Errorf("play outcome (%d,%d) outside %dx%d table", roll, die, rolls, width)
		}
		face, err := decodeFace(dice.FaceKind(kind), outcome)
		if err != nil {
			return trial.Table{}, err
		}
		cells[roll][die] = face
		seen++
	}
	if err := rows.Err(); err != nil {
		return trial.Table{}, fmt.Errorf("iterating play outcomes: %w", err)
	}
	if seen != rolls*width {
		return trial.Table{}, fmt.Errorf("play has %d outcomes, want %d", seen, rolls*width)
	}
	return trial.NewTable(cells)
}

func decodeFace(kind dice.FaceKind, s string) (dice.Face, error) {
	if kind == dice.Text {
		return dice.Str(s), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dice.Face{}, fmt.Errorf("decoding numeric outcome %q: %w", s, err)
	}
	return dice.Num(v), nil
}

// ListByScenario returns up to limit of the most recent plays of a scenario,
// newest first. Tables are not loaded.
//
// Precondition: limit > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *PlayRepository) ListByScenario(ctx context.Context, scenarioID string, limit int) ([]*PlayRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, scenario_id, seed, jackpots, created_at
		FROM plays WHERE scenario_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		scenarioID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing plays: %w", err)
	}
	defer rows.Close()

	out := []*PlayRecord{}
	for rows.Next() {
		var (
			rec PlayRecord
			id  pgtype.UUID
		)
		if err := rows.Scan(&id, &rec.ScenarioID, &rec.Seed, &rec.Jackpots, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		rec.ID = uuid.UUID(id.Bytes)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plays: %w", err)
	}
	return out, nil
}

// Delete removes a play and its outcomes.
//
// Postcondition: Returns ErrPlayNotFound if no such play exists.
func (r *PlayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM plays WHERE id = $1`, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return fmt.Errorf("deleting play: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayNotFound
	}
	return nil
}
