// Package trial runs plays: n simultaneous rolls of every die in a Game, kept
// as a single result table.
package trial

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/simerr"
)

// Game rolls an ordered list of dice together and keeps the most recent play.
//
// The dice are shared with the caller: weight changes made after New are seen
// by later plays. Only the latest play is retained.
type Game struct {
	dice   []*dice.Die
	logger *zap.Logger

	mu   sync.RWMutex
	last Table
}

// Option configures a Game.
type Option func(*Game)

// WithLogger logs each play at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Game over ds. Dice with different face sets may be mixed.
//
// Postcondition: LastPlay() is empty until the first successful Play.
func New(ds []*dice.Die, opts ...Option) *Game {
	g := &Game{
		dice:   append([]*dice.Die(nil), ds...),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dice returns the game's dice in column order. The slice is a copy; the dice
// are the caller's own.
func (g *Game) Dice() []*dice.Die {
	return append([]*dice.Die(nil), g.dice...)
}

// Play rolls every die n times and replaces the stored table.
//
// Precondition: n >= 1.
// Postcondition: LastPlay() has n rows and len(Dice()) columns; column j holds
// die j's draws in draw order. On error the previous table is kept.
func (g *Game) Play(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: number of rolls must be >= 1, got %d", simerr.ErrValue, n)
	}
	start := time.Now()

	rows := make([][]dice.Face, n)
	for i := range rows {
		rows[i] = make([]dice.Face, len(g.dice))
	}
	for j, d := range g.dice {
		for i, f := range d.Roll(n) {
			rows[i][j] = f
		}
	}

	g.mu.Lock()
	g.last = Table{rows: rows, numDice: len(g.dice)}
	g.mu.Unlock()

	g.logger.Debug("play complete",
		zap.Int("rolls", n),
		zap.Int("dice", len(g.dice)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// LastPlay returns a copy of the most recent wide table.
func (g *Game) LastPlay() Table {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last.Clone()
}

// LastPlayNarrow returns the most recent play in long form, ordered by roll
// then die position.
func (g *Game) LastPlayNarrow() []NarrowRow {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last.Narrow()
}

// Render returns the most recent play as text rows in the given form.
func (g *Game) Render(form Form) ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last.Render(form)
}
