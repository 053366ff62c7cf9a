package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/config"
	"github.com/cory-johannsen/montecarlo/internal/game/analysis"
	"github.com/cory-johannsen/montecarlo/internal/game/dice"
	"github.com/cory-johannsen/montecarlo/internal/game/ruleset"
	"github.com/cory-johannsen/montecarlo/internal/game/trial"
	"github.com/cory-johannsen/montecarlo/internal/observability"
	"github.com/cory-johannsen/montecarlo/internal/scripting"
	"github.com/cory-johannsen/montecarlo/internal/storage/postgres"
)

// topTallies is how many combos and permutations the report lists.
const topTallies = 10

type runOptions struct {
	ScenarioID string
	List       bool
	Rolls      int
	Form       string
	Seed       int64
	EventsDir  string
	Show       int
	Persist    bool
}

// run executes one simulation and writes the report to out.
//
// Precondition: cfg must be validated; logger must be non-nil.
func run(ctx context.Context, cfg config.Config, opts runOptions, out io.Writer, logger *zap.Logger) error {
	scenarios, err := ruleset.LoadScenarios(cfg.Simulation.ScenarioDir)
	if err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}
	registry, err := ruleset.NewRegistry(scenarios)
	if err != nil {
		return err
	}
	if opts.List {
		for _, id := range registry.IDs() {
			sc, _ := registry.Get(id)
			fmt.Fprintf(out, "%s\t%s\n", id, sc.DisplayName())
		}
		return nil
	}

	sc, err := registry.Get(opts.ScenarioID)
	if err != nil {
		return err
	}

	formName := opts.Form
	if formName == "" {
		formName = cfg.Simulation.Form
	}
	form, err := trial.ParseForm(formName)
	if err != nil {
		return err
	}

	seed, err := resolveSeed(opts.Seed, cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	logger = observability.ForScenario(logger, sc.ID, seed)

	ds, err := sc.BuildDice(dice.WithSource(dice.NewSeededSource(seed)))
	if err != nil {
		return err
	}

	rolls := resolveRolls(opts.Rolls, sc.Rolls, cfg.Simulation.Rolls)
	game := trial.New(ds, trial.WithLogger(logger))
	if err := game.Play(rolls); err != nil {
		return err
	}

	an, err := analysis.New(game, analysis.WithLogger(logger))
	if err != nil {
		return err
	}

	events, err := loadEvents(sc, opts.EventsDir, cfg.Simulation.ScriptInstructionLimit, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	fmt.Fprintf(out, "scenario: %s (%s)\nseed: %d\nrolls: %d\ndice: %d\n\n", sc.DisplayName(), sc.ID, seed, rolls, len(ds))

	if err := writeTable(out, game, form, opts.Show); err != nil {
		return err
	}

	summary := an.Summary()
	if err := writeSummary(out, an, summary); err != nil {
		return err
	}
	if err := writeEvents(out, an, events, summary.Rolls, logger); err != nil {
		return err
	}

	if !opts.Persist {
		return nil
	}
	if !cfg.Database.Enabled {
		return errors.New("persist requested but database.enabled is false")
	}
	rec, err := persist(ctx, cfg.Database, &postgres.PlayRecord{
		ScenarioID: sc.ID,
		Seed:       seed,
		Jackpots:   summary.Jackpots,
		Table:      game.LastPlay(),
	})
	if err != nil {
		return err
	}
	logger.Info("play stored", zap.String("play_id", rec.ID.String()))
	fmt.Fprintf(out, "\nstored play %s\n", rec.ID)
	return nil
}

func resolveSeed(flagSeed, cfgSeed int64) (int64, error) {
	if flagSeed != 0 {
		return flagSeed, nil
	}
	if cfgSeed != 0 {
		return cfgSeed, nil
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generating seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}

func resolveRolls(flagRolls, scenarioRolls, cfgRolls int) int {
	switch {
	case flagRolls != 0:
		return flagRolls
	case scenarioRolls != 0:
		return scenarioRolls
	default:
		return cfgRolls
	}
}

// loadEvents compiles the shared event scripts in dir, then the scenario's
// own events, which replace shared events of the same name.
func loadEvents(sc *ruleset.Scenario, dir string, limit int, logger *zap.Logger) (*scripting.Set, error) {
	set := scripting.NewSet(limit, logger)
	if dir != "" {
		if err := set.LoadDir(dir); err != nil {
			set.Close()
			return nil, err
		}
	}
	for _, ev := range sc.Events {
		if err := set.Add(ev.Name, ev.Script); err != nil {
			set.Close()
			return nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
		}
	}
	return set, nil
}

func writeTable(out io.Writer, game *trial.Game, form trial.Form, show int) error {
	if show == 0 {
		return nil
	}
	rows, err := game.Render(form)
	if err != nil {
		return err
	}
	// rows[0] is the header.
	limit := len(rows)
	if show > 0 && show+1 < limit {
		limit = show + 1
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows[:limit] {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if limit < len(rows) {
		fmt.Fprintf(tw, "... %d more rows\n", len(rows)-limit)
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func writeSummary(out io.Writer, an *analysis.Analyzer, s analysis.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "jackpots\t%d\t%.4f\n", s.Jackpots, s.JackpotRate())
	fmt.Fprintf(tw, "distinct combos\t%d\n", len(s.Combos))
	fmt.Fprintf(tw, "distinct permutations\t%d\n\n", len(s.Permutations))

	fmt.Fprintln(tw, "face\ttotal")
	for _, f := range an.FaceCounts().Faces {
		fmt.Fprintf(tw, "%s\t%d\n", f, s.FaceTotals[f])
	}
	fmt.Fprintln(tw)

	writeTallies(tw, "combo", s.Combos, s.Rolls)
	writeTallies(tw, "permutation", s.Permutations, s.Rolls)
	return tw.Flush()
}

func writeTallies(w io.Writer, label string, tallies []analysis.Tally, rolls int) {
	top := slices.Clone(tallies)
	slices.SortStableFunc(top, func(a, b analysis.Tally) int { return b.Count - a.Count })
	if len(top) > topTallies {
		top = top[:topTallies]
	}
	fmt.Fprintf(w, "%s\tcount\tshare\n", label)
	for _, t := range top {
		fmt.Fprintf(w, "%s\t%d\t%.4f\n", t.Key(), t.Count, float64(t.Count)/float64(rolls))
	}
	fmt.Fprintln(w)
}

func writeEvents(out io.Writer, an *analysis.Analyzer, events *scripting.Set, rolls int, logger *zap.Logger) error {
	names := events.Names()
	if len(names) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "event\tcount\tshare")
	for _, name := range names {
		ev, _ := events.Get(name)
		n, err := an.CountMatching(ev.Match)
		if err != nil {
			return fmt.Errorf("event %q: %w", name, err)
		}
		observability.ForEvent(logger, name).Debug("event counted", zap.Int("matches", n))
		fmt.Fprintf(tw, "%s\t%d\t%.4f\n", name, n, float64(n)/float64(rolls))
	}
	return tw.Flush()
}

func persist(ctx context.Context, dbCfg config.DatabaseConfig, rec *postgres.PlayRecord) (*postgres.PlayRecord, error) {
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	if err := pool.Health(ctx, 5*time.Second); err != nil {
		return nil, err
	}
	return postgres.NewPlayRepository(pool.DB()).Save(ctx, rec)
}
