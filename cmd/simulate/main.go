// Package main runs a dice scenario, prints the roll table and its
// statistics, and optionally stores the play in PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/montecarlo/internal/config"
	"github.com/cory-johannsen/montecarlo/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and environment")
	scenarioID := flag.String("scenario", "fair_pair", "id of the scenario to simulate")
	list := flag.Bool("list", false, "list available scenarios and exit")
	rolls := flag.Int("rolls", 0, "rolls per play; 0 = scenario or configured default")
	form := flag.String("form", "", "table layout: wide or narrow; empty = configured default")
	seed := flag.Int64("seed", 0, "random seed; 0 = configured seed, or a fresh random seed")
	eventsDir := flag.String("events-dir", "content/events", "directory of Lua event scripts; empty = scenario events only")
	show := flag.Int("show", 10, "number of table rows to print; negative = all")
	persist := flag.Bool("persist", false, "store the play in PostgreSQL (requires database.enabled)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	opts := runOptions{
		ScenarioID: *scenarioID,
		List:       *list,
		Rolls:      *rolls,
		Form:       *form,
		Seed:       *seed,
		EventsDir:  *eventsDir,
		Show:       *show,
		Persist:    *persist,
	}
	if err := run(ctx, cfg, opts, os.Stdout, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}
