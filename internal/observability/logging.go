// Package observability provides structured logging for the simulator.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/montecarlo/internal/config"
)

// presets maps a configured log format to the zap preset it starts from.
var presets = map[string]func() zap.Config{
	"json":    zap.NewProductionConfig,
	"console": zap.NewDevelopmentConfig,
}

// NewLogger builds the simulator's root logger. Reports go to stdout, so every
// log line goes to stderr. Sampling is off: a run logs once per play and
// dropping those lines would hide plays.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	preset, ok := presets[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	zc := preset()
	zc.Level = level
	zc.Sampling = nil
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("montecarlo"), nil
}

// ForScenario returns a child logger tagged with the scenario being simulated.
func ForScenario(logger *zap.Logger, scenario string, seed int64) *zap.Logger {
	return logger.With(zap.String("scenario", scenario), zap.Int64("seed", seed))
}

// ForEvent returns a child logger tagged with a scripted event name.
func ForEvent(logger *zap.Logger, event string) *zap.Logger {
	return logger.With(zap.String("event", event))
}
