package util

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/betting"
	"github.com/mpapenbr/turtlerace/pkg/config"
	"github.com/mpapenbr/turtlerace/pkg/race"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the default logger from the resolved log configuration.
// Logs are written to stderr, stdout belongs to the game output.
func SetupLogger() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.WarnLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.WarnLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	filtered, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return err
	}
	log.ResetDefault(filtered)
	return nil
}

// AddRaceFlags registers the flags for the race parameters
func AddRaceFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().IntVar(&cfg.FinishDistance,
		"finish-distance",
		race.DefaultFinishDistance,
		"distance to the finish line")
	cmd.Flags().IntVar(&cfg.MinStep,
		"min-step",
		race.DefaultMinStep,
		"minimum step of a racer per tick")
	cmd.Flags().IntVar(&cfg.MaxStep,
		"max-step",
		race.DefaultMaxStep,
		"maximum step of a racer per tick")
	cmd.Flags().Int64Var(&cfg.Seed,
		"seed",
		0,
		"seed for the random numbers (0 means random)")
}

// AddBettingFlags registers the flags for the betting parameters
func AddBettingFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().Int64Var(&cfg.StartBalance,
		"start-balance",
		betting.DefaultStartBalance,
		"tokens at the start of the game")
	cmd.Flags().IntVar(&cfg.WinningRank,
		"winning-rank",
		1,
		"finishing rank a bet must hit to win")
}

// RaceOptions converts the configuration into options for the race simulator.
// The seed is not included.
func RaceOptions(cfg *config.Config) []race.Option {
	return []race.Option{
		race.WithFinishDistance(cfg.FinishDistance),
		race.WithStepRange(cfg.MinStep, cfg.MaxStep),
	}
}
