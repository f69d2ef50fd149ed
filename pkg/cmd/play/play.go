package play

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/betting"
	"github.com/mpapenbr/turtlerace/pkg/cmd/util"
	"github.com/mpapenbr/turtlerace/pkg/config"
	"github.com/mpapenbr/turtlerace/pkg/metrics"
	"github.com/mpapenbr/turtlerace/pkg/race"
	"github.com/mpapenbr/turtlerace/pkg/session"
)

var (
	appConfig  config.Config // holds processed config values
	tickDelay  string
	showTrack  bool
	showRank   bool
	noRedraw   bool
	trackWidth int
)

func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "play the turtle race betting game on the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd)
		},
	}
	util.AddRaceFlags(cmd, &appConfig)
	util.AddBettingFlags(cmd, &appConfig)
	cmd.Flags().StringVar(&tickDelay,
		"tick-delay",
		"50ms",
		"pause between two ticks of a race (0 means: go as fast as possible)")
	cmd.Flags().BoolVar(&showTrack,
		"show-track",
		true,
		"draw the track while racing")
	cmd.Flags().BoolVar(&showRank,
		"show-rank",
		false,
		"show the current rank of your turtle while racing")
	cmd.Flags().BoolVar(&noRedraw,
		"no-redraw",
		false,
		"print every frame instead of redrawing the track in place")
	cmd.Flags().IntVar(&trackWidth,
		"track-width",
		defaultTrackWidth,
		"number of columns used for the track")
	return cmd
}

func play(cmd *cobra.Command) error {
	if err := util.SetupLogger(); err != nil {
		return err
	}
	odds, err := config.LoadOdds(config.OddsFile)
	if err != nil {
		return err
	}
	if config.EnableTelemetry {
		telemetry, err := config.SetupTelemetry(os.Stderr)
		if err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		} else {
			defer telemetry.Shutdown()
		}
	}
	// reject invalid race parameters before the first bet is placed
	if _, err = race.NewSimulator(odds, util.RaceOptions(&appConfig)...); err != nil {
		return err
	}
	delay, err := time.ParseDuration(tickDelay)
	if err != nil {
		log.Warn("Invalid tick delay. Using 50ms", log.ErrorField(err))
		delay = 50 * time.Millisecond
	}

	opts := []session.Option{
		session.WithStartBalance(appConfig.StartBalance),
		session.WithRaceOptions(util.RaceOptions(&appConfig)...),
		session.WithLedgerOptions(betting.WithWinningRank(appConfig.WinningRank)),
		session.WithMetrics(metrics.NewRecorder("play")),
	}
	if appConfig.Seed != 0 {
		opts = append(opts, session.WithSeed(appConfig.Seed))
	}
	s := session.New(odds, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	game := NewGame(s, cmd.InOrStdin(), cmd.OutOrStdout(),
		WithTickDelay(delay),
		WithTrack(showTrack, !noRedraw),
		WithRank(showRank),
		WithTrackWidth(trackWidth))
	return game.Run(ctx)
}
