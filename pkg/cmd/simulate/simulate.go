package simulate

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/turtlerace/log"
	"github.com/mpapenbr/turtlerace/pkg/cmd/util"
	"github.com/mpapenbr/turtlerace/pkg/config"
	"github.com/mpapenbr/turtlerace/pkg/metrics"
	"github.com/mpapenbr/turtlerace/pkg/model"
)

var (
	appConfig config.Config // holds processed config values
	numRaces  int
)

func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulates races and reports the win distribution per color",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd.OutOrStdout())
		},
	}
	util.AddRaceFlags(cmd, &appConfig)
	cmd.Flags().IntVarP(&numRaces,
		"races",
		"n",
		10000,
		"number of races to simulate")
	return cmd
}

func simulate(out io.Writer) error {
	if err := util.SetupLogger(); err != nil {
		return err
	}
	odds, err := config.LoadOdds(config.OddsFile)
	if err != nil {
		return err
	}
	if config.EnableTelemetry {
		if telemetry, err := config.SetupTelemetry(nil); err == nil {
			defer telemetry.Shutdown()
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}
	seed := appConfig.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("Simulating races", log.Int("races", numRaces), log.Int64("seed", seed))

	report, err := Run(odds, numRaces, seed,
		metrics.NewRecorder("simulate"), util.RaceOptions(&appConfig)...)
	if err != nil {
		return err
	}
	return writeReport(out, report, seed)
}

var decimal100 = decimal.NewFromInt(100)

func writeReport(out io.Writer, r *Report, seed int64) error {
	fmt.Fprintf(out, "Races: %d (seed %d), average ticks: %s\n\n",
		r.Races, seed, r.AvgTicks.StringFixed(2))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "color\todds\twins\tshare\tavg pos\texpected return\t")
	for _, c := range r.Colors {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s%%\t%s\t%s\t\n",
			c.Color,
			model.FormatMultiplier(c.Odds),
			c.Wins,
			c.Share.Mul(decimal100).StringFixed(2),
			c.AvgPos.StringFixed(2),
			c.Expected.StringFixed(4))
	}
	return tw.Flush()
}
